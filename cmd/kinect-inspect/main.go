package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"kinect-show-go/internal/config"
	"kinect-show-go/internal/ingest"
	"kinect-show-go/internal/logger"
	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to yaml config file")
		path       = flag.String("path", "", "Recording directory, or a base directory with -sessions")
		sessions   = flag.Bool("sessions", false, "List recording sessions under -path")
		validate   = flag.Bool("validate", true, "Decode every frame and report malformed files")
		limit      = flag.Int("limit", 5, "Max number of frame summaries to print")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *path != "" {
		cfg.Recording.Root = *path
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	ingest.SetLogger(logger.Component(log, "ingest"))

	if *sessions {
		dirs, err := ingest.Sessions(cfg.Recording.Root)
		if err != nil {
			log.WithError(err).Fatal("list sessions")
		}
		for _, dir := range dirs {
			fmt.Println(dir)
		}
		fmt.Printf("summary: sessions=%d\n", len(dirs))
		return
	}

	order, err := ingest.ParseByteOrder(cfg.Recording.ByteOrder)
	if err != nil {
		log.WithError(err).Fatal("invalid byte order")
	}
	dec := ingest.NewDecoder(order)

	index, err := ingest.Scan(cfg.Recording.Root)
	if err != nil {
		log.WithError(err).Fatal("scan recording")
	}
	frames := index.AllFrames()
	fmt.Printf("recording: %s\n", index.Root)
	for _, kind := range types.Kinds {
		spec := types.MustSpec(kind)
		fmt.Printf("  %-13s %6d frames  %s %s  %d bytes/frame\n",
			kind.Dir(), index.Count(kind), spec.Element, spec.Shape, spec.ByteSize())
	}

	enc := json.NewEncoder(os.Stdout)
	var printed, malformed, incomplete int
	for _, frame := range frames {
		if !*validate && printed >= *limit {
			break
		}
		rec, err := dec.Load(index.Root, frame)
		if err != nil {
			if errors.Is(err, ingest.ErrMalformedFrame) {
				malformed++
				fmt.Printf("frame %d: %v\n", frame, err)
				continue
			}
			log.WithError(err).WithField("frame", frame).Fatal("load frame")
		}
		if len(rec.Missing()) > 0 {
			incomplete++
		}
		if printed < *limit {
			_ = enc.Encode(processing.Summarize(rec, types.ReliableDepth))
			printed++
		}
	}

	fmt.Printf("summary: frames=%d incomplete=%d malformed=%d\n", len(frames), incomplete, malformed)
	if malformed > 0 {
		os.Exit(1)
	}
}
