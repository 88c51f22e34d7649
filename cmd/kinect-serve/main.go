package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"kinect-show-go/internal/config"
	"kinect-show-go/internal/ingest"
	"kinect-show-go/internal/logger"
	"kinect-show-go/internal/output"
	"kinect-show-go/internal/player"
	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/publish"
	"kinect-show-go/internal/render"
	"kinect-show-go/internal/server"
	"kinect-show-go/internal/types"
)

type playbackStats struct {
	mu         sync.Mutex
	started    time.Time
	played     int
	loadErrors int
	published  int
	recorded   int
	passes     int
	lastFrame  int
	seriesFile string
}

func (s *playbackStats) snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"uptime_s":    time.Since(s.started).Seconds(),
		"played":      s.played,
		"load_errors": s.loadErrors,
		"published":   s.published,
		"recorded":    s.recorded,
		"passes":      s.passes,
		"last_frame":  s.lastFrame,
		"series_file": s.seriesFile,
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to yaml config file")
		path       = flag.String("path", "", "Recording directory (overrides recording.root)")
		port       = flag.Int("port", 0, "HTTP port for the web UI (overrides server.port)")
		rate       = flag.Float64("rate", 0, "Playback rate in frames/sec (overrides playback.rate)")
		loop       = flag.Bool("loop", false, "Restart playback after the last frame")
		rawLog     = flag.Bool("raw-log", false, "Write encoded frames to a raw log")
		publishOn  = flag.Bool("publish", false, "Push encoded frames over ZMQ")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *path != "" {
		cfg.Recording.Root = *path
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *rate > 0 {
		cfg.Playback.Rate = *rate
	}
	cfg.Playback.Loop = cfg.Playback.Loop || *loop
	cfg.Output.RawLog = cfg.Output.RawLog || *rawLog
	cfg.Publish.Enabled = cfg.Publish.Enabled || *publishOn
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	ingest.SetLogger(logger.Component(log, "ingest"))
	mainLog := logger.Component(log, "serve")

	order, err := ingest.ParseByteOrder(cfg.Recording.ByteOrder)
	if err != nil {
		mainLog.WithError(err).Fatal("invalid byte order")
	}
	dec := ingest.NewDecoder(order)

	index, err := ingest.Scan(cfg.Recording.Root)
	if err != nil {
		mainLog.WithError(err).Fatal("failed to scan recording")
	}
	frames := player.Window(index.AllFrames(), cfg.Playback.Start, cfg.Playback.End)
	runID := uuid.NewString()
	mainLog.WithFields(logrus.Fields{
		"root":    index.Root,
		"frames":  len(frames),
		"run_id":  runID,
		"color":   index.Count(types.Color),
		"depth":   index.Count(types.Depth),
		"index":   index.Count(types.Index),
		"tracked": index.Count(types.TrackedColor),
	}).Info("recording scanned")
	if len(frames) == 0 {
		mainLog.Warn("no frames to play")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rawWriter *output.RawLogWriter
	if cfg.Output.RawLog {
		rawWriter, err = output.NewRawLogWriter(cfg.Output.RawLogDir, "frames")
		if err != nil {
			mainLog.WithError(err).Fatal("failed to start raw log")
		}
		defer rawWriter.Close()
		mainLog.WithField("path", rawWriter.Path()).Info("raw log enabled")
	}

	var pub *publish.Publisher
	if cfg.Publish.Enabled {
		pub, err = publish.NewPublisher(cfg.Publish.Endpoint, runID)
		if err != nil {
			mainLog.WithError(err).Fatal("failed to start publisher")
		}
		defer pub.Close()
		mainLog.WithField("endpoint", cfg.Publish.Endpoint).Info("publishing frames")
	}

	load := func(frame int) (types.RecordingFrame, error) {
		return dec.Load(index.Root, frame)
	}
	stats := &playbackStats{started: time.Now(), lastFrame: -1}
	messages := make(chan any, 16)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, *cfg, server.Deps{
			Load:     load,
			Frames:   func() []int { return frames },
			Render:   render.OptionsFromConfig(cfg.Render),
			Hint:     types.ReliableDepth,
			RunID:    runID,
			StatusFn: stats.snapshot,
			Messages: messages,
			Log:      logger.Component(log, "server"),
		})
	})
	g.Go(func() error {
		playLog := logger.Component(log, "player")
		agg := processing.NewAggregator(len(frames))
		results := player.Stream(gctx, load, frames, player.Options{
			Rate: cfg.Playback.Rate,
			Loop: cfg.Playback.Loop,
			Hint: types.ReliableDepth,
		})
		flush := func() {
			if agg.Len() > 0 {
				file, err := output.WriteSeries(cfg.Output.Dir, processing.Timestamp(), agg.Snapshot())
				if err != nil {
					playLog.WithError(err).Error("failed to write series")
				} else {
					playLog.WithFields(logrus.Fields{"path": file, "skipped": agg.Skipped()}).Info("series written")
					stats.mu.Lock()
					stats.seriesFile = file
					stats.mu.Unlock()
				}
			}
			agg.Reset()
		}
		for res := range results {
			if res.Err != nil {
				playLog.WithError(res.Err).WithField("frame", res.Frame.Frame).Warn("frame skipped")
				stats.mu.Lock()
				stats.loadErrors++
				stats.mu.Unlock()
				if agg.Skip(res.Frame.Frame) {
					flush()
				}
				continue
			}

			var (
				payload []byte
				err     error
			)
			if pub != nil {
				payload, err = pub.Publish(res.Frame)
				if err != nil {
					playLog.WithError(err).Warn("publish failed")
				}
			}
			if rawWriter != nil {
				if payload == nil {
					payload, err = output.EncodeFrame(res.Frame, runID)
				}
				if err == nil {
					err = rawWriter.Record(payload)
				}
				if err != nil {
					playLog.WithError(err).Warn("raw log write failed")
				}
			}

			stats.mu.Lock()
			stats.played++
			stats.lastFrame = res.Frame.Frame
			stats.passes = res.Pass
			if pub != nil {
				stats.published = pub.Sent()
			}
			if rawWriter != nil && err == nil {
				stats.recorded++
			}
			stats.mu.Unlock()

			select {
			case messages <- types.UISnapshot{Type: "playback", RunID: runID, Summary: res.Summary}:
			default:
			}

			if agg.Add(res.Summary) {
				flush()
			}
		}
		// Interrupted or partial pass.
		flush()
		playLog.Info("playback finished")
		return nil
	})

	if err := g.Wait(); err != nil {
		mainLog.WithError(err).Fatal("server stopped")
	}
}
