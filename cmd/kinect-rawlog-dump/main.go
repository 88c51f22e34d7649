package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	log "github.com/sirupsen/logrus"

	"kinect-show-go/internal/output"
	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/types"
)

func main() {
	var (
		path  = flag.String("path", "", "Path to rawlog .bin file")
		limit = flag.Int("limit", 1, "Number of records to dump (0 dumps all)")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("path is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open rawlog: %v", err)
	}
	defer f.Close()

	reader, err := output.NewRawLogReader(f)
	if err != nil {
		log.Fatalf("open rawlog: %v", err)
	}

	count := 0
	for *limit <= 0 || count < *limit {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Fatalf("read record: %v", err)
		}
		log.Printf("record %d timestamp=%s size=%d", count, rec.Time.Format(time.RFC3339Nano), len(rec.Payload))
		count++

		var value any
		if frame, series, err := output.DecodeFrame(rec.Payload); err == nil {
			value = map[string]any{
				"series_id": series,
				"summary":   processing.Summarize(frame, types.ReliableDepth),
			}
		} else {
			var decoded any
			if err := cbor.Unmarshal(rec.Payload, &decoded); err != nil {
				log.Printf("record %d: CBOR decode error: %v", count-1, err)
				continue
			}
			value = output.NormalizeJSONValue(decoded)
		}

		pretty, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			log.Printf("record %d: JSON encode error: %v", count-1, err)
			continue
		}
		fmt.Println(string(pretty))
	}
}
