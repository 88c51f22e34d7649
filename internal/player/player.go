package player

import (
	"context"
	"time"

	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/types"
)

// LoadFunc loads one frame of a recording.
type LoadFunc func(frame int) (types.RecordingFrame, error)

type Options struct {
	Rate float64 // frames per second
	Loop bool
	Hint types.DepthRange
}

// Result is one playback step. Err is set when the frame failed to load;
// playback continues with the next frame.
type Result struct {
	Frame   types.RecordingFrame
	Summary types.FrameSummary
	Err     error
	Pass    int
}

// Stream loads frames in order at opts.Rate and emits one Result per frame.
// With Loop set it restarts from the first frame; otherwise the channel is
// closed after the last one. Cancelling ctx stops playback.
func Stream(ctx context.Context, load LoadFunc, frames []int, opts Options) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		if len(frames) == 0 || opts.Rate <= 0 {
			return
		}

		frameInterval := time.Duration(float64(time.Second) / opts.Rate)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()

		pos, pass := 0, 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				index := frames[pos]
				res := Result{Pass: pass}
				frame, err := load(index)
				if err != nil {
					res.Frame = types.RecordingFrame{Frame: index}
					res.Err = err
				} else {
					res.Frame = frame
					res.Summary = processing.Summarize(frame, opts.Hint)
				}

				select {
				case <-ctx.Done():
					return
				case out <- res:
				}

				pos++
				if pos >= len(frames) {
					if !opts.Loop {
						return
					}
					pos = 0
					pass++
				}
			}
		}
	}()

	return out
}

// Window returns the frames of all that lie in [start, end]. A negative end
// means no upper bound.
func Window(all []int, start, end int) []int {
	var out []int
	for _, f := range all {
		if f < start || (end >= 0 && f > end) {
			continue
		}
		out = append(out, f)
	}
	return out
}
