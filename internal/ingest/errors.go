package ingest

import (
	"errors"
	"fmt"

	"kinect-show-go/internal/types"
)

var (
	ErrMalformedFrame       = errors.New("malformed frame")
	ErrInvalidFrameIndex    = errors.New("invalid frame index")
	ErrInvalidRecordingRoot = errors.New("invalid recording root")
)

// MalformedFrameError reports a stream file whose size does not match its spec.
type MalformedFrameError struct {
	Kind     types.StreamKind
	Frame    int
	Path     string
	Expected int64
	Actual   int64
	Reason   string
}

func (e *MalformedFrameError) Error() string {
	msg := fmt.Sprintf("malformed %s frame %d (%s): expected %d bytes, got %d",
		e.Kind, e.Frame, e.Path, e.Expected, e.Actual)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MalformedFrameError) Is(target error) bool {
	return target == ErrMalformedFrame
}
