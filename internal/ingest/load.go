package ingest

import (
	"golang.org/x/sync/errgroup"

	"kinect-show-go/internal/types"
)

// Load decodes all streams of one frame with little-endian samples.
func Load(root string, frame int) (types.RecordingFrame, error) {
	return defaultDecoder.Load(root, frame)
}

// Load decodes every stream kind of frame independently. Missing streams are
// reported as absent; the first malformed stream aborts the whole call and no
// frame is returned.
func (d *Decoder) Load(root string, frame int) (types.RecordingFrame, error) {
	root = NormalizeRoot(root)
	if err := ValidateRoot(root); err != nil {
		return types.RecordingFrame{}, err
	}
	if err := validateFrame(frame); err != nil {
		return types.RecordingFrame{}, err
	}

	var streams [4]types.DecodedStream
	var g errgroup.Group
	for _, kind := range types.Kinds {
		kind := kind
		g.Go(func() error {
			stream, err := d.Decode(root, kind, frame)
			if err != nil {
				return err
			}
			streams[kind] = stream
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.RecordingFrame{}, err
	}

	return types.RecordingFrame{Frame: frame, Streams: streams}, nil
}
