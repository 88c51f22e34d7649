package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"

	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/types"
)

// Decoder reads recorder stream files. ByteOrder applies to 16-bit streams.
type Decoder struct {
	ByteOrder binary.ByteOrder
}

func NewDecoder(order binary.ByteOrder) *Decoder {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Decoder{ByteOrder: order}
}

var defaultDecoder = NewDecoder(binary.LittleEndian)

// Decode reads one stream of one frame using little-endian samples.
func Decode(root string, kind types.StreamKind, frame int) (types.DecodedStream, error) {
	return defaultDecoder.Decode(root, kind, frame)
}

// Decode locates, validates and reshapes one stream file. A missing file is
// reported as Present=false with a nil error; a file of the wrong size is a
// *MalformedFrameError.
func (d *Decoder) Decode(root string, kind types.StreamKind, frame int) (types.DecodedStream, error) {
	if err := validateFrame(frame); err != nil {
		return types.DecodedStream{}, err
	}
	spec, ok := types.Spec(kind)
	if !ok {
		return types.DecodedStream{}, fmt.Errorf("unknown stream kind %d", int(kind))
	}

	path := Resolve(root, kind, frame)
	out := types.DecodedStream{Kind: kind, Frame: frame, Path: path}

	raw, err := readFrame(path, spec, frame)
	if isAbsent(err) {
		logger().WithFields(logrus.Fields{"kind": kind.String(), "frame": frame, "path": path}).Debug("stream absent")
		return out, nil
	}
	if err != nil {
		if errors.Is(err, ErrMalformedFrame) {
			logger().WithFields(logrus.Fields{"kind": kind.String(), "frame": frame}).WithError(err).Warn("malformed stream file")
		}
		return types.DecodedStream{}, err
	}

	order := d.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	data, err := reinterpret(raw, spec, order)
	if err != nil {
		return types.DecodedStream{}, fmt.Errorf("decode %s frame %d: %w", kind, frame, err)
	}

	if kind == types.Index {
		if index, ok := data.(*types.Array[uint8]); ok {
			processing.RemapSentinel(index)
		}
	}

	out.Present = true
	out.Data = data
	return out, nil
}

// isAbsent reports whether err means the stream file is not there. A stream
// folder name taken by a regular file counts as a missing folder.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// readFrame returns the full contents of path after checking its size
// against spec. The file is closed on every return path.
func readFrame(path string, spec types.StreamSpec, frame int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	expected := int64(spec.ByteSize())
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &MalformedFrameError{
			Kind:     spec.Kind,
			Frame:    frame,
			Path:     path,
			Expected: expected,
			Reason:   "not a regular file",
		}
	}
	if info.Size() != expected {
		return nil, &MalformedFrameError{
			Kind:     spec.Kind,
			Frame:    frame,
			Path:     path,
			Expected: expected,
			Actual:   info.Size(),
		}
	}

	buf := make([]byte, expected)
	n, err := io.ReadFull(f, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return nil, &MalformedFrameError{
			Kind:     spec.Kind,
			Frame:    frame,
			Path:     path,
			Expected: expected,
			Actual:   int64(n),
			Reason:   "file shrank while reading",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}
