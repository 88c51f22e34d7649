package output

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"kinect-show-go/internal/types"
)

const (
	tagMultiDimArray = 40
	tagUint8         = 64
	tagUint16LE      = 69
)

// FrameMessageType is the value of the "type" key of every encoded frame.
const FrameMessageType = "frame"

type frameMessage struct {
	Type     string         `cbor:"type"`
	SeriesID string         `cbor:"series_id"`
	Frame    int            `cbor:"frame"`
	Streams  map[string]any `cbor:"streams"`
}

// EncodeFrame serializes the present streams of a frame as a CBOR map.
// Each stream is a tag 40 multi-dimensional array wrapping a tag 64 (uint8)
// or tag 69 (uint16 little-endian) typed array. Absent streams are omitted.
func EncodeFrame(frame types.RecordingFrame, seriesID string) ([]byte, error) {
	msg := frameMessage{
		Type:     FrameMessageType,
		SeriesID: seriesID,
		Frame:    frame.Frame,
		Streams:  make(map[string]any, len(types.Kinds)),
	}
	for _, kind := range types.Kinds {
		stream := frame.Streams[kind]
		if !stream.Present {
			continue
		}
		tag, err := encodeMultiDimArray(stream)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		msg.Streams[kind.Dir()] = tag
	}
	return cbor.Marshal(msg)
}

func encodeMultiDimArray(stream types.DecodedStream) (cbor.Tag, error) {
	var (
		shape types.Shape
		typed cbor.Tag
	)
	if a, ok := stream.Uint8(); ok {
		shape = a.Shape()
		typed = cbor.Tag{Number: tagUint8, Content: a.Data()}
	} else if a, ok := stream.Uint16(); ok {
		shape = a.Shape()
		typed = cbor.Tag{Number: tagUint16LE, Content: uint16ToBytes(a.Data())}
	} else {
		return cbor.Tag{}, fmt.Errorf("unsupported stream data %T", stream.Data)
	}
	dims := make([]int, len(shape))
	copy(dims, shape)
	return cbor.Tag{Number: tagMultiDimArray, Content: []any{dims, typed}}, nil
}

// DecodeFrame rebuilds a RecordingFrame from an EncodeFrame payload and
// returns it with the series id. Streams missing from the message are absent.
func DecodeFrame(data []byte) (types.RecordingFrame, string, error) {
	var msg frameMessage
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return types.RecordingFrame{}, "", fmt.Errorf("decode frame message: %w", err)
	}
	if msg.Type != FrameMessageType {
		return types.RecordingFrame{}, "", fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.Frame < 0 {
		return types.RecordingFrame{}, "", fmt.Errorf("negative frame index %d", msg.Frame)
	}

	frame := types.RecordingFrame{Frame: msg.Frame}
	for _, kind := range types.Kinds {
		frame.Streams[kind] = types.DecodedStream{Kind: kind, Frame: msg.Frame}
	}
	for dir, value := range msg.Streams {
		kind, err := types.ParseStreamKind(dir)
		if err != nil {
			return types.RecordingFrame{}, "", err
		}
		arr, err := decodeMultiDimArray(value)
		if err != nil {
			return types.RecordingFrame{}, "", fmt.Errorf("decode %s: %w", dir, err)
		}
		stream := types.DecodedStream{Kind: kind, Frame: msg.Frame, Present: true, Data: arr}
		if err := checkLayout(stream); err != nil {
			return types.RecordingFrame{}, "", fmt.Errorf("decode %s: %w", dir, err)
		}
		frame.Streams[kind] = stream
	}
	return frame, msg.SeriesID, nil
}

// checkLayout requires a decoded stream to have the element type and shape
// its kind is recorded with.
func checkLayout(stream types.DecodedStream) error {
	spec := types.MustSpec(stream.Kind)
	var element types.ElementType
	switch stream.Data.(type) {
	case *types.Array[uint8]:
		element = types.Uint8
	case *types.Array[uint16]:
		element = types.Uint16
	}
	if element != spec.Element {
		return fmt.Errorf("element type %v, want %v", element, spec.Element)
	}
	if shape := stream.Shape(); !shape.Equal(spec.Shape) {
		return fmt.Errorf("shape %s, want %s", shape, spec.Shape)
	}
	return nil
}

func decodeMultiDimArray(value any) (any, error) {
	tag, ok := value.(cbor.Tag)
	if !ok || tag.Number != tagMultiDimArray {
		return nil, fmt.Errorf("expected multidim tag 40")
	}

	items, ok := tag.Content.([]any)
	if !ok || len(items) != 2 {
		return nil, fmt.Errorf("invalid multidim array content")
	}

	dimsRaw, ok := items[0].([]any)
	if !ok || len(dimsRaw) == 0 {
		return nil, fmt.Errorf("invalid multidim dimensions")
	}
	shape := make(types.Shape, len(dimsRaw))
	for i, d := range dimsRaw {
		n, err := toInt(d)
		if err != nil {
			return nil, err
		}
		shape[i] = n
	}

	flat, err := decodeTypedArray(items[1])
	if err != nil {
		return nil, err
	}

	switch v := flat.(type) {
	case []uint8:
		return reshape(v, shape)
	case []uint16:
		return reshape(v, shape)
	default:
		return nil, errors.New("unsupported typed array type")
	}
}

func decodeTypedArray(value any) (any, error) {
	tag, ok := value.(cbor.Tag)
	if !ok {
		return nil, fmt.Errorf("expected typed array tag")
	}
	dataBytes, ok := tag.Content.([]byte)
	if !ok {
		return nil, fmt.Errorf("unsupported typed array content %T", tag.Content)
	}

	switch tag.Number {
	case tagUint8:
		return dataBytes, nil
	case tagUint16LE:
		if len(dataBytes)%2 != 0 {
			return nil, fmt.Errorf("odd byte length %d for uint16 array", len(dataBytes))
		}
		return bytesToUint16(dataBytes), nil
	default:
		return nil, fmt.Errorf("unsupported typed array tag %d", tag.Number)
	}
}

func reshape[T types.Element](flat []T, shape types.Shape) (*types.Array[T], error) {
	if shape.Len() != len(flat) {
		return nil, errors.New("dimension mismatch")
	}
	return types.NewArray(shape, flat)
}

func bytesToUint16(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := 0; i < len(out); i++ {
		out[i] = binary.LittleEndian.Uint16(data[i*2 : i*2+2])
	}
	return out
}

func uint16ToBytes(data []uint16) []byte {
	out := make([]byte, len(data)*2)
	for i, v := range data {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported int type %T", v)
	}
}
