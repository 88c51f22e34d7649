package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect-show-go/internal/types"
)

func smallFrame(t *testing.T) types.RecordingFrame {
	t.Helper()
	depthData := make([]uint16, types.MustSpec(types.Depth).Shape.Len())
	copy(depthData, []uint16{0, 500, 4500, 65535, 1, 256})
	depth, err := types.NewArray(types.MustSpec(types.Depth).Shape, depthData)
	require.NoError(t, err)
	indexData := make([]uint8, types.MustSpec(types.Index).Shape.Len())
	for i := range indexData {
		indexData[i] = types.IndexBackground
	}
	indexData[types.DepthWidth+1] = 5
	index, err := types.NewArray(types.MustSpec(types.Index).Shape, indexData)
	require.NoError(t, err)

	frame := types.RecordingFrame{Frame: 12}
	for _, kind := range types.Kinds {
		frame.Streams[kind] = types.DecodedStream{Kind: kind, Frame: 12}
	}
	frame.Streams[types.Depth] = types.DecodedStream{Kind: types.Depth, Frame: 12, Present: true, Data: depth}
	frame.Streams[types.Index] = types.DecodedStream{Kind: types.Index, Frame: 12, Present: true, Data: index}
	return frame
}

func TestEncodeDecodeFrame(t *testing.T) {
	frame := smallFrame(t)
	payload, err := EncodeFrame(frame, "series-1")
	require.NoError(t, err)

	got, series, err := DecodeFrame(payload)
	require.NoError(t, err)
	assert.Equal(t, "series-1", series)
	assert.Equal(t, 12, got.Frame)
	assert.Equal(t, []types.StreamKind{types.Depth, types.Index}, got.Present())

	depth, ok := got.Stream(types.Depth).Uint16()
	require.True(t, ok)
	assert.Equal(t, types.Shape{types.DepthHeight, types.DepthWidth}, depth.Shape())
	if diff := cmp.Diff([]uint16{0, 500, 4500, 65535, 1, 256, 0}, depth.Data()[:7]); diff != "" {
		t.Fatalf("depth mismatch (-want +got):\n%s", diff)
	}
	index, ok := got.Stream(types.Index).Uint8()
	require.True(t, ok)
	assert.Equal(t, uint8(5), index.At(1, 1))
	assert.False(t, got.Stream(types.Color).Present)
}

func TestEncodeFrameWireLayout(t *testing.T) {
	payload, err := EncodeFrame(smallFrame(t), "s")
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, cbor.Unmarshal(payload, &msg))
	assert.Equal(t, "frame", msg["type"])

	streams, ok := msg["streams"].(map[any]any)
	require.True(t, ok, "streams is %T", msg["streams"])
	tag, ok := streams["DEPTH"].(cbor.Tag)
	require.True(t, ok)
	assert.Equal(t, uint64(tagMultiDimArray), tag.Number)

	items := tag.Content.([]any)
	typed := items[1].(cbor.Tag)
	assert.Equal(t, uint64(tagUint16LE), typed.Number)
	// 500 little-endian
	assert.Equal(t, []byte{0xf4, 0x01}, typed.Content.([]byte)[2:4])
}

func TestDecodeMultiDimArrayUint8(t *testing.T) {
	value := cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			[]any{uint64(2), uint64(2)},
			cbor.Tag{Number: tagUint8, Content: []byte{1, 2, 3, 4}},
		},
	}

	got, err := decodeMultiDimArray(value)
	require.NoError(t, err)
	a := got.(*types.Array[uint8])
	assert.Equal(t, uint8(3), a.At(1, 0))
}

func TestDecodeMultiDimArrayErrors(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"not a tag", []any{}},
		{"wrong tag", cbor.Tag{Number: 41, Content: []any{}}},
		{"dimension mismatch", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(3), uint64(2)}, cbor.Tag{Number: tagUint8, Content: []byte{1, 2}},
		}}},
		{"odd uint16 bytes", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(1)}, cbor.Tag{Number: tagUint16LE, Content: []byte{1, 2, 3}},
		}}},
		{"unknown typed tag", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(1)}, cbor.Tag{Number: 85, Content: []byte{1, 2, 3, 4}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeMultiDimArray(tt.value)
			require.Error(t, err)
		})
	}
}

func TestDecodeFrameRejectsOtherMessages(t *testing.T) {
	payload, err := cbor.Marshal(map[string]any{"type": "status"})
	require.NoError(t, err)
	_, _, err = DecodeFrame(payload)
	require.Error(t, err)

	_, _, err = DecodeFrame([]byte{0xff, 0x00})
	require.Error(t, err)
}

func TestDecodeFrameRejectsWrongLayout(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		value cbor.Tag
	}{
		{"depth 1-D uint8", "DEPTH", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(3)}, cbor.Tag{Number: tagUint8, Content: []byte{1, 2, 3}},
		}}},
		{"depth wrong shape", "DEPTH", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(2), uint64(2)}, cbor.Tag{Number: tagUint16LE, Content: make([]byte, 8)},
		}}},
		{"index 1-D", "INDEX", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(4)}, cbor.Tag{Number: tagUint8, Content: []byte{0, 1, 2, 8}},
		}}},
		{"index as uint16", "INDEX", cbor.Tag{Number: tagMultiDimArray, Content: []any{
			[]any{uint64(types.DepthHeight), uint64(types.DepthWidth)},
			cbor.Tag{Number: tagUint16LE, Content: make([]byte, 2*types.DepthHeight*types.DepthWidth)},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := cbor.Marshal(map[string]any{
				"type":      "frame",
				"series_id": "s",
				"frame":     0,
				"streams":   map[string]any{tt.dir: tt.value},
			})
			require.NoError(t, err)
			_, _, err = DecodeFrame(payload)
			require.Error(t, err)
		})
	}
}

func TestRawLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewRawLogWriter(dir, "series")
	require.NoError(t, err)
	fixed := time.Unix(1700000000, 42)
	w.now = func() time.Time { return fixed }

	require.NoError(t, w.Record([]byte("first")))
	require.NoError(t, w.Record([]byte{}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.Error(t, w.Record([]byte("late")))

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()

	r, err := NewRawLogReader(f)
	require.NoError(t, err)
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", string(rec.Payload))
	assert.True(t, rec.Time.Equal(fixed))
	rec, err = r.Next()
	require.NoError(t, err)
	assert.Empty(t, rec.Payload)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRawLogReaderErrors(t *testing.T) {
	_, err := NewRawLogReader(strings.NewReader("NOTARAW1"))
	assert.ErrorIs(t, err, ErrBadMagic)

	var buf bytes.Buffer
	buf.WriteString(rawLogMagic)
	buf.Write([]byte{1, 0, 0, 0, 0, 0, 0, 0, 10, 0, 0, 0, 'a', 'b'})
	r, err := NewRawLogReader(&buf)
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteSeries(t *testing.T) {
	summaries := []types.FrameSummary{
		{
			Frame:         0,
			Present:       map[string]bool{"COLOR": true, "DEPTH": true, "INDEX": true, "TRACKEDCOLOR": false},
			Depth:         &types.DepthStats{Valid: 10, InRange: 7, Min: 400, Max: 5000, Mean: 1234.5, StdDev: 10},
			Categories:    []int{1, 0, 0, 0, 0, 0, 0, 0, 9},
			TrackedPixels: 0,
			Color:         &types.ColorStats{MeanR: 1, MeanG: 2, MeanB: 3},
		},
		{Frame: 1, Present: map[string]bool{}},
	}
	path, err := WriteSeries(t.TempDir(), "20240101_000000", summaries)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "20240101_000000_output_frames.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "frame, color, depth, index, trackedcolor, depth_valid"))
	assert.Equal(t, "0, 1, 1, 1, 0, 10, 7, 400, 5000, 1234.500, 10.000, 1, 0, 0, 0, 0, 0, 0, 0, 9, 0, 1.000, 2.000, 3.000", lines[1])
	assert.Equal(t, len(strings.Split(lines[0], ", ")), len(strings.Split(lines[2], ", ")))
}

func TestNormalizeJSONValue(t *testing.T) {
	in := map[any]any{
		uint64(1): "one",
		"nested":  []any{cbor.Tag{Number: 64, Content: []byte{1, 2, 3}}},
	}
	out := NormalizeJSONValue(in)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"one","nested":[{"tag":64,"value":{"bytes":3}}]}`, string(data))
}
