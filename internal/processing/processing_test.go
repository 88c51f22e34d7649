package processing

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect-show-go/internal/types"
)

func indexArray(t *testing.T, data []uint8) *types.Array[uint8] {
	t.Helper()
	a, err := types.NewArray(types.Shape{types.DepthHeight, types.DepthWidth}, data)
	require.NoError(t, err)
	return a
}

func randomIndex(seed int64) []uint8 {
	r := rand.New(rand.NewSource(seed))
	data := make([]uint8, types.DepthHeight*types.DepthWidth)
	for i := range data {
		if r.Intn(3) == 0 {
			data[i] = 255
		} else {
			data[i] = uint8(r.Intn(255))
		}
	}
	return data
}

func TestRemapSentinelCorrectness(t *testing.T) {
	orig := randomIndex(1)
	a := indexArray(t, append([]uint8(nil), orig...))

	changed := RemapSentinel(a)

	want := 0
	for i, v := range orig {
		if v == 255 {
			want++
			require.Equal(t, uint8(8), a.Data()[i], "element %d", i)
		} else {
			require.Equal(t, v, a.Data()[i], "element %d", i)
		}
	}
	assert.Equal(t, want, changed)
	assert.Positive(t, changed)
}

func TestRemapSentinelIdempotent(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		a := indexArray(t, randomIndex(seed))
		RemapSentinel(a)
		once := append([]uint8(nil), a.Data()...)

		assert.Equal(t, 0, RemapSentinel(a))
		if diff := cmp.Diff(once, a.Data()); diff != "" {
			t.Fatalf("second remap changed data (-once +twice):\n%s", diff)
		}
	}
	assert.Equal(t, 0, RemapSentinel(nil))
}

func TestDepthStatistics(t *testing.T) {
	data := make([]uint16, types.DepthHeight*types.DepthWidth)
	data[0] = 400
	data[1] = 500
	data[2] = 4500
	data[3] = 5000
	depth, err := types.NewArray(types.Shape{types.DepthHeight, types.DepthWidth}, data)
	require.NoError(t, err)

	stats := DepthStatistics(depth, types.ReliableDepth)
	assert.Equal(t, 4, stats.Valid)
	assert.Equal(t, 2, stats.InRange)
	assert.Equal(t, 400.0, stats.Min)
	assert.Equal(t, 5000.0, stats.Max)
	assert.InDelta(t, 2600.0, stats.Mean, 1e-9)
	assert.Greater(t, stats.StdDev, 0.0)
	assert.Equal(t, uint16(500), stats.RangeMin)
	assert.Equal(t, uint16(4500), stats.RangeMax)
	// The hint never changes the data.
	assert.Equal(t, uint16(400), depth.At(0, 0))
}

func TestDepthStatisticsEmpty(t *testing.T) {
	depth, err := types.NewArray(types.Shape{2, 2}, make([]uint16, 4))
	require.NoError(t, err)
	stats := DepthStatistics(depth, types.ReliableDepth)
	assert.Equal(t, 0, stats.Valid)
	assert.Equal(t, 0.0, stats.Mean)
	assert.Equal(t, 0.0, stats.StdDev)
}

func TestSummarize(t *testing.T) {
	index := make([]uint8, types.DepthHeight*types.DepthWidth)
	for i := range index {
		index[i] = types.IndexBackground
	}
	index[0], index[1], index[2] = 0, 0, 6
	index[3] = 200

	tracked := make([]uint8, types.DepthHeight*types.DepthWidth*types.RGBA)
	tracked[3] = 0xff
	tracked[7] = 0xff
	tracked[11] = 0x10

	idx := indexArray(t, index)
	tr, err := types.NewArray(types.MustSpec(types.TrackedColor).Shape, tracked)
	require.NoError(t, err)

	frame := types.RecordingFrame{Frame: 4}
	frame.Streams[types.Color] = types.DecodedStream{Kind: types.Color, Frame: 4}
	frame.Streams[types.Depth] = types.DecodedStream{Kind: types.Depth, Frame: 4}
	frame.Streams[types.Index] = types.DecodedStream{Kind: types.Index, Frame: 4, Present: true, Data: idx}
	frame.Streams[types.TrackedColor] = types.DecodedStream{Kind: types.TrackedColor, Frame: 4, Present: true, Data: tr}

	s := Summarize(frame, types.ReliableDepth)
	assert.Equal(t, 4, s.Frame)
	assert.Equal(t, map[string]bool{"COLOR": false, "DEPTH": false, "INDEX": true, "TRACKEDCOLOR": true}, s.Present)
	assert.Nil(t, s.Depth)
	assert.Nil(t, s.Color)
	require.Len(t, s.Categories, 9)
	assert.Equal(t, 2, s.Categories[0])
	assert.Equal(t, 1, s.Categories[6])
	assert.Equal(t, len(index)-4, s.Categories[8])
	assert.Equal(t, 2, s.TrackedPixels)
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator(3)
	assert.False(t, agg.Add(types.FrameSummary{Frame: 5}))
	assert.False(t, agg.Add(types.FrameSummary{Frame: 1}))
	assert.False(t, agg.Add(types.FrameSummary{Frame: 5}))
	assert.False(t, agg.Add(types.FrameSummary{Frame: -1}))
	assert.True(t, agg.Add(types.FrameSummary{Frame: 3}))

	frames := []int{}
	for _, s := range agg.Snapshot() {
		frames = append(frames, s.Frame)
	}
	assert.Equal(t, []int{1, 3, 5}, frames)

	agg.Reset()
	assert.Equal(t, 0, agg.Len())

	open := NewAggregator(0)
	assert.False(t, open.Add(types.FrameSummary{Frame: 0}))
}

func TestAggregatorCountsSkippedFrames(t *testing.T) {
	agg := NewAggregator(3)
	assert.False(t, agg.Add(types.FrameSummary{Frame: 0}))
	assert.False(t, agg.Skip(1))
	assert.False(t, agg.Skip(1))
	assert.False(t, agg.Skip(-1))
	assert.True(t, agg.Skip(2))
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, 2, agg.Skipped())
	require.Len(t, agg.Snapshot(), 1)
	assert.Equal(t, 0, agg.Snapshot()[0].Frame)

	// A later successful load of a skipped frame replaces the skip.
	agg.Reset()
	assert.False(t, agg.Skip(0))
	assert.False(t, agg.Add(types.FrameSummary{Frame: 0}))
	assert.Equal(t, 0, agg.Skipped())
	assert.False(t, agg.Skip(0))
	assert.Equal(t, 0, agg.Skipped())

	all := NewAggregator(2)
	assert.False(t, all.Skip(4))
	assert.True(t, all.Skip(5))
	assert.Empty(t, all.Snapshot())
}
