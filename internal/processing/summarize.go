package processing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"kinect-show-go/internal/types"
)

// Summarize computes the per-frame digest used by viewers and series files.
// hint only classifies depth samples; the decoded data is not modified.
func Summarize(frame types.RecordingFrame, hint types.DepthRange) types.FrameSummary {
	summary := types.FrameSummary{
		Frame:   frame.Frame,
		Present: make(map[string]bool, len(types.Kinds)),
	}
	for _, kind := range types.Kinds {
		summary.Present[kind.Dir()] = frame.Stream(kind).Present
	}

	if depth, ok := frame.Stream(types.Depth).Uint16(); ok {
		summary.Depth = DepthStatistics(depth, hint)
	}
	if index, ok := frame.Stream(types.Index).Uint8(); ok {
		summary.Categories = CountCategories(index)
	}
	if tracked, ok := frame.Stream(types.TrackedColor).Uint8(); ok {
		summary.TrackedPixels = countMapped(tracked)
	}
	if color, ok := frame.Stream(types.Color).Uint8(); ok {
		summary.Color = colorMeans(color)
	}
	return summary
}

// DepthStatistics describes the non-zero depth samples. Zero means the
// sensor had no reading for that pixel.
func DepthStatistics(depth *types.Array[uint16], hint types.DepthRange) *types.DepthStats {
	stats := &types.DepthStats{RangeMin: hint.Min, RangeMax: hint.Max}
	values := make([]float64, 0, depth.Len())
	for _, v := range depth.Data() {
		if v == 0 {
			continue
		}
		if hint.Contains(v) {
			stats.InRange++
		}
		values = append(values, float64(v))
	}
	stats.Valid = len(values)
	if len(values) == 0 {
		return stats
	}
	stats.Min = floats.Min(values)
	stats.Max = floats.Max(values)
	mean, std := stat.MeanStdDev(values, nil)
	stats.Mean = mean
	if len(values) > 1 && !math.IsNaN(std) {
		stats.StdDev = std
	}
	return stats
}

// CountCategories counts pixels per segmentation category 0..8. Values
// outside the palette are not counted.
func CountCategories(index *types.Array[uint8]) []int {
	counts := make([]int, int(types.IndexBackground)+1)
	for _, v := range index.Data() {
		if int(v) < len(counts) {
			counts[v]++
		}
	}
	return counts
}

// countMapped counts tracked-color pixels the recorder filled in; it writes
// alpha 0xff for mapped pixels and leaves the rest zeroed.
func countMapped(tracked *types.Array[uint8]) int {
	data := tracked.Data()
	count := 0
	for i := types.RGBA - 1; i < len(data); i += types.RGBA {
		if data[i] == math.MaxUint8 {
			count++
		}
	}
	return count
}

func colorMeans(img *types.Array[uint8]) *types.ColorStats {
	data := img.Data()
	pixels := len(data) / types.RGBA
	if pixels == 0 {
		return &types.ColorStats{}
	}
	var r, g, b uint64
	for i := 0; i+2 < len(data); i += types.RGBA {
		r += uint64(data[i])
		g += uint64(data[i+1])
		b += uint64(data[i+2])
	}
	n := float64(pixels)
	return &types.ColorStats{
		MeanR: float64(r) / n,
		MeanG: float64(g) / n,
		MeanB: float64(b) / n,
	}
}
