package processing

import (
	"sort"
	"time"

	"kinect-show-go/internal/types"
)

// Aggregator collects frame summaries for one playback pass. Frames that
// failed to load are tracked separately so a pass with bad frames still
// completes.
type Aggregator struct {
	expected  int
	summaries map[int]types.FrameSummary
	skipped   map[int]struct{}
}

// NewAggregator expects a pass of expected frames; zero or less means the
// pass never completes on its own.
func NewAggregator(expected int) *Aggregator {
	return &Aggregator{
		expected:  expected,
		summaries: make(map[int]types.FrameSummary),
		skipped:   make(map[int]struct{}),
	}
}

// Add stores summary and reports whether every expected frame has been seen.
func (a *Aggregator) Add(summary types.FrameSummary) bool {
	if summary.Frame < 0 {
		return false
	}
	a.summaries[summary.Frame] = summary
	delete(a.skipped, summary.Frame)
	return a.complete()
}

// Skip records that frame could not be summarized. It counts toward pass
// completion but is left out of Snapshot.
func (a *Aggregator) Skip(frame int) bool {
	if frame < 0 {
		return false
	}
	if _, ok := a.summaries[frame]; !ok {
		a.skipped[frame] = struct{}{}
	}
	return a.complete()
}

func (a *Aggregator) complete() bool {
	return a.expected > 0 && len(a.summaries)+len(a.skipped) >= a.expected
}

func (a *Aggregator) Len() int {
	return len(a.summaries)
}

func (a *Aggregator) Skipped() int {
	return len(a.skipped)
}

func (a *Aggregator) Reset() {
	a.summaries = make(map[int]types.FrameSummary)
	a.skipped = make(map[int]struct{})
}

// Snapshot returns the collected summaries ordered by frame index.
func (a *Aggregator) Snapshot() []types.FrameSummary {
	out := make([]types.FrameSummary, 0, len(a.summaries))
	for _, s := range a.summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

func Timestamp() string {
	return time.Now().Format("20060102_150405")
}
