package types

type DepthStats struct {
	Valid    int     `json:"valid"`
	InRange  int     `json:"in_range"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	RangeMin uint16  `json:"range_min"`
	RangeMax uint16  `json:"range_max"`
}

type ColorStats struct {
	MeanR float64 `json:"mean_r"`
	MeanG float64 `json:"mean_g"`
	MeanB float64 `json:"mean_b"`
}

// FrameSummary is the per-frame digest sent to viewers and written to series files.
type FrameSummary struct {
	Frame         int             `json:"frame"`
	Present       map[string]bool `json:"present"`
	Depth         *DepthStats     `json:"depth,omitempty"`
	Categories    []int           `json:"categories,omitempty"`
	TrackedPixels int             `json:"tracked_pixels"`
	Color         *ColorStats     `json:"color,omitempty"`
}

type UISnapshot struct {
	Type    string       `json:"type"`
	RunID   string       `json:"run_id,omitempty"`
	Summary FrameSummary `json:"summary"`
}
