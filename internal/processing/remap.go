package processing

import "kinect-show-go/internal/types"

// RemapSentinel rewrites every "no tracked body" value in a segmentation
// array to the background category, in place, and returns how many
// elements changed. Running it twice changes nothing the second time.
func RemapSentinel(index *types.Array[uint8]) int {
	if index == nil {
		return 0
	}
	data := index.Data()
	changed := 0
	for i, v := range data {
		if v == types.IndexSentinel {
			data[i] = types.IndexBackground
			changed++
		}
	}
	return changed
}
