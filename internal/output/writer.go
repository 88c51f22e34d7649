package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kinect-show-go/internal/types"
)

// WriteSeries writes one line per frame summary to
// <outputDir>/<runTimestamp>_output_frames.txt and returns the file path.
func WriteSeries(outputDir string, runTimestamp string, summaries []types.FrameSummary) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	filename := filepath.Join(outputDir, fmt.Sprintf("%s_output_frames.txt", runTimestamp))
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	if err := writeSeries(f, summaries); err != nil {
		_ = f.Close()
		return "", err
	}
	return filename, f.Close()
}

func writeSeries(w io.Writer, summaries []types.FrameSummary) error {
	header := []string{"frame"}
	for _, kind := range types.Kinds {
		header = append(header, strings.ToLower(kind.Dir()))
	}
	header = append(header, "depth_valid", "depth_in_range", "depth_min", "depth_max", "depth_mean", "depth_std")
	for i := 0; i <= types.TrackedBodies; i++ {
		header = append(header, fmt.Sprintf("index_%d", i))
	}
	header = append(header, "tracked_pixels", "mean_r", "mean_g", "mean_b")
	if _, err := fmt.Fprintln(w, strings.Join(header, ", ")); err != nil {
		return err
	}

	for _, s := range summaries {
		fields := []string{fmt.Sprintf("%d", s.Frame)}
		for _, kind := range types.Kinds {
			fields = append(fields, presentFlag(s.Present[kind.Dir()]))
		}
		if d := s.Depth; d != nil {
			fields = append(fields,
				fmt.Sprintf("%d", d.Valid),
				fmt.Sprintf("%d", d.InRange),
				fmt.Sprintf("%.0f", d.Min),
				fmt.Sprintf("%.0f", d.Max),
				fmt.Sprintf("%.3f", d.Mean),
				fmt.Sprintf("%.3f", d.StdDev),
			)
		} else {
			fields = append(fields, "", "", "", "", "", "")
		}
		for i := 0; i <= types.TrackedBodies; i++ {
			if i < len(s.Categories) {
				fields = append(fields, fmt.Sprintf("%d", s.Categories[i]))
			} else {
				fields = append(fields, "")
			}
		}
		fields = append(fields, fmt.Sprintf("%d", s.TrackedPixels))
		if c := s.Color; c != nil {
			fields = append(fields,
				fmt.Sprintf("%.3f", c.MeanR),
				fmt.Sprintf("%.3f", c.MeanG),
				fmt.Sprintf("%.3f", c.MeanB),
			)
		} else {
			fields = append(fields, "", "", "")
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func presentFlag(ok bool) string {
	if ok {
		return "1"
	}
	return "0"
}
