// Package render draws a decoded recording frame as a 2x2 figure: color,
// depth, body index and color mapped to depth space.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"kinect-show-go/internal/config"
	"kinect-show-go/internal/types"
)

// Options controls the output figure.
type Options struct {
	WidthPx  int
	HeightPx int
	// ClipDepth scales the depth panel to DepthRange instead of the data range.
	// Samples outside the range are drawn black (near) or white (far).
	ClipDepth  bool
	DepthRange types.DepthRange
}

func DefaultOptions() Options {
	return Options{
		WidthPx:    1600,
		HeightPx:   1200,
		DepthRange: types.ReliableDepth,
	}
}

// OptionsFromConfig builds render options from the render config section.
func OptionsFromConfig(cfg config.RenderConfig) Options {
	opts := DefaultOptions()
	opts.WidthPx = cfg.WidthPx
	opts.HeightPx = cfg.HeightPx
	opts.ClipDepth = cfg.ClipDepth
	return opts
}

// layout is row-major, matching the on-screen 2x2 grid.
var layout = [2][2]types.StreamKind{
	{types.Color, types.Depth},
	{types.Index, types.TrackedColor},
}

// Figure renders frame onto a new image canvas.
func Figure(frame types.RecordingFrame, opts Options) (*vgimg.Canvas, error) {
	if opts.WidthPx <= 0 || opts.HeightPx <= 0 {
		return nil, fmt.Errorf("invalid figure size %dx%d", opts.WidthPx, opts.HeightPx)
	}

	plots := make([][]*plot.Plot, len(layout))
	for r, row := range layout {
		plots[r] = make([]*plot.Plot, len(row))
		for c, kind := range row {
			p, err := Panel(frame.Stream(kind), opts)
			if err != nil {
				return nil, err
			}
			plots[r][c] = p
		}
	}

	w := vg.Length(opts.WidthPx) * vg.Inch / vgimg.DefaultDPI
	h := vg.Length(opts.HeightPx) * vg.Inch / vgimg.DefaultDPI
	img := vgimg.New(w, h)
	dc := draw.New(img)

	t := draw.Tiles{
		Rows:      len(layout),
		Cols:      len(layout[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, t, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}
	return img, nil
}

// WritePNG renders frame and writes it to w as PNG.
func WritePNG(w io.Writer, frame types.RecordingFrame, opts Options) error {
	img, err := Figure(frame, opts)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	return err
}

// SavePNG renders frame into the file at path, creating parent directories.
func SavePNG(path string, frame types.RecordingFrame, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, frame, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Panel builds the plot for a single stream. Absent streams get an empty
// panel whose title says so.
func Panel(stream types.DecodedStream, opts Options) (*plot.Plot, error) {
	spec, ok := types.Spec(stream.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown stream kind %d", int(stream.Kind))
	}

	p := plot.New()
	p.HideAxes()
	p.Title.Text = spec.Title
	if !stream.Present {
		p.Title.Text += " (absent)"
		return p, nil
	}

	switch stream.Kind {
	case types.Color, types.TrackedColor:
		a, ok := stream.Uint8()
		if !ok {
			return nil, fmt.Errorf("%s stream holds %T", stream.Kind, stream.Data)
		}
		img, err := rgbaImage(a)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		p.Add(plotter.NewImage(img, 0, 0, float64(b.Dx()), float64(b.Dy())))
	case types.Depth:
		a, ok := stream.Uint16()
		if !ok {
			return nil, fmt.Errorf("depth stream holds %T", stream.Data)
		}
		p.Add(depthHeatMap(a, opts))
	case types.Index:
		a, ok := stream.Uint8()
		if !ok {
			return nil, fmt.Errorf("index stream holds %T", stream.Data)
		}
		p.Add(indexHeatMap(a))
	}
	return p, nil
}

// rgbaImage wraps the 4-channel sample buffer as straight-alpha pixels.
func rgbaImage(a *types.Array[uint8]) (*image.NRGBA, error) {
	shape := a.Shape()
	if len(shape) != 3 || shape[2] != types.RGBA {
		return nil, fmt.Errorf("expected HxWx4 samples, got %s", shape)
	}
	rows, cols := shape[0], shape[1]
	return &image.NRGBA{
		Pix:    a.Data(),
		Stride: cols * types.RGBA,
		Rect:   image.Rect(0, 0, cols, rows),
	}, nil
}

func depthHeatMap(a *types.Array[uint16], opts Options) *plotter.HeatMap {
	g := newGrid(a)
	hm := plotter.NewHeatMap(g, palette.Heat(256, 1))
	hm.Rasterized = true
	if opts.ClipDepth {
		hm.Min = float64(opts.DepthRange.Min)
		hm.Max = float64(opts.DepthRange.Max)
		hm.Underflow = color.Black
		hm.Overflow = color.White
	}
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	return hm
}

// indexHeatMap maps category i to palette entry i regardless of which
// categories occur in the frame.
func indexHeatMap(a *types.Array[uint8]) *plotter.HeatMap {
	hm := plotter.NewHeatMap(newGrid(a), indexPalette{})
	hm.Rasterized = true
	hm.Min = 0
	hm.Max = float64(types.IndexBackground)
	hm.Overflow = color.Black
	return hm
}

type indexPalette struct{}

func (indexPalette) Colors() []color.Color { return types.PaletteColors() }
