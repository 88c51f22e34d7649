package render

import (
	"gonum.org/v1/plot/plotter"

	"kinect-show-go/internal/types"
)

// grid adapts a 2-D sample array to plotter.GridXYZ. Row 0 of the array is
// the top image row, so Z flips rows to the plot's bottom-up orientation.
type grid[T types.Element] struct {
	a          *types.Array[T]
	rows, cols int
	min, max   float64
}

var _ plotter.GridXYZ = (*grid[uint8])(nil)

func newGrid[T types.Element](a *types.Array[T]) *grid[T] {
	shape := a.Shape()
	g := &grid[T]{a: a, rows: shape[0], cols: shape[1]}
	data := a.Data()
	if len(data) > 0 {
		lo, hi := data[0], data[0]
		for _, v := range data[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		g.min, g.max = float64(lo), float64(hi)
	}
	return g
}

func (g *grid[T]) Dims() (c, r int) { return g.cols, g.rows }

func (g *grid[T]) Z(c, r int) float64 {
	return float64(g.a.At(g.rows-1-r, c))
}

func (g *grid[T]) X(c int) float64 { return float64(c) }
func (g *grid[T]) Y(r int) float64 { return float64(r) }

// Min and Max let plotter.NewHeatMap skip its own scan.
func (g *grid[T]) Min() float64 { return g.min }
func (g *grid[T]) Max() float64 { return g.max }
