package scene

import (
	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/cube"
	"github.com/matzehuels/skyline/pkg/grid"
	"github.com/matzehuels/skyline/pkg/iso"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

const (
	// DefaultScale is the uniform scale applied before any cube is built.
	DefaultScale = 7.0

	// DefaultSpacing is the distance between neighbouring cell centers in
	// model units.
	DefaultSpacing = 2.4 * 1.42
)

// PaintMode selects how shapes are ordered for painting.
type PaintMode string

const (
	// PaintReverse paints in reverse rank order.
	PaintReverse PaintMode = "reverse"
	// PaintDepth paints far cells before near ones.
	PaintDepth PaintMode = "depth"
)

// Options control layout and geometry. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	Scale     float64
	Spacing   float64
	Bound     int
	Threshold int
	MaxCubes  int
	Metric    snapshot.Metric
	Easing    anim.Easing
	Paint     PaintMode
}

// DefaultOptions returns the standard skyline layout.
func DefaultOptions() Options {
	return Options{
		Scale:     DefaultScale,
		Spacing:   DefaultSpacing,
		Bound:     grid.DefaultBound,
		Threshold: grid.DefaultThreshold,
		MaxCubes:  grid.MaxCubes,
		Metric:    snapshot.MetricMem,
		Easing:    anim.Linear,
		Paint:     PaintReverse,
	}
}

// Shape is one cube ready to draw.
type Shape struct {
	Name        string
	Label       string
	Cube        cube.Cube
	Highlighted bool
	Rank        int
	Cell        grid.Cell
	Total       float64
	Instances   int
}

// Render builds the shapes for snap at the given animation counter.
func Render(snap snapshot.Snapshot, counter int, focus Focus, opts Options) []Shape {
	t := iso.New()
	t.Scale3D(opts.Scale, opts.Scale, opts.Scale)

	angle := anim.State{Counter: counter}.AngleWith(opts.Easing)

	ranked := grid.Rank(snap.Items(opts.Metric))
	placements := grid.Assign(ranked, grid.Cells(opts.Bound, opts.Threshold), opts.MaxCubes)
	if opts.Paint == PaintDepth {
		placements = grid.DepthOrder(placements)
	} else {
		placements = grid.PaintOrder(placements)
	}

	shapes := make([]Shape, len(placements))
	for i, p := range placements {
		pos := cube.Vec3{
			X: float64(p.Cell.X) * opts.Spacing,
			Y: float64(p.Cell.Y) * opts.Spacing,
		}
		shapes[i] = Shape{
			Name:        p.Name,
			Label:       p.Name,
			Cube:        cube.Build(t, angle, pos, p.Values),
			Highlighted: focus.Is(p.Name),
			Rank:        p.Rank,
			Cell:        p.Cell,
			Total:       p.Total(),
			Instances:   len(p.Values),
		}
	}
	return shapes
}
