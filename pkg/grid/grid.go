// Package grid decides where each entity stands in the skyline and in what
// order the cubes are painted.
//
// Cells are carved out of a square grid as a diamond of small Manhattan
// distance around the origin. Entities are ranked by total magnitude and
// dealt into the cells in enumeration order, so the largest entity takes
// the first cell. Painting happens in reverse rank order.
package grid

import (
	"cmp"
	"slices"
)

const (
	// DefaultBound is the half-width of the square the cells are taken from.
	DefaultBound = 10

	// DefaultThreshold is the exclusive Manhattan radius of the diamond.
	DefaultThreshold = 4

	// MaxCubes caps the skyline regardless of how many cells exist.
	MaxCubes = 25
)

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Manhattan returns |x| + |y|.
func Manhattan(x, y int) int {
	return abs(x) + abs(y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Cells enumerates every cell in [-bound, bound)² whose Manhattan distance
// from the origin is below threshold. The order is x ascending, then y
// ascending, and never changes for the same arguments.
func Cells(bound, threshold int) []Cell {
	var cells []Cell
	for x := -bound; x < bound; x++ {
		for y := -bound; y < bound; y++ {
			if Manhattan(x, y) < threshold {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// Item is one rankable entity: a name and its stacked magnitudes.
type Item struct {
	Name   string
	Values []float64
}

// Total returns the sum of the item's values.
func (it Item) Total() float64 {
	var sum float64
	for _, v := range it.Values {
		sum += v
	}
	return sum
}

// Rank returns a copy of items sorted by descending total. Equal totals are
// ordered by name so repeated runs over the same input agree.
func Rank(items []Item) []Item {
	ranked := slices.Clone(items)
	totals := make(map[string]float64, len(ranked))
	for _, it := range ranked {
		totals[it.Name] = it.Total()
	}
	slices.SortStableFunc(ranked, func(a, b Item) int {
		if c := cmp.Compare(totals[b.Name], totals[a.Name]); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}

// Placement pairs a ranked item with the cell it occupies.
type Placement struct {
	Item
	Cell Cell
	// Rank is the zero-based position in ranking order.
	Rank int
}

// Assign deals ranked items into cells in order. The result is truncated to
// the smallest of len(ranked), len(cells) and limit; a non-positive limit
// means no cap beyond the cell count.
func Assign(ranked []Item, cells []Cell, limit int) []Placement {
	n := min(len(ranked), len(cells))
	if limit > 0 {
		n = min(n, limit)
	}
	placements := make([]Placement, n)
	for i := range n {
		placements[i] = Placement{Item: ranked[i], Cell: cells[i], Rank: i}
	}
	return placements
}

// PaintOrder returns the placements reversed, lowest rank first.
//
// Higher ranks sit nearer the center and paint last. Occlusion is not
// guaranteed for every layout; see [DepthOrder].
func PaintOrder(p []Placement) []Placement {
	out := slices.Clone(p)
	slices.Reverse(out)
	return out
}

// DepthOrder returns the placements sorted far-to-near by the screen depth
// of their cell under the isometric projection: cells with a larger x+y are
// further back and paint first. Ties keep paint order.
func DepthOrder(p []Placement) []Placement {
	out := PaintOrder(p)
	slices.SortStableFunc(out, func(a, b Placement) int {
		return cmp.Compare(b.Cell.X+b.Cell.Y, a.Cell.X+a.Cell.Y)
	})
	return out
}
