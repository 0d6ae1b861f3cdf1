package sink

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/iso"
)

type jsonFrame struct {
	SnapshotID string      `json:"snapshot_id"`
	TakenAt    time.Time   `json:"taken_at"`
	Counter    int         `json:"counter"`
	Angle      float64     `json:"angle"`
	Status     string      `json:"status"`
	Focus      *string     `json:"focus"`
	Entries    int         `json:"entries"`
	Shapes     []jsonShape `json:"shapes"`
}

type jsonShape struct {
	Name        string         `json:"name"`
	Rank        int            `json:"rank"`
	Cell        [2]int         `json:"cell"`
	Total       float64        `json:"total"`
	Instances   int            `json:"instances"`
	Highlighted bool           `json:"highlighted"`
	Height      float64        `json:"height"`
	Levels      []float64      `json:"levels"`
	Anchor      [2]float64     `json:"anchor"`
	Outer       [][2]float64   `json:"outer"`
	Base        [][2]float64   `json:"base"`
	Inner       [][][2]float64 `json:"inner"`
}

// RenderJSON exports f with shapes in paint order. focus is null when
// nothing is selected.
func RenderJSON(f engine.Frame) ([]byte, error) {
	out := jsonFrame{
		SnapshotID: f.SnapshotID,
		TakenAt:    f.TakenAt,
		Counter:    f.Counter,
		Angle:      f.Angle,
		Status:     f.Status.String(),
		Entries:    f.Entries,
		Shapes:     make([]jsonShape, len(f.Shapes)),
	}
	if f.Focused {
		name := f.Focus
		out.Focus = &name
	}

	for i, s := range f.Shapes {
		inner := make([][][2]float64, len(s.Cube.Inner))
		for j, p := range s.Cube.Inner {
			inner[j] = pairs(p)
		}
		out.Shapes[i] = jsonShape{
			Name:        s.Name,
			Rank:        s.Rank,
			Cell:        [2]int{s.Cell.X, s.Cell.Y},
			Total:       s.Total,
			Instances:   s.Instances,
			Highlighted: s.Highlighted,
			Height:      s.Cube.Height,
			Levels:      s.Cube.Levels,
			Anchor:      [2]float64{s.Cube.Anchor.X, s.Cube.Anchor.Y},
			Outer:       pairs(s.Cube.Outer),
			Base:        pairs(s.Cube.Base),
			Inner:       inner,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func pairs(path []iso.Point) [][2]float64 {
	out := make([][2]float64, len(path))
	for i, p := range path {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
