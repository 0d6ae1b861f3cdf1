package sink

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

func TestRenderJSON(t *testing.T) {
	snap := snapshot.New(map[string][]snapshot.Record{
		"alpha": {{MemPercent: 30}},
		"beta":  {{MemPercent: 10}, {MemPercent: 5}},
	})
	st := scene.State{Snapshot: snap, Anim: anim.State{Counter: 7}, Focus: scene.FocusOn("beta")}

	data, err := RenderJSON(engine.FrameOf(st, scene.DefaultOptions()))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonFrame
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.SnapshotID != snap.ID {
		t.Errorf("SnapshotID = %q, want %q", out.SnapshotID, snap.ID)
	}
	if out.Counter != 7 || out.Status != "animating" {
		t.Errorf("Counter = %d, Status = %q", out.Counter, out.Status)
	}
	if out.Focus == nil || *out.Focus != "beta" {
		t.Errorf("Focus = %v, want beta", out.Focus)
	}
	if len(out.Shapes) != 2 {
		t.Fatalf("len(Shapes) = %d, want 2", len(out.Shapes))
	}

	beta := out.Shapes[0]
	if beta.Name != "beta" || !beta.Highlighted || beta.Instances != 2 {
		t.Errorf("first shape = %+v", beta)
	}
	if len(beta.Outer) != 6 || len(beta.Base) != 6 || len(beta.Inner) != 5 || len(beta.Levels) != 2 {
		t.Errorf("beta geometry sizes: outer %d base %d inner %d levels %d",
			len(beta.Outer), len(beta.Base), len(beta.Inner), len(beta.Levels))
	}
	if beta.Cell != [2]int{-2, -1} {
		t.Errorf("beta cell = %v", beta.Cell)
	}
}

func TestRenderJSONNoFocus(t *testing.T) {
	data, err := RenderJSON(engine.Frame{})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if v, ok := raw["focus"]; !ok || v != nil {
		t.Errorf("focus = %v (present %v), want null", v, ok)
	}
	if shapes, ok := raw["shapes"].([]any); !ok || len(shapes) != 0 {
		t.Errorf("shapes = %v, want empty array", raw["shapes"])
	}
}
