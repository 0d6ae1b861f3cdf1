package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/skyline/pkg/snapshot"
)

func sample() snapshot.Snapshot {
	return snapshot.New(map[string][]snapshot.Record{
		"alpha": {{PID: 10, MemPercent: 30, CmdLine: "alpha --serve"}},
		"beta":  {{PID: 20, MemPercent: 10}, {PID: 21, MemPercent: 5}},
		"gamma": {{PID: 30, MemPercent: 1}},
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{Metric: snapshot.MetricMem})

	for _, want := range []string{
		"digraph G {",
		`"root" -> "entity:alpha"`,
		`"entity:beta" -> "pid:20"`,
		`"entity:beta" -> "pid:21"`,
		`"root" [label="host",`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
	if strings.Contains(dot, "alpha --serve") {
		t.Error("command lines only appear in detailed mode")
	}
}

func TestToDOTOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		wantNot []string
	}{
		{"limit keeps largest", Options{Limit: 2}, []string{"entity:alpha", "entity:beta"}, []string{"entity:gamma", "pid:30"}},
		{"focus", Options{Focus: "beta"}, []string{`fillcolor="#d33682"`}, nil},
		{"detailed", Options{Detailed: true}, []string{"alpha --serve"}, nil},
		{"root label", Options{Root: "db-01"}, []string{`"root" [label="db-01",`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(sample(), tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q", w)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(dot, w) {
					t.Errorf("DOT should not contain %q", w)
				}
			}
		})
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(snapshot.Snapshot{}, Options{})
	if strings.Contains(dot, "->") {
		t.Errorf("empty snapshot produced edges:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("SVG without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("starts the graphviz runtime")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{Limit: 2}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "alpha") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
