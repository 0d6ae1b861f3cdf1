package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/skyline/pkg/anim"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "", "skyline"},
		{"", "snaps/host.json", "snaps/host"},
		{"out.svg", "host.json", "out"},
		{"out.dot", "", "out"},
		{"out", "host.json", "out"},
		{"out.v2", "", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		withType, withCounter bool
		want                  string
	}{
		{false, false, "out.svg"},
		{true, false, "out_skyline.svg"},
		{false, true, "out-07.svg"},
		{true, true, "out_skyline-07.svg"},
	}
	for _, tt := range tests {
		if got := outputName("out", "skyline", "svg", 7, tt.withType, tt.withCounter); got != tt.want {
			t.Errorf("outputName() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidateRender(t *testing.T) {
	tests := []struct {
		name    string
		opts    renderOpts
		wantErr bool
	}{
		{"defaults", renderOpts{vizTypes: []string{"skyline"}, formats: []string{"svg"}, counter: anim.Frames, scale: 4}, false},
		{"all formats", renderOpts{vizTypes: []string{"skyline", "nodelink"}, formats: []string{"svg", "json", "png", "pdf", "dot"}, scale: 1}, false},
		{"bad format", renderOpts{vizTypes: []string{"skyline"}, formats: []string{"gif"}, scale: 1}, true},
		{"bad type", renderOpts{vizTypes: []string{"tower"}, formats: []string{"svg"}, scale: 1}, true},
		{"counter too high", renderOpts{vizTypes: []string{"skyline"}, formats: []string{"svg"}, counter: anim.Frames + 1, scale: 1}, true},
		{"zero scale", renderOpts{vizTypes: []string{"skyline"}, formats: []string{"svg"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateRender(&tt.opts); (err != nil) != tt.wantErr {
				t.Errorf("validateRender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := sampleSnapshot().Encode(f); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderSingle(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "none.toml")
	os.WriteFile(c.configPath, nil, 0o644)

	input := writeSnapshot(t)
	out := filepath.Join(t.TempDir(), "scene.svg")
	opts := &renderOpts{output: out, vizTypes: []string{"skyline"}, formats: []string{"svg"}, counter: anim.Frames, scale: 4, focus: "beta"}

	if err := c.runRender(context.Background(), input, opts); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, `class="cube focus" id="cube-1" data-name="beta"`) {
		t.Errorf("beta should be focused:\n%s", svg)
	}
	if !strings.Contains(svg, "t = 2.356") {
		t.Errorf("settled caption missing:\n%s", svg)
	}
}

func TestRunRenderAllFramesAndDOT(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "none.toml")
	os.WriteFile(c.configPath, nil, 0o644)

	input := writeSnapshot(t)
	base := filepath.Join(t.TempDir(), "anim")
	opts := &renderOpts{
		output:    base,
		vizTypes:  []string{"skyline", "nodelink"},
		formats:   []string{"json", "dot"},
		allFrames: true,
		counter:   anim.Frames,
		scale:     4,
	}
	if err := c.runRender(context.Background(), input, opts); err != nil {
		t.Fatal(err)
	}

	for i := 0; i <= anim.Frames; i++ {
		path := outputName(base, "skyline", "json", i, true, true)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("frame %d: %v", i, err)
		}
	}
	dot, err := os.ReadFile(base + "_nodelink.dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"entity:alpha"`) {
		t.Errorf("dot output:\n%s", dot)
	}
	// skyline has no dot renderer and nodelink has no json renderer.
	if _, err := os.Stat(base + "_skyline-00.dot"); !os.IsNotExist(err) {
		t.Error("skyline/dot should be skipped")
	}
	if _, err := os.Stat(base + "_nodelink.json"); !os.IsNotExist(err) {
		t.Error("nodelink/json should be skipped")
	}
}

func TestRunRenderMissingSnapshot(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "none.toml")
	os.WriteFile(c.configPath, nil, 0o644)

	opts := &renderOpts{vizTypes: []string{"skyline"}, formats: []string{"svg"}, scale: 4}
	if err := c.runRender(context.Background(), filepath.Join(t.TempDir(), "nope.json"), opts); err == nil {
		t.Fatal("missing snapshot should fail")
	}
}
