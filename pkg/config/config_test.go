package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	opts, err := cfg.SceneOptions()
	if err != nil {
		t.Fatal(err)
	}
	def := scene.DefaultOptions()
	if opts.Scale != def.Scale || opts.Spacing != def.Spacing || opts.MaxCubes != def.MaxCubes || opts.Metric != def.Metric {
		t.Errorf("SceneOptions() = %+v, want defaults %+v", opts, def)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.RefreshInterval.Duration != 5*time.Second {
		t.Errorf("Load(\"\") = %+v", cfg)
	}
}

func TestDecodeOverrides(t *testing.T) {
	in := `
addr = ":9090"
refresh_interval = "2s"
tick_interval = "16ms"

[scene]
metric = "cpu"
max_cubes = 9
easing = "cubic-in-out"
paint = "depth"

[source]
kind = "remote"
url = "http://db-01:8080"
timeout = "1s"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1m"

[history]
backend = "mongo"
uri = "mongodb://localhost:27017"
`
	cfg, err := Decode(strings.NewReader(in), Default())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Addr != ":9090" || cfg.RefreshInterval.Duration != 2*time.Second || cfg.TickInterval.Duration != 16*time.Millisecond {
		t.Errorf("top level = %+v", cfg)
	}
	if cfg.Source.Kind != SourceRemote || cfg.Source.Timeout.Duration != time.Second {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Cache.TTL.Duration != time.Minute || cfg.History.Database != "skyline" {
		t.Errorf("cache %+v history %+v", cfg.Cache, cfg.History)
	}

	opts, err := cfg.SceneOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Metric != snapshot.MetricCPU || opts.MaxCubes != 9 || opts.Paint != scene.PaintDepth {
		t.Errorf("scene options = %+v", opts)
	}
	// Unset scene keys keep their defaults.
	if opts.Scale != scene.DefaultScale {
		t.Errorf("Scale = %v, want default", opts.Scale)
	}
	if got := opts.Easing(0.25); got != 0.0625 {
		t.Errorf("easing(0.25) = %v, want cubic", got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", `addr = `},
		{"bad duration", `refresh_interval = "soon"`},
		{"zero tick", `tick_interval = "0s"`},
		{"unknown key", `colour = "red"`},
		{"metric", "[scene]\nmetric = \"disk\""},
		{"easing", "[scene]\neasing = \"bounce\""},
		{"paint", "[scene]\npaint = \"random\""},
		{"scale", "[scene]\nscale = 0.0"},
		{"remote without url", "[source]\nkind = \"remote\""},
		{"file without path", "[source]\nkind = \"file\""},
		{"source kind", "[source]\nkind = \"ssh\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"cache backend", "[cache]\nbackend = \"memcached\""},
		{"mongo without uri", "[history]\nbackend = \"mongo\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), Default())
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			code := errors.GetCode(err)
			if code != errors.ErrCodeInvalidConfig && code != errors.ErrCodeInvalidMetric {
				t.Errorf("error code = %q (%v)", code, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skyline.toml")
	if err := os.WriteFile(path, []byte("addr = \"127.0.0.1:7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:7000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scene.Metric = "cpu"
	cfg.RefreshInterval = Duration{90 * time.Second}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `refresh_interval = "1m30s"`) {
		t.Errorf("encoded config:\n%s", buf.String())
	}

	back, err := Decode(&buf, Default())
	if err != nil {
		t.Fatal(err)
	}
	if back.Scene.Metric != "cpu" || back.RefreshInterval.Duration != 90*time.Second {
		t.Errorf("round trip = %+v", back)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "skyline.toml"))
	if err != nil {
		t.Fatalf("examples/skyline.toml: %v", err)
	}
	if cfg.Source.Kind != SourceFile || cfg.Cache.Backend != CacheFile {
		t.Errorf("example config = %+v", cfg)
	}
}
