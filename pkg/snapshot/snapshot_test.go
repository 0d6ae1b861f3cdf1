package snapshot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/skyline/pkg/errors"
)

func sample() Snapshot {
	return New(map[string][]Record{
		"alpha": {{PID: 100, MemPercent: 30, CPUPercent: 1.5, CmdLine: "alpha --serve"}},
		"beta":  {{PID: 200, MemPercent: 10, CPUPercent: 0.5}, {PID: 201, MemPercent: 5, CPUPercent: 2}},
	})
}

func TestNewAssignsIdentity(t *testing.T) {
	a, b := New(nil), New(nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
	if a.TakenAt.IsZero() {
		t.Error("TakenAt not set")
	}
	if a.Processes == nil {
		t.Error("Processes should be an empty map, not nil")
	}
	if !(Snapshot{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"", MetricMem, false},
		{"mem", MetricMem, false},
		{"Memory", MetricMem, false},
		{" cpu ", MetricCPU, false},
		{"disk", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMetric(%q) error = %v", tt.in, err)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidMetric) {
				t.Errorf("error code = %q", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseMetric(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValuesAndItems(t *testing.T) {
	s := sample()

	if got := s.Values("beta", MetricMem); !slices.Equal(got, []float64{10, 5}) {
		t.Errorf("Values(beta, mem) = %v", got)
	}
	if got := s.Values("beta", MetricCPU); !slices.Equal(got, []float64{0.5, 2}) {
		t.Errorf("Values(beta, cpu) = %v", got)
	}
	if got := s.Values("gamma", MetricMem); got != nil {
		t.Errorf("Values(gamma) = %v, want nil", got)
	}

	items := s.Items(MetricMem)
	if len(items) != 2 || items[0].Name != "alpha" || items[1].Total() != 15 {
		t.Errorf("Items() = %+v", items)
	}
	if s.Len() != 2 || s.Instances() != 3 {
		t.Errorf("Len() = %d, Instances() = %d", s.Len(), s.Instances())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		procs   map[string][]Record
		wantErr bool
	}{
		{"valid", map[string][]Record{"a": {{MemPercent: 1}}}, false},
		{"empty snapshot", nil, false},
		{"zero magnitudes", map[string][]Record{"a": {{}}}, false},
		{"blank name", map[string][]Record{"  ": {{MemPercent: 1}}}, true},
		{"negative mem", map[string][]Record{"a": {{MemPercent: -1}}}, true},
		{"nan cpu", map[string][]Record{"a": {{CPUPercent: math.NaN()}}}, true},
		{"inf mem", map[string][]Record{"a": {{MemPercent: math.Inf(1)}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.procs).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("error code = %q, want INVALID_SNAPSHOT", errors.GetCode(err))
			}
		})
	}
}

func TestEncodeWireFormat(t *testing.T) {
	orig := sample()
	var buf bytes.Buffer
	if err := orig.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"process_map"`, `"mem_percent": 30`, `"cmd_line": "alpha --serve"`, `"taken_at"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("encoded snapshot missing %s:\n%s", key, buf.String())
		}
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != orig.ID {
		t.Errorf("decoded ID = %q, want %q", got.ID, orig.ID)
	}
	if !slices.Equal(got.Values("beta", MetricMem), []float64{10, 5}) {
		t.Errorf("decoded beta = %v", got.Values("beta", MetricMem))
	}
}

func TestDecodeFillsIdentity(t *testing.T) {
	s, err := Decode(strings.NewReader(`{"process_map": {"x": [{"pid": 1, "mem_percent": 2}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" || s.TakenAt.IsZero() {
		t.Errorf("Decode() left identity empty: %+v", s)
	}

	if _, err := Decode(strings.NewReader(`{"process_map": [`)); !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("malformed input error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		file string
	}{
		{"small.json"},
		{"small.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			s, err := LoadFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Validate(); err != nil {
				t.Fatal(err)
			}
			if got := s.Values("beta", MetricMem); !slices.Equal(got, []float64{10, 5}) {
				t.Errorf("beta = %v, want [10 5]", got)
			}
			if got := s.Processes["alpha"][0].CmdLine; got != "alpha --serve" {
				t.Errorf("alpha cmd_line = %q", got)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join("testdata", "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.yaml")
	if err := os.WriteFile(path, []byte("x: 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension error = %v", err)
	}
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	orig := sample()

	var buf bytes.Buffer
	if err := orig.WriteTOML(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[[process]]") {
		t.Fatalf("WriteTOML output lacks [[process]] tables:\n%s", buf.String())
	}

	got, err := DecodeTOML(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != orig.ID {
		t.Errorf("ID = %q, want %q", got.ID, orig.ID)
	}
	if got.Instances() != orig.Instances() {
		t.Errorf("Instances() = %d, want %d", got.Instances(), orig.Instances())
	}
}
