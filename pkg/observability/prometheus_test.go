package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestPrometheusRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	p.OnFetch(ctx, "host", 12, 20*time.Millisecond, nil)
	p.OnFetch(ctx, "host", 0, time.Millisecond, errors.New("boom"))
	p.OnTick(ctx, 14)
	p.OnTick(ctx, 13)
	p.OnRender(ctx, "svg", 12, time.Millisecond, nil)
	p.OnCacheHit(ctx, "svg")
	p.OnCacheSet(ctx, "svg", 512)
	p.OnResponse(ctx, "GET", "example.com", "/processes", 200, time.Millisecond)
	p.OnError(ctx, "GET", "example.com", "/processes", errors.New("reset"))

	families := gather(t, reg)

	tests := []struct {
		name string
		want float64
		get  func(*dto.MetricFamily) float64
	}{
		{"skyline_fetches_total", 2, sumCounters},
		{"skyline_snapshot_entries", 12, func(f *dto.MetricFamily) float64 { return f.Metric[0].GetGauge().GetValue() }},
		{"skyline_ticks_total", 2, sumCounters},
		{"skyline_animation_counter", 13, func(f *dto.MetricFamily) float64 { return f.Metric[0].GetGauge().GetValue() }},
		{"skyline_renders_total", 1, sumCounters},
		{"skyline_cache_operations_total", 2, sumCounters},
		{"skyline_cache_written_bytes_total", 512, sumCounters},
		{"skyline_http_client_requests_total", 2, sumCounters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := families[tt.name]
			if !ok {
				t.Fatalf("metric %s not gathered", tt.name)
			}
			if got := tt.get(f); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPrometheusDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheus(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPrometheus(reg); err == nil {
		t.Error("second registration on the same registry should fail")
	}
}

func TestPrometheusInstall(t *testing.T) {
	defer Reset()

	p, err := NewPrometheus(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	p.Install()
	if Engine() != EngineHooks(p) || Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Install() should register p for every hook kind")
	}
}

func sumCounters(f *dto.MetricFamily) float64 {
	var sum float64
	for _, m := range f.Metric {
		sum += m.GetCounter().GetValue()
	}
	return sum
}
