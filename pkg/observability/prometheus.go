package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements EngineHooks, CacheHooks and HTTPHooks by updating
// collectors registered on a single registry.
type Prometheus struct {
	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	entries        prometheus.Gauge
	ticks          prometheus.Counter
	counter        prometheus.Gauge
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the skyline collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyline_fetches_total",
			Help: "Snapshot fetches by source and outcome.",
		}, []string{"source", "result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skyline_fetch_duration_seconds",
			Help:    "Time spent fetching one snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skyline_snapshot_entries",
			Help: "Entities in the most recent successful snapshot.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyline_ticks_total",
			Help: "Animation frames advanced.",
		}),
		counter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skyline_animation_counter",
			Help: "Frames left in the current rotation.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyline_renders_total",
			Help: "Frames rendered by format and outcome.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyline_render_duration_seconds",
			Help:    "Time spent rendering one frame.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyline_cache_operations_total",
			Help: "Frame cache lookups and writes.",
		}, []string{"kind", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyline_cache_written_bytes_total",
			Help: "Bytes written to the frame cache.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyline_http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status.",
		}, []string{"method", "host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyline_http_client_duration_seconds",
			Help:    "Outgoing HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
	}

	for _, c := range []prometheus.Collector{
		p.fetches, p.fetchDuration, p.entries, p.ticks, p.counter,
		p.renders, p.renderDuration, p.cacheOps, p.cacheBytes,
		p.httpRequests, p.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Install registers p as the engine, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetEngineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnFetch(_ context.Context, source string, entries int, d time.Duration, err error) {
	p.fetches.WithLabelValues(source, result(err)).Inc()
	p.fetchDuration.Observe(d.Seconds())
	if err == nil {
		p.entries.Set(float64(entries))
	}
}

func (p *Prometheus) OnTick(_ context.Context, counter int) {
	p.ticks.Inc()
	p.counter.Set(float64(counter))
}

func (p *Prometheus) OnRender(_ context.Context, format string, _ int, d time.Duration, err error) {
	p.renders.WithLabelValues(format, result(err)).Inc()
	p.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.httpRequests.WithLabelValues(method, host, "error").Inc()
}
