// Package observability carries instrumentation hooks for the skyline
// engine, the frame cache and outgoing HTTP calls.
//
// Nothing in the engine imports a metrics backend. Instead each subsystem
// asks this package for the currently registered hooks and reports into
// them; main installs a real implementation once at startup and every
// other caller sees no-ops until then. [Prometheus] is the bundled
// implementation.
//
//	prom, _ := observability.NewPrometheus(reg)
//	prom.Install()
//	defer observability.Reset()
//
// A subsystem reports like this:
//
//	start := time.Now()
//	snap, err := src.Fetch(ctx)
//	observability.Engine().OnFetch(ctx, src.Name(), snap.Len(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks observes the fetch, tick and render cycle.
type EngineHooks interface {
	// OnFetch is called after every snapshot fetch. entries is zero when
	// err is non-nil.
	OnFetch(ctx context.Context, source string, entries int, d time.Duration, err error)
	// OnTick is called with the animation counter after it advanced.
	OnTick(ctx context.Context, counter int)
	// OnRender is called once a frame has been produced in format.
	OnRender(ctx context.Context, format string, shapes int, d time.Duration, err error)
}

// CacheHooks observes frame cache traffic. kind is the cached artifact,
// for example "svg".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks observes requests made through httputil.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration)
	// OnError covers transport failures; non-2xx responses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopEngineHooks discards engine events.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnFetch(context.Context, string, int, time.Duration, error)  {}
func (NoopEngineHooks) OnTick(context.Context, int)                                 {}
func (NoopEngineHooks) OnRender(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

type registry struct {
	mu     sync.RWMutex
	engine EngineHooks
	cache  CacheHooks
	http   HTTPHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{
		engine: NoopEngineHooks{},
		cache:  NoopCacheHooks{},
		http:   NoopHTTPHooks{},
	}
}

func (r *registry) update(fn func(*registry)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

func (r *registry) snapshot() (EngineHooks, CacheHooks, HTTPHooks) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine, r.cache, r.http
}

// SetEngineHooks installs h. A nil h leaves the current hooks in place.
func SetEngineHooks(h EngineHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.engine = h })
}

// SetCacheHooks installs h. A nil h leaves the current hooks in place.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.cache = h })
}

// SetHTTPHooks installs h. A nil h leaves the current hooks in place.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.http = h })
}

// Engine returns the installed engine hooks.
func Engine() EngineHooks {
	e, _, _ := hooks.snapshot()
	return e
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	_, c, _ := hooks.snapshot()
	return c
}

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks {
	_, _, h := hooks.snapshot()
	return h
}

// Reset puts every hook back to its no-op.
func Reset() {
	fresh := newRegistry()
	hooks.update(func(r *registry) {
		r.engine, r.cache, r.http = fresh.engine, fresh.cache, fresh.http
	})
}
