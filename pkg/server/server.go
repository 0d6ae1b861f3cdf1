package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/cache"
	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/history"
	"github.com/matzehuels/skyline/pkg/observability"
	"github.com/matzehuels/skyline/pkg/render/nodelink"
	"github.com/matzehuels/skyline/pkg/render/sink"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultRequestTimeout = 10 * time.Second
	DefaultPollInterval   = engine.DefaultTickInterval
	historyLimit          = 20
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Engine is the part of engine.Engine the server drives.
type Engine interface {
	Frame(ctx context.Context) (engine.Frame, error)
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
	Click(ctx context.Context, name string) error
	Refresh(ctx context.Context) error
	Options() scene.Options
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCache stores rendered frames in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyer replaces the frame key scheme.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) { s.keyer = k }
}

// WithHistory serves store at /history.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithMetrics serves g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// WithPollInterval sets how often the live page asks for a new frame.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.poll = d
		}
	}
}

// Server serves one engine.
type Server struct {
	engine  Engine
	logger  *log.Logger
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	history history.Store
	metrics prometheus.Gatherer
	poll    time.Duration
}

// New returns a server for e.
func New(e Engine, opts ...Option) *Server {
	s := &Server{
		engine:  e,
		logger:  log.Default(),
		cache:   cache.NewNullCache(),
		ttl:     DefaultCacheTTL,
		history: history.NullStore{},
		poll:    DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keyer == nil {
		s.keyer = cache.NewScopedKeyer(nil, optionsScope(e.Options()))
	}
	return s
}

// optionsScope keeps frames rendered with different options apart in a
// shared backend.
// Easings are functions, so the scope samples the angle at every counter
// value instead of naming the easing.
func optionsScope(o scene.Options) string {
	var sig strings.Builder
	fmt.Fprintf(&sig, "%s|%s|%g|%g|%d|%d|%d",
		o.Metric, o.Paint, o.Scale, o.Spacing, o.Bound, o.Threshold, o.MaxCubes)
	for c := 0; c <= anim.Frames; c++ {
		fmt.Fprintf(&sig, "|%.9f", anim.State{Counter: c}.AngleWith(o.Easing))
	}
	return cache.Hash([]byte(sig.String()))[:12] + ":"
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/processes", s.handleProcesses)
	r.Get("/scene.svg", s.handleSVG)
	r.Get("/scene.json", s.handleJSON)
	r.Get("/scene.dot", s.handleDOT)
	r.Get("/history", s.handleHistory)
	r.Post("/focus/{name}", s.handleFocus)
	r.Post("/refresh", s.handleRefresh)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, struct{ PollMillis int64 }{s.poll.Milliseconds()}); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render index"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := snap.Encode(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.serveFrame(w, r, "svg", "image/svg+xml", func(f engine.Frame) ([]byte, error) {
		return sink.RenderSVG(f.Shapes,
			sink.WithInteraction("focus/"),
			sink.WithCaption(sink.Caption(f.Angle)),
		), nil
	})
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	s.serveFrame(w, r, "json", "application/json", sink.RenderJSON)
}

// serveFrame renders the current frame through the cache.
func (s *Server) serveFrame(w http.ResponseWriter, r *http.Request, format, contentType string, render func(engine.Frame) ([]byte, error)) {
	ctx := r.Context()
	f, err := s.engine.Frame(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	focus := ""
	if f.Focused {
		focus = f.Focus
	}
	key := s.keyer.FrameKey(f.SnapshotID, f.Counter, focus, format)
	data, err := cache.GetOrRender(ctx, s.cache, key, format, s.ttl, func() ([]byte, error) {
		start := time.Now()
		out, err := render(f)
		observability.Engine().OnRender(ctx, format, len(f.Shapes), time.Since(start), err)
		return out, err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := nodelink.Options{
		Metric:   s.engine.Options().Metric,
		Limit:    s.engine.Options().MaxCubes,
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	if f, err := s.engine.Frame(r.Context()); err == nil && f.Focused {
		opts.Focus = f.Focus
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(nodelink.ToDOT(snap, opts)))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	recent, err := s.history.Recent(r.Context(), historyLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recent == nil {
		recent = []history.Summary{}
	}
	writeJSON(w, http.StatusOK, recent)
}

// focusName decodes the {name} segment. chi matches on the escaped path
// whenever one is present, so names with "/" or ":" arrive still escaped.
func focusName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed entity name %q", name)
	}
	return decoded, nil
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	name, err := focusName(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.engine.Click(r.Context(), name); err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := s.engine.Frame(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := struct {
		Focus *string `json:"focus"`
	}{}
	if f.Focused {
		resp.Focus = &f.Focus
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Refresh(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// =============================================================================
// Helpers
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
