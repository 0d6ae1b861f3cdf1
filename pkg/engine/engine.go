package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/history"
	"github.com/matzehuels/skyline/pkg/observability"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
	"github.com/matzehuels/skyline/pkg/source"
)

const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultTickInterval    = 40 * time.Millisecond
)

// Frame is one rendered phase of the skyline.
type Frame struct {
	Shapes     []scene.Shape
	Counter    int
	Angle      float64
	Status     anim.Status
	Focus      string
	Focused    bool
	SnapshotID string
	TakenAt    time.Time
	Entries    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSceneOptions sets layout and geometry options.
func WithSceneOptions(o scene.Options) Option {
	return func(e *Engine) { e.opts = o }
}

// WithRefreshInterval sets how often snapshots are fetched.
func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshEvery = d
		}
	}
}

// WithTickInterval sets the animation frame period.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickEvery = d
		}
	}
}

// WithHistory records a summary of every accepted snapshot in s.
func WithHistory(s history.Store) Option {
	return func(e *Engine) { e.history = s }
}

// WithFrameListener registers fn to receive a frame after every state
// change. fn runs on the engine goroutine and must not block or call back
// into the engine.
func WithFrameListener(fn func(Frame)) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, fn) }
}

// WithInitialSnapshot seeds the state before the first fetch completes.
func WithInitialSnapshot(s snapshot.Snapshot) Option {
	return func(e *Engine) { e.initial = &s }
}

// Engine drives one skyline. Create it with New and start it with Run.
type Engine struct {
	src          source.Source
	opts         scene.Options
	logger       *log.Logger
	refreshEvery time.Duration
	tickEvery    time.Duration
	history      history.Store
	listeners    []func(Frame)
	initial      *snapshot.Snapshot

	events  chan scene.Event
	fetched chan fetchResult
	refresh chan struct{}
	queries chan chan scene.State
	done    chan struct{}
	started atomic.Bool
}

type fetchResult struct {
	snap snapshot.Snapshot
	err  error
}

// New returns an engine fetching from src.
func New(src source.Source, opts ...Option) *Engine {
	e := &Engine{
		src:          src,
		opts:         scene.DefaultOptions(),
		logger:       log.Default(),
		refreshEvery: DefaultRefreshInterval,
		tickEvery:    DefaultTickInterval,
		history:      history.NullStore{},
		events:       make(chan scene.Event),
		fetched:      make(chan fetchResult),
		refresh:      make(chan struct{}, 1),
		queries:      make(chan chan scene.State),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options returns the scene options the engine renders with.
func (e *Engine) Options() scene.Options { return e.opts }

// Run owns the state until ctx is cancelled. It fetches immediately, then
// on every refresh interval. Run may be called once.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, "engine already running")
	}
	defer close(e.done)

	var (
		st       scene.State
		wg       sync.WaitGroup
		fetching bool
		ticker   *time.Ticker
		tickC    <-chan time.Time
	)
	if e.initial != nil {
		st = scene.Step(st, scene.RefreshEvent{Snapshot: *e.initial})
	}

	refresh := time.NewTicker(e.refreshEvery)
	defer refresh.Stop()
	defer wg.Wait()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	startFetch := func() {
		if fetching {
			e.logger.Debug("fetch already in flight", "source", e.src.Name())
			return
		}
		fetching = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.fetch(ctx)
		}()
	}
	startTicks := func() {
		if ticker == nil {
			ticker = time.NewTicker(e.tickEvery)
		} else {
			ticker.Reset(e.tickEvery)
		}
		tickC = ticker.C
	}
	stopTicks := func() {
		if ticker != nil {
			ticker.Stop()
		}
		tickC = nil
	}
	apply := func(ev scene.Event) {
		st = scene.Step(st, ev)
		e.notify(st)
	}

	if st.Anim.Running() {
		startTicks()
	}
	startFetch()
	e.logger.Info("engine started", "source", e.src.Name(), "refresh", e.refreshEvery, "tick", e.tickEvery)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return nil

		case <-refresh.C:
			startFetch()

		case <-e.refresh:
			startFetch()

		case res := <-e.fetched:
			fetching = false
			if res.err != nil {
				e.logger.Warn("fetch failed, keeping previous snapshot", "source", e.src.Name(), "err", res.err)
				continue
			}
			apply(scene.RefreshEvent{Snapshot: res.snap})
			startTicks()
			e.logger.Debug("snapshot replaced", "id", res.snap.ID, "entries", res.snap.Len())

		case <-tickC:
			apply(scene.TickEvent{})
			observability.Engine().OnTick(ctx, st.Anim.Counter)
			if !st.Anim.Running() {
				stopTicks()
			}

		case ev := <-e.events:
			apply(ev)

		case reply := <-e.queries:
			reply <- st
		}
	}
}

// fetch runs on its own goroutine and posts exactly one result unless ctx
// ends first.
func (e *Engine) fetch(ctx context.Context) {
	start := time.Now()
	snap, err := e.src.Fetch(ctx)
	observability.Engine().OnFetch(ctx, e.src.Name(), snap.Len(), time.Since(start), err)

	if err == nil {
		sum := history.Summarize(snap, e.opts.Metric, history.TopN)
		if herr := e.history.Record(ctx, sum); herr != nil {
			e.logger.Warn("history record failed", "id", snap.ID, "err", herr)
		}
	}

	select {
	case e.fetched <- fetchResult{snap: snap, err: err}:
	case <-ctx.Done():
	}
}

func (e *Engine) notify(st scene.State) {
	if len(e.listeners) == 0 {
		return
	}
	f := e.render(st)
	for _, fn := range e.listeners {
		fn(f)
	}
}

func (e *Engine) render(st scene.State) Frame {
	return FrameOf(st, e.opts)
}

// FrameOf renders st without a running engine. The CLI uses it for
// one-shot renders.
func FrameOf(st scene.State, opts scene.Options) Frame {
	name, ok := st.Focus.Selected()
	return Frame{
		Shapes:     st.Render(opts),
		Counter:    st.Anim.Counter,
		Angle:      st.Anim.AngleWith(opts.Easing),
		Status:     st.Anim.Status(),
		Focus:      name,
		Focused:    ok,
		SnapshotID: st.Snapshot.ID,
		TakenAt:    st.Snapshot.TakenAt,
		Entries:    st.Snapshot.Len(),
	}
}

var errStopped = errors.New(errors.ErrCodeInternal, "engine stopped")

// send delivers ev to the loop.
func (e *Engine) send(ctx context.Context, ev scene.Event) error {
	select {
	case e.events <- ev:
		return nil
	case <-e.done:
		return errStopped
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "engine busy")
	}
}

// Click toggles focus on name.
func (e *Engine) Click(ctx context.Context, name string) error {
	if err := errors.ValidateEntityName(name); err != nil {
		return err
	}
	return e.send(ctx, scene.ClickEvent{Name: name})
}

// Refresh asks for a fetch now. Requests made while one is pending
// collapse into one.
func (e *Engine) Refresh(ctx context.Context) error {
	select {
	case e.refresh <- struct{}{}:
	default:
	}
	select {
	case <-e.done:
		return errStopped
	default:
		return ctx.Err()
	}
}

// State returns a copy of the current state.
func (e *Engine) State(ctx context.Context) (scene.State, error) {
	reply := make(chan scene.State, 1)
	select {
	case e.queries <- reply:
	case <-e.done:
		return scene.State{}, errStopped
	case <-ctx.Done():
		return scene.State{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "engine busy")
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return scene.State{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "engine busy")
	}
}

// Frame renders the current phase. Rendering happens on the caller's
// goroutine from a copy of the state.
func (e *Engine) Frame(ctx context.Context) (Frame, error) {
	st, err := e.State(ctx)
	if err != nil {
		return Frame{}, err
	}
	start := time.Now()
	f := e.render(st)
	observability.Engine().OnRender(ctx, "frame", len(f.Shapes), time.Since(start), nil)
	return f, nil
}

// Snapshot returns the snapshot currently displayed.
func (e *Engine) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	st, err := e.State(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return st.Snapshot, nil
}
