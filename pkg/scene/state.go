package scene

import (
	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Focus is the optionally selected entity. The zero value selects nothing.
type Focus struct {
	name string
	set  bool
}

// FocusOn returns a focus selecting name.
func FocusOn(name string) Focus {
	return Focus{name: name, set: true}
}

// Toggle selects name, or clears the selection if name is already
// selected.
func (f Focus) Toggle(name string) Focus {
	if f.set && f.name == name {
		return Focus{}
	}
	return FocusOn(name)
}

// Selected returns the focused name and whether one is set.
func (f Focus) Selected() (string, bool) {
	return f.name, f.set
}

// Is reports whether name is the focused entity.
func (f Focus) Is(name string) bool {
	return f.set && f.name == name
}

func (f Focus) String() string {
	if !f.set {
		return ""
	}
	return f.name
}

// State is the whole mutable state of a running skyline.
type State struct {
	Snapshot snapshot.Snapshot
	Anim     anim.State
	Focus    Focus
}

// Event is an input to Step.
type Event interface {
	event()
}

// TickEvent advances the animation by one frame.
type TickEvent struct{}

// RefreshEvent replaces the snapshot and restarts the animation.
type RefreshEvent struct {
	Snapshot snapshot.Snapshot
}

// ClickEvent toggles focus on the named entity.
type ClickEvent struct {
	Name string
}

func (TickEvent) event()    {}
func (RefreshEvent) event() {}
func (ClickEvent) event()   {}

// Step applies ev to s and returns the new state. Unknown events leave s
// unchanged.
func Step(s State, ev Event) State {
	switch ev := ev.(type) {
	case TickEvent:
		s.Anim.Tick()
	case RefreshEvent:
		s.Snapshot = ev.Snapshot
		s.Anim.Restart()
	case ClickEvent:
		s.Focus = s.Focus.Toggle(ev.Name)
	}
	return s
}

// Render draws s with opts.
func (s State) Render(opts Options) []Shape {
	return Render(s.Snapshot, s.Anim.Counter, s.Focus, opts)
}
