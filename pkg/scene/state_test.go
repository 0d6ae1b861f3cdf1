package scene

import (
	"testing"

	"github.com/matzehuels/skyline/pkg/anim"
)

func TestFocusToggle(t *testing.T) {
	var f Focus
	if _, ok := f.Selected(); ok {
		t.Fatal("zero Focus should select nothing")
	}

	f = f.Toggle("a")
	if name, ok := f.Selected(); !ok || name != "a" {
		t.Fatalf("after Toggle(a): %q %v", name, ok)
	}

	f = f.Toggle("b")
	if !f.Is("b") || f.Is("a") {
		t.Fatalf("Toggle(b) should move focus to b, got %q", f)
	}

	f = f.Toggle("b")
	if _, ok := f.Selected(); ok {
		t.Fatalf("Toggle(b) twice should clear focus, got %q", f)
	}
}

func TestFocusToggleEmptyName(t *testing.T) {
	f := Focus{}.Toggle("")
	if !f.Is("") {
		t.Error("empty name is a valid selection")
	}
	if f.Toggle("").Is("") {
		t.Error("second toggle should clear")
	}
}

func TestStep(t *testing.T) {
	snap := alphaBeta()

	s := Step(State{}, RefreshEvent{Snapshot: snap})
	if s.Snapshot.ID != snap.ID {
		t.Fatal("RefreshEvent did not replace snapshot")
	}
	if s.Anim.Counter != anim.Frames {
		t.Fatalf("Counter after refresh = %d, want %d", s.Anim.Counter, anim.Frames)
	}

	for range anim.Frames {
		s = Step(s, TickEvent{})
	}
	if s.Anim.Status() != anim.Idle {
		t.Fatalf("Status after %d ticks = %v", anim.Frames, s.Anim.Status())
	}
	if after := Step(s, TickEvent{}); after.Anim != s.Anim {
		t.Error("tick while idle changed animation state")
	}

	s = Step(s, ClickEvent{Name: "alpha"})
	if !s.Focus.Is("alpha") {
		t.Error("click did not focus alpha")
	}
	if s.Anim.Running() {
		t.Error("click must not restart the animation")
	}

	// A refresh mid-animation restarts from the top and keeps focus.
	s = Step(s, RefreshEvent{Snapshot: alphaBeta()})
	s = Step(s, TickEvent{})
	s = Step(s, RefreshEvent{Snapshot: alphaBeta()})
	if s.Anim.Counter != anim.Frames || !s.Focus.Is("alpha") {
		t.Errorf("after second refresh: counter %d focus %q", s.Anim.Counter, s.Focus)
	}
}

func TestStepDoesNotAliasInput(t *testing.T) {
	s := State{Anim: anim.State{Counter: 3}}
	_ = Step(s, TickEvent{})
	if s.Anim.Counter != 3 {
		t.Error("Step mutated its input")
	}
}

func TestStateRender(t *testing.T) {
	s := Step(State{}, RefreshEvent{Snapshot: alphaBeta()})
	s = Step(s, ClickEvent{Name: "alpha"})

	shapes := s.Render(DefaultOptions())
	if len(shapes) != 2 || !shapes[1].Highlighted {
		t.Errorf("State.Render() = %+v", shapes)
	}
}
