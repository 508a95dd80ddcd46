package focus

import (
	"errors"
	"testing"

	"github.com/mj1618/focusguard/internal/model"
)

func TestState_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    Phase
		trigger trigger
		window  model.WindowID
		want    Phase
		illegal bool
	}{
		{"adopt from idle", PhaseNoActiveWindow, triggerAdopt, 100, PhaseActive, false},
		{"adopt after switch", PhaseSwitching, triggerAdopt, 100, PhaseActive, false},
		{"adopt while active", PhaseActive, triggerAdopt, 100, PhaseActive, true},
		{"adopt zero window", PhaseNoActiveWindow, triggerAdopt, model.None, PhaseNoActiveWindow, true},
		{"new window while active", PhaseActive, triggerNewWindow, 205, PhaseAwaitingNewWindow, false},
		{"new window replaces pending", PhaseAwaitingNewWindow, triggerNewWindow, 206, PhaseAwaitingNewWindow, false},
		{"new window without active", PhaseNoActiveWindow, triggerNewWindow, 205, PhaseNoActiveWindow, true},
		{"new window during switch", PhaseSwitching, triggerNewWindow, 205, PhaseSwitching, true},
		{"switch from anywhere", PhaseAwaitingNewWindow, triggerSwitch, model.None, PhaseSwitching, false},
		{"destroy active", PhaseAwaitingNewWindow, triggerActiveDestroyed, model.None, PhaseNoActiveWindow, false},
		{"destroy with no active", PhaseNoActiveWindow, triggerActiveDestroyed, model.None, PhaseNoActiveWindow, true},
		{"settle pending", PhaseAwaitingNewWindow, triggerSettle, model.None, PhaseActive, false},
		{"settle during switch", PhaseSwitching, triggerSettle, model.None, PhaseSwitching, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateIn(t, tt.from)
			err := s.apply(tt.trigger, tt.window)
			if tt.illegal {
				if !errors.Is(err, ErrIllegalTransition) {
					t.Fatalf("expected ErrIllegalTransition, got %v", err)
				}
			} else if err != nil {
				t.Fatal(err)
			}
			if s.Phase() != tt.want {
				t.Errorf("phase = %s, want %s", s.Phase(), tt.want)
			}
		})
	}
}

func TestState_WindowsFollowPhase(t *testing.T) {
	var s State
	if _, ok := s.Active(); ok {
		t.Fatal("zero state must have no active window")
	}
	mustApply(t, &s, triggerAdopt, 100)
	mustApply(t, &s, triggerNewWindow, 205)
	if w, ok := s.Pending(); !ok || w != 205 {
		t.Fatalf("pending = %v %v", w, ok)
	}
	mustApply(t, &s, triggerSwitch, model.None)
	if _, ok := s.Active(); ok {
		t.Error("switch must clear the active window")
	}
	if _, ok := s.Pending(); ok {
		t.Error("switch must clear the pending window")
	}
}

func stateIn(t *testing.T, p Phase) *State {
	t.Helper()
	s := &State{}
	switch p {
	case PhaseSwitching:
		mustApply(t, s, triggerSwitch, model.None)
	case PhaseActive:
		mustApply(t, s, triggerAdopt, 100)
	case PhaseAwaitingNewWindow:
		mustApply(t, s, triggerAdopt, 100)
		mustApply(t, s, triggerNewWindow, 205)
	}
	return s
}

func mustApply(t *testing.T, s *State, tr trigger, w model.WindowID) {
	t.Helper()
	if err := s.apply(tr, w); err != nil {
		t.Fatal(err)
	}
}
