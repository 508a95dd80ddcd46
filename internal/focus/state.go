package focus

import (
	"errors"
	"fmt"

	"github.com/mj1618/focusguard/internal/model"
)

// Phase is where focus arbitration stands. Which windows are known follows
// from the phase: only PhaseActive and PhaseAwaitingNewWindow have an active
// window, only PhaseAwaitingNewWindow has a pending new window.
type Phase uint8

const (
	PhaseNoActiveWindow Phase = iota
	// PhaseSwitching follows a switch signal; events pass untouched until a
	// FocusIn names the next active window.
	PhaseSwitching
	PhaseActive
	// PhaseAwaitingNewWindow means a new top-level window is under
	// construction next to the active one.
	PhaseAwaitingNewWindow
)

func (p Phase) String() string {
	switch p {
	case PhaseNoActiveWindow:
		return "no-active-window"
	case PhaseSwitching:
		return "switching"
	case PhaseActive:
		return "active"
	case PhaseAwaitingNewWindow:
		return "awaiting-new-window"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// MarshalText prints the phase by name in YAML and JSON output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

type trigger uint8

const (
	// triggerAdopt makes the window of a FocusIn the active one.
	triggerAdopt trigger = iota
	triggerSwitch
	// triggerNewWindow records a reparented window as pending.
	triggerNewWindow
	triggerActiveDestroyed
	// triggerSettle drops the pending window.
	triggerSettle
)

func (t trigger) String() string {
	switch t {
	case triggerAdopt:
		return "adopt"
	case triggerSwitch:
		return "switch"
	case triggerNewWindow:
		return "new-window"
	case triggerActiveDestroyed:
		return "active-destroyed"
	case triggerSettle:
		return "settle"
	default:
		return fmt.Sprintf("trigger(%d)", uint8(t))
	}
}

var transitions = map[Phase]map[trigger]Phase{
	PhaseNoActiveWindow: {
		triggerAdopt:  PhaseActive,
		triggerSwitch: PhaseSwitching,
	},
	PhaseSwitching: {
		triggerAdopt:  PhaseActive,
		triggerSwitch: PhaseSwitching,
	},
	PhaseActive: {
		triggerSwitch:          PhaseSwitching,
		triggerNewWindow:       PhaseAwaitingNewWindow,
		triggerActiveDestroyed: PhaseNoActiveWindow,
		triggerSettle:          PhaseActive,
	},
	PhaseAwaitingNewWindow: {
		triggerSwitch:          PhaseSwitching,
		triggerNewWindow:       PhaseAwaitingNewWindow,
		triggerActiveDestroyed: PhaseNoActiveWindow,
		triggerSettle:          PhaseActive,
	},
}

// ErrIllegalTransition is returned when a trigger does not apply to the
// current phase.
var ErrIllegalTransition = errors.New("illegal focus state transition")

// State is the focus arbitration state of one intercepted client.
// It is not safe for concurrent use.
type State struct {
	phase   Phase
	active  model.WindowID
	pending model.WindowID

	// Closing is set while a close-tagged switch has not been resolved.
	Closing bool
	// ActiveFromClose records that the active window was adopted while
	// Closing was set.
	ActiveFromClose bool
	// StealPending is set when a FocusIn near the pending window was let
	// through and focus must be taken back to the active window.
	StealPending bool
	// FocusInSeen is set once a FocusIn on the active window was delivered.
	FocusInSeen bool
}

func (s *State) Phase() Phase {
	return s.phase
}

// Active returns the active window, if any.
func (s *State) Active() (model.WindowID, bool) {
	return s.active, s.active != model.None
}

// Pending returns the new window under construction, if any.
func (s *State) Pending() (model.WindowID, bool) {
	return s.pending, s.pending != model.None
}

// apply moves the state along the transition table. w is the window the
// trigger is about; it is ignored by triggers that only clear windows.
func (s *State) apply(t trigger, w model.WindowID) error {
	next, ok := transitions[s.phase][t]
	if !ok {
		return fmt.Errorf("%w: %s in phase %s", ErrIllegalTransition, t, s.phase)
	}
	switch t {
	case triggerAdopt:
		if w == model.None {
			return fmt.Errorf("%w: adopting the zero window", ErrIllegalTransition)
		}
		s.active, s.pending = w, model.None
	case triggerSwitch, triggerActiveDestroyed:
		s.active, s.pending = model.None, model.None
	case triggerNewWindow:
		if w == model.None {
			return fmt.Errorf("%w: the zero window as new window", ErrIllegalTransition)
		}
		s.pending = w
	case triggerSettle:
		s.pending = model.None
	}
	s.phase = next
	return nil
}

// Snapshot is a read-only copy of State for reporting.
type Snapshot struct {
	Phase           Phase          `yaml:"phase"                     json:"phase"`
	Active          model.WindowID `yaml:"active,omitempty"          json:"active,omitempty"`
	Pending         model.WindowID `yaml:"pending,omitempty"         json:"pending,omitempty"`
	Closing         bool           `yaml:"closing"                   json:"closing"`
	ActiveFromClose bool           `yaml:"active_from_close"         json:"active_from_close"`
	StealPending    bool           `yaml:"steal_pending"             json:"steal_pending"`
	FocusInSeen     bool           `yaml:"focus_in_seen"             json:"focus_in_seen"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Phase:           s.phase,
		Active:          s.active,
		Pending:         s.pending,
		Closing:         s.Closing,
		ActiveFromClose: s.ActiveFromClose,
		StealPending:    s.StealPending,
		FocusInSeen:     s.FocusInSeen,
	}
}
