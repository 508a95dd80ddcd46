package model

import (
	"encoding/json"
	"fmt"
)

// EventKind classifies an intercepted event. Only the kinds that take part in
// focus arbitration are distinguished; everything else is KindOther.
type EventKind uint8

const (
	KindOther EventKind = iota
	KindFocusIn
	KindFocusOut
	KindReparentNotify
	KindDestroyNotify
	// KindKeymapNotify is only ever produced as a placeholder for a
	// suppressed focus event.
	KindKeymapNotify
)

func (k EventKind) String() string {
	switch k {
	case KindFocusIn:
		return "FocusIn"
	case KindFocusOut:
		return "FocusOut"
	case KindReparentNotify:
		return "ReparentNotify"
	case KindDestroyNotify:
		return "DestroyNotify"
	case KindKeymapNotify:
		return "KeymapNotify"
	default:
		return "Other"
	}
}

// MarshalText prints the kind by name in YAML and JSON output.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FocusDetail is the detail field of FocusIn/FocusOut, numbered as in the
// X protocol (NotifyAncestor .. NotifyDetailNone).
type FocusDetail uint8

const (
	DetailAncestor FocusDetail = iota
	DetailVirtual
	DetailInferior
	DetailNonlinear
	DetailNonlinearVirtual
	DetailPointer
	DetailPointerRoot
	DetailNone
)

func (d FocusDetail) String() string {
	switch d {
	case DetailAncestor:
		return "Ancestor"
	case DetailVirtual:
		return "Virtual"
	case DetailInferior:
		return "Inferior"
	case DetailNonlinear:
		return "Nonlinear"
	case DetailNonlinearVirtual:
		return "NonlinearVirtual"
	case DetailPointer:
		return "Pointer"
	case DetailPointerRoot:
		return "PointerRoot"
	case DetailNone:
		return "None"
	default:
		return fmt.Sprintf("Detail(%d)", uint8(d))
	}
}

// MarshalText prints the detail by name in YAML and JSON output.
func (d FocusDetail) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// WithinWindow reports whether focus moves to a containing or contained
// window. Every other detail counts as a move to an outsider.
func (d FocusDetail) WithinWindow() bool {
	return d == DetailAncestor || d == DetailInferior
}

// Event is one event fetched from the windowing system.
type Event struct {
	Kind      EventKind   `yaml:"kind"                json:"kind"`
	Serial    uint64      `yaml:"serial"              json:"serial"`
	SendEvent bool        `yaml:"send_event,omitempty" json:"send_event,omitempty"`
	Window    WindowID    `yaml:"window"              json:"window"`
	Detail    FocusDetail `yaml:"detail"              json:"detail"`
	// Parent is the new parent of a reparented window.
	Parent WindowID `yaml:"parent,omitempty" json:"parent,omitempty"`
	// Synthetic marks placeholders produced in place of a suppressed event.
	Synthetic bool `yaml:"synthetic,omitempty" json:"synthetic,omitempty"`

	// Raw is the backend's own event value. Pass-through returns it untouched.
	Raw any `yaml:"-" json:"-"`
}

// IsFocus reports whether the event is a FocusIn or FocusOut.
func (e Event) IsFocus() bool {
	return e.Kind == KindFocusIn || e.Kind == KindFocusOut
}

func (e Event) String() string {
	if e.IsFocus() {
		return fmt.Sprintf("%s{window=%s detail=%s serial=%d}", e.Kind, e.Window, e.Detail, e.Serial)
	}
	return fmt.Sprintf("%s{window=%s serial=%d}", e.Kind, e.Window, e.Serial)
}

// eventDoc is the printed form of an Event. Detail is kept for focus events
// only, where Ancestor (zero) is a meaningful value.
type eventDoc struct {
	Kind      EventKind    `yaml:"kind"                json:"kind"`
	Serial    uint64       `yaml:"serial"              json:"serial"`
	SendEvent bool         `yaml:"send_event,omitempty" json:"send_event,omitempty"`
	Window    WindowID     `yaml:"window"              json:"window"`
	Detail    *FocusDetail `yaml:"detail,omitempty"    json:"detail,omitempty"`
	Parent    WindowID     `yaml:"parent,omitempty"    json:"parent,omitempty"`
	Synthetic bool         `yaml:"synthetic,omitempty" json:"synthetic,omitempty"`
}

func (e Event) doc() eventDoc {
	d := eventDoc{
		Kind:      e.Kind,
		Serial:    e.Serial,
		SendEvent: e.SendEvent,
		Window:    e.Window,
		Parent:    e.Parent,
		Synthetic: e.Synthetic,
	}
	if e.IsFocus() {
		detail := e.Detail
		d.Detail = &detail
	}
	return d
}

func (e Event) MarshalYAML() (any, error) {
	return e.doc(), nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.doc())
}
