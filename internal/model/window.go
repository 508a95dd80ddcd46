package model

import (
	"fmt"
	"strconv"
	"strings"
)

// WindowID is an X11 window identifier. Zero means "no window".
type WindowID uint32

// None is the zero window.
const None WindowID = 0

// String formats the identifier the way xwininfo and xprop print it.
func (w WindowID) String() string {
	return fmt.Sprintf("%#x", uint32(w))
}

// IsNone reports whether w is the zero window.
func (w WindowID) IsNone() bool {
	return w == None
}

// Distance returns the absolute difference between two identifiers.
func (w WindowID) Distance(other WindowID) uint32 {
	if w > other {
		return uint32(w - other)
	}
	return uint32(other - w)
}

// ParseWindowID accepts hexadecimal ("0x1e00003") or decimal ("31457283") ids.
func ParseWindowID(s string) (WindowID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("empty window id")
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return None, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return WindowID(v), nil
}

// MarshalText prints ids in hexadecimal in YAML and JSON output.
func (w WindowID) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText accepts what ParseWindowID accepts.
func (w *WindowID) UnmarshalText(b []byte) error {
	v, err := ParseWindowID(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Window is a window together with its immediate tree neighbourhood, as
// returned by a tree query.
type Window struct {
	ID       WindowID   `yaml:"id"                 json:"id"`
	Parent   WindowID   `yaml:"parent,omitempty"   json:"parent,omitempty"`
	Children []WindowID `yaml:"children,omitempty" json:"children,omitempty"`
}
