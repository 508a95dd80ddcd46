package platform

import (
	"context"
	"time"

	"github.com/mj1618/focusguard/internal/model"
)

// EventSource is the windowing system's "fetch next event" primitive.
type EventSource interface {
	// NextEvent blocks until one event is available and returns it.
	NextEvent(ctx context.Context) (model.Event, error)
}

// WindowTree answers parent/child queries against the window hierarchy.
type WindowTree interface {
	// QueryTree returns the parent and direct children of w. It fails when
	// w no longer exists.
	QueryTree(ctx context.Context, w model.WindowID) (model.Window, error)
}

// FocusSetter assigns keyboard input focus.
type FocusSetter interface {
	SetInputFocus(ctx context.Context, w model.WindowID) error
}

// Watcher subscribes the event source to focus and structure events of a window.
type Watcher interface {
	Watch(ctx context.Context, w model.WindowID) error
}

// ActiveGetter reports the window the window manager considers active.
type ActiveGetter interface {
	ActiveWindow(ctx context.Context) (model.WindowID, error)
}

// Backend is everything focus arbitration needs from the windowing system.
type Backend interface {
	EventSource
	WindowTree
	FocusSetter
}

// Inputter synthesizes keyboard and mouse input directed at a window.
// Coordinates are relative to the window's origin.
type Inputter interface {
	SendKeys(ctx context.Context, w model.WindowID, text string, perKey time.Duration) error
	Click(ctx context.Context, w model.WindowID, x, y int, button MouseButton) error
	MouseDown(ctx context.Context, w model.WindowID, x, y int, button MouseButton) error
	MouseUp(ctx context.Context, w model.WindowID, x, y int, button MouseButton) error
	MouseMove(ctx context.Context, w model.WindowID, duration time.Duration, fromX, fromY, toX, toY int) error
}
