// Package x11 implements the platform interfaces over the X11 wire protocol.
package x11

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
)

// ErrClosed is returned by NextEvent once the display connection is gone.
var ErrClosed = errors.New("X connection closed")

const watchMask = xproto.EventMaskFocusChange |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskSubstructureNotify

type fetched struct {
	ev  xgb.Event
	err xgb.Error
}

// Conn is one client connection to an X server.
type Conn struct {
	*xgbutil.XUtil

	events    chan fetched
	done      chan struct{}
	closeOnce sync.Once

	scope *clientScope

	inputOnce sync.Once
	inputErr  error
}

var (
	_ platform.EventSource  = (*Conn)(nil)
	_ platform.WindowTree   = (*Conn)(nil)
	_ platform.FocusSetter  = (*Conn)(nil)
	_ platform.Watcher      = (*Conn)(nil)
	_ platform.Inputter     = (*Conn)(nil)
	_ platform.ActiveGetter = (*Conn)(nil)
)

// Dial connects to display (empty means $DISPLAY) and starts receiving the
// root window's substructure events. Of those, NextEvent only reports the
// ones about windows of a client Watch was called for.
func Dial(ctx context.Context, display string) (*Conn, error) {
	x, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to X-server using DISPLAY '%s': %w", display, err)
	}
	c := &Conn{
		XUtil:  x,
		events: make(chan fetched, 64),
		done:   make(chan struct{}),
		scope:  newClientScope(x.Setup().ResourceIdMask),
	}
	go c.pump()

	if err := c.Watch(ctx, model.WindowID(x.RootWin())); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewProvider dials the display and exposes the connection as every backend.
func NewProvider(ctx context.Context, opts platform.ProviderOptions) (*platform.Provider, error) {
	c, err := Dial(ctx, opts.Display)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "connected to X display %q (library %q)", opts.Display, opts.Library)
	return &platform.Provider{
		Library:  opts.Library,
		Events:   c,
		Tree:     c,
		Focus:    c,
		Watcher:  c,
		Inputter: c,
		Active:   c,
		Closers:  []io.Closer{c},
	}, nil
}

func (c *Conn) pump() {
	defer close(c.events)
	for {
		ev, err := c.Conn().WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		select {
		case c.events <- fetched{ev: ev, err: err}:
		case <-c.done:
			return
		}
	}
}

// NextEvent returns the next event. Protocol errors of unchecked requests are
// logged and skipped, and so are events about other clients' windows. New
// windows of a watched client are watched too.
func (c *Conn) NextEvent(ctx context.Context) (model.Event, error) {
	for {
		var f fetched
		var ok bool
		select {
		case <-ctx.Done():
			return model.Event{}, ctx.Err()
		case f, ok = <-c.events:
		}
		if !ok {
			return model.Event{}, ErrClosed
		}
		if f.err != nil {
			logger.Warnf(ctx, "X protocol error: %v", f.err)
			continue
		}

		ok, follow := c.scope.admit(f.ev)
		if !ok {
			logger.Tracef(ctx, "ignoring %s of another client", Convert(f.ev))
			continue
		}
		if follow != 0 {
			if err := c.Watch(ctx, model.WindowID(follow)); err != nil {
				logger.Debugf(ctx, "unable to watch new window %s: %v", model.WindowID(follow), err)
			}
		}
		return Convert(f.ev), nil
	}
}

// QueryTree implements platform.WindowTree.
func (c *Conn) QueryTree(ctx context.Context, w model.WindowID) (model.Window, error) {
	reply, err := xproto.QueryTree(c.Conn(), xproto.Window(w)).Reply()
	if err != nil {
		return model.Window{}, fmt.Errorf("unable to query the tree of window %s: %w", w, err)
	}
	win := model.Window{
		ID:       w,
		Parent:   model.WindowID(reply.Parent),
		Children: make([]model.WindowID, 0, len(reply.Children)),
	}
	for _, child := range reply.Children {
		win.Children = append(win.Children, model.WindowID(child))
	}
	return win, nil
}

// SetInputFocus gives w the keyboard focus, reverting to its parent.
func (c *Conn) SetInputFocus(ctx context.Context, w model.WindowID) error {
	err := xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusParent, xproto.Window(w), xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("unable to set the input focus to %s: %w", w, err)
	}
	return nil
}

// Watch selects focus and structure events on w and all its descendants,
// and brings the client owning w into scope. On the root window only
// substructure events are selected.
func (c *Conn) Watch(ctx context.Context, w model.WindowID) error {
	xw := xproto.Window(w)
	if xw == c.RootWin() {
		return c.selectInput(xw, xproto.EventMaskSubstructureNotify)
	}
	c.scope.claim(xw)

	pending := []xproto.Window{xw}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if c.scope.isWatched(cur) {
			continue
		}
		if err := c.selectInput(cur, watchMask); err != nil {
			if cur == xw {
				return err
			}
			// Children may vanish while we walk.
			logger.Debugf(ctx, "skipping window %s: %v", model.WindowID(cur), err)
			continue
		}
		c.scope.markWatched(cur)

		reply, err := xproto.QueryTree(c.Conn(), cur).Reply()
		if err != nil {
			logger.Debugf(ctx, "unable to list children of %s: %v", model.WindowID(cur), err)
			continue
		}
		pending = append(pending, reply.Children...)
	}
	logger.Tracef(ctx, "watching %s", w)
	return nil
}

func (c *Conn) selectInput(w xproto.Window, mask uint32) error {
	err := xproto.ChangeWindowAttributesChecked(c.Conn(), w, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return fmt.Errorf("unable to select events on window %s: %w", model.WindowID(w), err)
	}
	return nil
}

// ActiveWindow returns the window manager's _NET_ACTIVE_WINDOW.
func (c *Conn) ActiveWindow(ctx context.Context) (model.WindowID, error) {
	w, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return model.None, fmt.Errorf("unable to get active window: %w", err)
	}
	if w == 0 {
		return model.None, fmt.Errorf("the window manager reports no active window")
	}
	return model.WindowID(w), nil
}

// Close disconnects from the display. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn().Close()
	})
	return nil
}
