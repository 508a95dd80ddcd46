package x11

import (
	"context"
	"errors"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/mj1618/focusguard/internal/model"
)

const testIDMask = 0x1fffff

func browserScope() *clientScope {
	s := newClientScope(testIDMask)
	s.claim(0x1a00003)
	s.markWatched(0x1a00003)
	return s
}

func TestClientScope_Admit(t *testing.T) {
	tests := []struct {
		name   string
		in     xgb.Event
		ok     bool
		follow xproto.Window
	}{
		{"own focus in", xproto.FocusInEvent{Event: 0x1a00051}, true, 0},
		{"own focus out", xproto.FocusOutEvent{Event: 0x1a00003}, true, 0},
		{"foreign focus in", xproto.FocusInEvent{Event: 0x2a00051}, false, 0},
		{"foreign focus out", xproto.FocusOutEvent{Event: 0x2a00051}, false, 0},
		{"own reparent", xproto.ReparentNotifyEvent{Event: 0x1d5, Window: 0x1a00060, Parent: 0x400012}, true, 0},
		{"foreign reparent", xproto.ReparentNotifyEvent{Event: 0x1d5, Window: 0x2a00001, Parent: 0x400}, false, 0},
		{"own create", xproto.CreateNotifyEvent{Parent: 0x1d5, Window: 0x1a00061}, true, 0x1a00061},
		{"foreign create", xproto.CreateNotifyEvent{Parent: 0x1d5, Window: 0x2a00002}, false, 0},
		{"foreign map", xproto.MapNotifyEvent{Window: 0x2a00002}, false, 0},
		{"own unmap", xproto.UnmapNotifyEvent{Window: 0x1a00061}, true, 0},
		{"foreign destroy", xproto.DestroyNotifyEvent{Window: 0x2a00002}, false, 0},
		{"not about a window", xproto.MappingNotifyEvent{}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, follow := browserScope().admit(tt.in)
			if ok != tt.ok || follow != tt.follow {
				t.Errorf("admit() = %v, %s, want %v, %s", ok, model.WindowID(follow), tt.ok, model.WindowID(tt.follow))
			}
		})
	}
}

func TestClientScope_NothingClaimed(t *testing.T) {
	s := newClientScope(testIDMask)
	if ok, _ := s.admit(xproto.ReparentNotifyEvent{Window: 0x1a00060}); ok {
		t.Error("with no watched client every window is foreign")
	}
}

func TestClientScope_WatchedForeignWindow(t *testing.T) {
	s := browserScope()
	s.markWatched(0x2a00007)
	if ok, _ := s.admit(xproto.FocusInEvent{Event: 0x2a00007}); !ok {
		t.Error("an explicitly watched window is in scope whatever its client")
	}
	if ok, _ := s.admit(xproto.DestroyNotifyEvent{Window: 0x2a00007}); !ok {
		t.Fatal("its destruction is reported")
	}
	if s.isWatched(0x2a00007) {
		t.Error("a destroyed window is no longer watched")
	}
	if ok, _ := s.admit(xproto.FocusInEvent{Event: 0x2a00007}); ok {
		t.Error("after destruction the window is foreign again")
	}
}

func TestConn_NextEventSkipsOtherClients(t *testing.T) {
	events := make(chan fetched, 4)
	events <- fetched{ev: xproto.ReparentNotifyEvent{Sequence: 1, Event: 0x1d5, Window: 0x2a00001, Parent: 0x400}}
	events <- fetched{ev: xproto.FocusInEvent{Sequence: 2, Event: 0x2a00051, Detail: xproto.NotifyDetailNonlinear}}
	events <- fetched{ev: xproto.FocusOutEvent{Sequence: 3, Event: 0x1a00003, Detail: xproto.NotifyDetailNonlinear}}
	close(events)
	c := &Conn{events: events, done: make(chan struct{}), scope: browserScope()}
	ctx := context.Background()

	ev, err := c.NextEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Event{Kind: model.KindFocusOut, Serial: 3, Window: 0x1a00003, Detail: model.DetailNonlinear}
	ev.Raw = nil
	if ev != want {
		t.Errorf("NextEvent() = %+v, want %+v", ev, want)
	}
	if _, err := c.NextEvent(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}
