package x11

import (
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// clientScope keeps track of watched windows and of the X clients owning
// them. The root window's substructure reports windows of every client on
// the display; only those of a watched client are let through.
//
// A client is identified by its resource-id base: every id it allocates
// shares the bits outside the server's resource-id mask.
type clientScope struct {
	mask uint32

	locker  sync.Mutex
	bases   map[uint32]struct{}
	watched map[xproto.Window]struct{}
}

func newClientScope(mask uint32) *clientScope {
	return &clientScope{
		mask:    mask,
		bases:   map[uint32]struct{}{},
		watched: map[xproto.Window]struct{}{},
	}
}

func (s *clientScope) base(w xproto.Window) uint32 {
	return uint32(w) &^ s.mask
}

// claim adds the client owning w to the scope.
func (s *clientScope) claim(w xproto.Window) {
	s.locker.Lock()
	defer s.locker.Unlock()
	s.bases[s.base(w)] = struct{}{}
}

func (s *clientScope) isWatched(w xproto.Window) bool {
	s.locker.Lock()
	defer s.locker.Unlock()
	_, ok := s.watched[w]
	return ok
}

func (s *clientScope) markWatched(w xproto.Window) {
	s.locker.Lock()
	defer s.locker.Unlock()
	s.watched[w] = struct{}{}
}

func (s *clientScope) unmarkWatched(w xproto.Window) {
	s.locker.Lock()
	defer s.locker.Unlock()
	delete(s.watched, w)
}

func (s *clientScope) owns(w xproto.Window) bool {
	s.locker.Lock()
	defer s.locker.Unlock()
	if _, ok := s.watched[w]; ok {
		return true
	}
	_, ok := s.bases[s.base(w)]
	return ok
}

// admit reports whether xev concerns a watched client. follow is a newly
// created window of such a client that should be watched, or 0.
// A destroyed window stops being watched.
func (s *clientScope) admit(xev xgb.Event) (ok bool, follow xproto.Window) {
	switch e := xev.(type) {
	case xproto.FocusInEvent:
		return s.owns(e.Event), 0
	case xproto.FocusOutEvent:
		return s.owns(e.Event), 0
	case xproto.CreateNotifyEvent:
		if !s.owns(e.Window) {
			return false, 0
		}
		return true, e.Window
	case xproto.ReparentNotifyEvent:
		return s.owns(e.Window), 0
	case xproto.DestroyNotifyEvent:
		if !s.owns(e.Window) {
			return false, 0
		}
		s.unmarkWatched(e.Window)
		return true, 0
	case xproto.MapNotifyEvent:
		return s.owns(e.Window), 0
	case xproto.UnmapNotifyEvent:
		return s.owns(e.Window), 0
	}
	return true, 0
}
