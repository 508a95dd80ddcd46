package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
)

// Convert classifies an X event. The original value is kept in Raw.
func Convert(xev xgb.Event) model.Event {
	ev := model.Event{Kind: model.KindOther, Raw: xev}
	if s, ok := xev.(interface{ SequenceId() uint16 }); ok {
		ev.Serial = uint64(s.SequenceId())
	}

	switch e := xev.(type) {
	case xproto.FocusInEvent:
		ev.Kind = model.KindFocusIn
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Event)
		ev.Detail = model.FocusDetail(e.Detail)
	case xproto.FocusOutEvent:
		ev.Kind = model.KindFocusOut
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Event)
		ev.Detail = model.FocusDetail(e.Detail)
	case xproto.ReparentNotifyEvent:
		ev.Kind = model.KindReparentNotify
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Window)
		ev.Parent = model.WindowID(e.Parent)
	case xproto.DestroyNotifyEvent:
		ev.Kind = model.KindDestroyNotify
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Window)
	case xproto.CreateNotifyEvent:
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Window)
		ev.Parent = model.WindowID(e.Parent)
	case xproto.MapNotifyEvent:
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Window)
	case xproto.UnmapNotifyEvent:
		ev.Serial = uint64(e.Sequence)
		ev.Window = model.WindowID(e.Window)
	}
	return ev
}

// buttonDetail maps a mouse button to its core protocol button number.
func buttonDetail(b platform.MouseButton) byte {
	switch b {
	case platform.MouseRight:
		return 3
	case platform.MouseMiddle:
		return 2
	default:
		return 1
	}
}

var shiftedKeys = map[rune]string{
	'!': "exclam", '@': "at", '#': "numbersign", '$': "dollar",
	'%': "percent", '^': "asciicircum", '&': "ampersand", '*': "asterisk",
	'(': "parenleft", ')': "parenright", '_': "underscore", '+': "plus",
	'{': "braceleft", '}': "braceright", '|': "bar", ':': "colon",
	'"': "quotedbl", '<': "less", '>': "greater", '?': "question",
	'~': "asciitilde",
}

var plainKeys = map[rune]string{
	' ': "space", '\n': "Return", '\t': "Tab", '\b': "BackSpace",
	'-': "minus", '=': "equal", '[': "bracketleft", ']': "bracketright",
	'\\': "backslash", ';': "semicolon", '\'': "apostrophe", ',': "comma",
	'.': "period", '/': "slash", '`': "grave",
}

// keyName returns the keysym name typing r needs on a US layout and whether
// Shift must be held. An empty name means r cannot be typed.
func keyName(r rune) (string, bool) {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return string(r), false
	case r >= 'A' && r <= 'Z':
		return string(r), true
	}
	if name, ok := plainKeys[r]; ok {
		return name, false
	}
	if name, ok := shiftedKeys[r]; ok {
		return name, true
	}
	return "", false
}
