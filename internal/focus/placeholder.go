package focus

import "github.com/mj1618/focusguard/internal/model"

// Placeholder builds the inert event delivered instead of a suppressed one.
// Only routing metadata survives; there is no detail and no raw payload, so
// nothing downstream can read it as a focus change.
func Placeholder(ev model.Event) model.Event {
	return model.Event{
		Kind:      model.KindKeymapNotify,
		Serial:    ev.Serial,
		SendEvent: ev.SendEvent,
		Window:    ev.Window,
		Synthetic: true,
	}
}
