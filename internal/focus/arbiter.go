// Package focus decides, event by event, whether a focus change reaching an
// embedded browser is genuine or a side effect of the window manager reacting
// to popups being built or torn down. Suppressed events are replaced by an
// inert placeholder; focus lost to a popup's child window is taken back.
package focus

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
)

// DefaultNewWindowChildDistance is how far a FocusIn window id may be from
// the pending new window and still be taken for one of its children.
const DefaultNewWindowChildDistance = 4

// Options tunes the id-distance heuristics.
type Options struct {
	RelatedFallbackDistance uint32
	NewWindowChildDistance  uint32
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{
		RelatedFallbackDistance: DefaultRelatedFallbackDistance,
		NewWindowChildDistance:  DefaultNewWindowChildDistance,
	}
}

// Arbiter runs focus arbitration for one client connection. It is not safe
// for concurrent use: one goroutine feeds it every event in order.
type Arbiter struct {
	state     State
	relations *RelationCache
	signals   signal.Reader
	opts      Options
}

// NewArbiter returns an arbiter with no active window.
func NewArbiter(tree platform.WindowTree, signals signal.Reader, opts Options) *Arbiter {
	if signals == nil {
		signals = signal.Nop{}
	}
	return &Arbiter{
		relations: NewRelationCache(tree, opts.RelatedFallbackDistance),
		signals:   signals,
		opts:      opts,
	}
}

// Snapshot returns a copy of the current state.
func (a *Arbiter) Snapshot() Snapshot {
	return a.state.Snapshot()
}

// Process arbitrates one real event. The returned decision always carries
// exactly one event to deliver, and possibly a window to steal focus back to.
func (a *Arbiter) Process(ctx context.Context, ev model.Event) model.Decision {
	if _, ok := a.state.Active(); !ok && ev.Kind == model.KindFocusIn {
		a.adopt(ctx, ev)
	} else if sig, ok := a.signals.Read(ctx); ok {
		a.beginSwitch(ctx, sig)
	}

	switch ev.Kind {
	case model.KindReparentNotify:
		a.noteNewWindow(ctx, ev)
	case model.KindDestroyNotify:
		a.noteDestroyed(ctx, ev)
	}

	decision := model.Decision{Original: ev, Event: ev, Verdict: model.VerdictPass}
	_, hasActive := a.state.Active()
	switch {
	case a.state.Phase() == PhaseSwitching || !hasActive:
		logger.Tracef(ctx, "no arbitration (phase %s closing %v): %s", a.state.Phase(), a.state.Closing, ev)
	case a.discardFocusOut(ctx, ev):
		logger.Debugf(ctx, "suppressing %s", ev)
		decision.Event, decision.Verdict = Placeholder(ev), model.VerdictSuppress
	case a.discardFocusIn(ctx, ev):
		logger.Debugf(ctx, "suppressing %s", ev)
		decision.Event, decision.Verdict = Placeholder(ev), model.VerdictSuppress
	}

	decision.StealBack = a.stealBackIfNeeded(ctx)
	decision.Phase = a.state.Phase().String()
	return decision
}

func (a *Arbiter) fire(ctx context.Context, t trigger, w model.WindowID) bool {
	if err := a.state.apply(t, w); err != nil {
		logger.Errorf(ctx, "%v", err)
		return false
	}
	return true
}

func (a *Arbiter) adopt(ctx context.Context, ev model.Event) {
	if !a.fire(ctx, triggerAdopt, ev.Window) {
		return
	}
	a.state.ActiveFromClose = a.state.Closing
	a.state.FocusInSeen = false
	// A marker left behind by the switch that led here is stale now.
	a.signals.Discard(ctx)
	logger.Debugf(ctx, "active window is %s (from close: %v)", ev.Window, a.state.ActiveFromClose)
}

func (a *Arbiter) beginSwitch(ctx context.Context, sig signal.Signal) {
	previous, _ := a.state.Active()
	if !a.fire(ctx, triggerSwitch, model.None) {
		return
	}
	a.state.Closing = sig.Close
	logger.Debugf(ctx, "window switch started, active was %s, payload %q, close %v", previous, sig.Payload, sig.Close)
}

func (a *Arbiter) noteNewWindow(ctx context.Context, ev model.Event) {
	if _, ok := a.state.Active(); !ok {
		logger.Tracef(ctx, "reparent of %s with no active window", ev.Window)
		return
	}
	if a.fire(ctx, triggerNewWindow, ev.Window) {
		logger.Debugf(ctx, "new window under construction: %s", ev.Window)
	}
}

func (a *Arbiter) noteDestroyed(ctx context.Context, ev model.Event) {
	if subject, ok := a.relations.Subject(); ok && subject == ev.Window {
		a.relations.Invalidate()
	}
	active, ok := a.state.Active()
	if !ok || ev.Window != active {
		return
	}
	if a.fire(ctx, triggerActiveDestroyed, model.None) {
		logger.Debugf(ctx, "active window %s destroyed", active)
	}
}

func (a *Arbiter) discardFocusOut(ctx context.Context, ev model.Event) bool {
	if ev.Kind != model.KindFocusOut {
		return false
	}
	active, _ := a.state.Active()
	if pending, ok := a.state.Pending(); ok {
		logger.Debugf(ctx, "%s during construction of %s (active %s), allowing", ev, pending, active)
		return false
	}
	if !a.relations.Related(ctx, active, ev.Window) {
		logger.Tracef(ctx, "%s unrelated to active %s", ev, active)
		return false
	}
	if ev.Detail.WithinWindow() {
		// Focus moves between windows of the active one.
		a.state.FocusInSeen = false
		return false
	}
	if a.state.ActiveFromClose {
		logger.Debugf(ctx, "%s, but the active window came from a close; allowing", ev)
		return false
	}
	return true
}

func (a *Arbiter) discardFocusIn(ctx context.Context, ev model.Event) bool {
	if ev.Kind != model.KindFocusIn {
		return false
	}
	active, _ := a.state.Active()
	pending, hasPending := a.state.Pending()
	if hasPending && ev.Window == pending {
		logger.Debugf(ctx, "%s on the new window, allowing", ev)
		return false
	}

	if !a.relations.Related(ctx, active, ev.Window) {
		if !hasPending {
			return true
		}
		if pending.Distance(ev.Window) > a.opts.NewWindowChildDistance {
			logger.Debugf(ctx, "%s is neither on active %s nor near new window %s", ev, active, pending)
			return true
		}
		logger.Debugf(ctx, "%s on a child of new window %s, will steal focus back", ev, pending)
		a.state.StealPending = true
		return false
	}

	if a.state.FocusInSeen {
		return true
	}
	a.state.FocusInSeen = true
	if hasPending && ev.Window == active {
		a.fire(ctx, triggerSettle, model.None)
	}
	return false
}

// stealBackIfNeeded returns the window focus must be given back to, or
// model.None.
func (a *Arbiter) stealBackIfNeeded(ctx context.Context) model.WindowID {
	if !a.state.StealPending {
		return model.None
	}
	active, ok := a.state.Active()
	if !ok {
		return model.None
	}
	if a.state.Closing && !a.state.ActiveFromClose {
		// The close is over at this point; focus stays where it went.
		logger.Debugf(ctx, "not stealing focus back to %s: unresolved close", active)
		a.state.Closing = false
		return model.None
	}

	a.state.StealPending = false
	a.state.FocusInSeen = false
	a.fire(ctx, triggerSettle, model.None)
	logger.Debugf(ctx, "stealing focus back to %s", active)
	return active
}
