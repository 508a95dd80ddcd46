package focus

import (
	"context"
	"fmt"

	"github.com/mj1618/focusguard/internal/model"
)

// fakeTree answers QueryTree from a fixed map; unknown windows behave like
// destroyed ones.
type fakeTree struct {
	windows map[model.WindowID]model.Window
	queries []model.WindowID
}

func newFakeTree(windows ...model.Window) *fakeTree {
	t := &fakeTree{windows: make(map[model.WindowID]model.Window)}
	for _, w := range windows {
		t.windows[w.ID] = w
	}
	return t
}

func (t *fakeTree) QueryTree(_ context.Context, w model.WindowID) (model.Window, error) {
	t.queries = append(t.queries, w)
	win, ok := t.windows[w]
	if !ok {
		return model.Window{}, fmt.Errorf("BadWindow: %s", w)
	}
	return win, nil
}

func focusIn(w model.WindowID, detail model.FocusDetail) model.Event {
	return model.Event{Kind: model.KindFocusIn, Window: w, Detail: detail}
}

func focusOut(w model.WindowID, detail model.FocusDetail) model.Event {
	return model.Event{Kind: model.KindFocusOut, Window: w, Detail: detail}
}

func reparent(w, parent model.WindowID) model.Event {
	return model.Event{Kind: model.KindReparentNotify, Window: w, Parent: parent}
}

func destroy(w model.WindowID) model.Event {
	return model.Event{Kind: model.KindDestroyNotify, Window: w}
}
