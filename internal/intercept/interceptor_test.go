package intercept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/mj1618/focusguard/internal/focus"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
)

type fakeBackend struct {
	events   []model.Event
	fetched  int
	tree     map[model.WindowID]model.Window
	focused  []model.WindowID
	focusErr error
	closed   int
}

func (b *fakeBackend) NextEvent(context.Context) (model.Event, error) {
	if b.fetched >= len(b.events) {
		return model.Event{}, errors.New("connection closed")
	}
	ev := b.events[b.fetched]
	b.fetched++
	return ev, nil
}

func (b *fakeBackend) QueryTree(_ context.Context, w model.WindowID) (model.Window, error) {
	win, ok := b.tree[w]
	if !ok {
		return model.Window{}, fmt.Errorf("BadWindow %s", w)
	}
	return win, nil
}

func (b *fakeBackend) SetInputFocus(_ context.Context, w model.WindowID) error {
	b.focused = append(b.focused, w)
	return b.focusErr
}

func (b *fakeBackend) Close() error {
	b.closed++
	return nil
}

func staticResolver(b platform.Backend) (Resolver, *int) {
	calls := 0
	return ResolverFunc(func(context.Context) (platform.Backend, error) {
		calls++
		return b, nil
	}), &calls
}

func TestInterceptor_ResolutionFailureIsFatalForTheCall(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{events: []model.Event{{Kind: model.KindOther, Window: 1}}}
	fail := true
	resolver := ResolverFunc(func(context.Context) (platform.Backend, error) {
		if fail {
			return nil, errors.New("dlopen: no such file")
		}
		return backend, nil
	})
	i := New(resolver, nil, focus.DefaultOptions())

	ev, err := i.NextEvent(ctx)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if ev != (model.Event{}) {
		t.Errorf("no event may be delivered on failure, got %+v", ev)
	}
	if backend.fetched != 0 {
		t.Error("nothing may be fetched before resolution succeeds")
	}

	fail = false
	if _, err := i.NextEvent(ctx); err != nil {
		t.Fatalf("retry after failure should succeed: %v", err)
	}
}

func TestInterceptor_NilResolver(t *testing.T) {
	i := New(nil, nil, focus.DefaultOptions())
	if _, err := i.NextEvent(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Errorf("expected ErrUnresolved, got %v", err)
	}
}

func TestInterceptor_OneEventPerCall(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{events: []model.Event{
		{Kind: model.KindOther, Window: 1, Serial: 1},
		{Kind: model.KindOther, Window: 2, Serial: 2},
		{Kind: model.KindOther, Window: 3, Serial: 3},
	}}
	resolver, calls := staticResolver(backend)
	i := New(resolver, nil, focus.DefaultOptions())

	for n := 1; n <= 3; n++ {
		ev, err := i.NextEvent(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ev.Serial != uint64(n) {
			t.Errorf("call %d returned serial %d", n, ev.Serial)
		}
		if backend.fetched != n {
			t.Errorf("after call %d fetched %d events", n, backend.fetched)
		}
	}
	if *calls != 1 {
		t.Errorf("resolver called %d times, want once", *calls)
	}
}

func TestInterceptor_FetchErrorPropagates(t *testing.T) {
	resolver, _ := staticResolver(&fakeBackend{})
	i := New(resolver, nil, focus.DefaultOptions())
	_, err := i.NextEvent(context.Background())
	if err == nil || errors.Is(err, ErrUnresolved) {
		t.Errorf("expected a fetch error, got %v", err)
	}
}

func TestInterceptor_SuppressesAndStealsBack(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		tree: map[model.WindowID]model.Window{100: {ID: 100, Parent: 50}},
		events: []model.Event{
			{Kind: model.KindFocusIn, Window: 100, Detail: model.DetailNonlinear},
			{Kind: model.KindFocusOut, Window: 100, Detail: model.DetailNonlinear, Serial: 11},
			{Kind: model.KindReparentNotify, Window: 205, Parent: 60},
			{Kind: model.KindFocusIn, Window: 206, Detail: model.DetailNonlinear},
		},
	}
	resolver, _ := staticResolver(backend)
	i := New(resolver, nil, focus.DefaultOptions())

	if ev, _ := i.NextEvent(ctx); ev.Kind != model.KindFocusIn {
		t.Fatalf("first FocusIn must pass, got %s", ev)
	}
	ev, _ := i.NextEvent(ctx)
	if ev.Kind != model.KindKeymapNotify || ev.Serial != 11 {
		t.Errorf("FocusOut of the active window should become a placeholder, got %s", ev)
	}
	i.NextEvent(ctx)
	d, err := i.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.Suppressed() || d.StealBack != 100 {
		t.Errorf("decision = %+v", d)
	}
	if len(backend.focused) != 1 || backend.focused[0] != 100 {
		t.Errorf("focus set to %v, want [100]", backend.focused)
	}
	if snap := i.Snapshot(); snap.Active != 100 || snap.Phase != focus.PhaseActive {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestInterceptor_StealBackFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		focusErr: errors.New("BadMatch"),
		events: []model.Event{
			{Kind: model.KindFocusIn, Window: 100},
			{Kind: model.KindReparentNotify, Window: 205},
			{Kind: model.KindFocusIn, Window: 207},
		},
	}
	resolver, _ := staticResolver(backend)
	i := New(resolver, nil, focus.DefaultOptions())
	for n := 0; n < 3; n++ {
		if _, err := i.NextEvent(ctx); err != nil {
			t.Fatalf("call %d: %v", n, err)
		}
	}
	if len(backend.focused) != 1 {
		t.Errorf("steal-back attempts = %v", backend.focused)
	}
}

func TestInterceptor_SwitchSignal(t *testing.T) {
	ctx := context.Background()
	q := signal.NewQueue(1)
	backend := &fakeBackend{events: []model.Event{
		{Kind: model.KindFocusIn, Window: 100},
		{Kind: model.KindFocusOut, Window: 100, Detail: model.DetailNonlinear},
	}}
	resolver, _ := staticResolver(backend)
	i := New(resolver, q, focus.DefaultOptions())

	i.NextEvent(ctx)
	if err := q.Send(ctx, signal.Parse("close:popup", "")); err != nil {
		t.Fatal(err)
	}
	ev, _ := i.NextEvent(ctx)
	if ev.Kind != model.KindFocusOut {
		t.Errorf("events pass during a switch, got %s", ev)
	}
	snap := i.Snapshot()
	if snap.Phase != focus.PhaseSwitching || !snap.Closing {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestInterceptor_Close(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{{Kind: model.KindOther}}}
	resolver, _ := staticResolver(backend)
	i := New(resolver, nil, focus.DefaultOptions())

	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
	if backend.closed != 0 {
		t.Error("nothing to close before resolution")
	}
	i.NextEvent(context.Background())
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
	if backend.closed != 1 {
		t.Errorf("backend closed %d times", backend.closed)
	}
}

func TestInterceptor_ReResolvedBackendGetsFreshArbitration(t *testing.T) {
	ctx := context.Background()
	first := &fakeBackend{
		tree:   map[model.WindowID]model.Window{100: {ID: 100, Parent: 50}},
		events: []model.Event{{Kind: model.KindFocusIn, Window: 100, Detail: model.DetailNonlinear}},
	}
	second := &fakeBackend{
		tree: map[model.WindowID]model.Window{
			100:   {ID: 100, Parent: 50, Children: []model.WindowID{0x500}},
			0x500: {ID: 0x500, Parent: 100},
		},
		events: []model.Event{
			{Kind: model.KindFocusIn, Window: 100, Detail: model.DetailNonlinear},
			{Kind: model.KindFocusOut, Window: 0x500, Detail: model.DetailNonlinear},
		},
	}
	backends := []*fakeBackend{first, second}
	resolver := ResolverFunc(func(context.Context) (platform.Backend, error) {
		b := backends[0]
		backends = backends[1:]
		return b, nil
	})
	i := New(resolver, nil, focus.DefaultOptions())

	if _, err := i.NextEvent(ctx); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := i.NextEvent(ctx); err != nil {
		t.Fatal(err)
	}
	d, err := i.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Suppressed() {
		t.Errorf("FocusOut on a child of the active window in the new tree should be suppressed, got %+v", d)
	}
	if first.closed != 1 || second.fetched != 2 {
		t.Errorf("first closed %d times, second fetched %d events", first.closed, second.fetched)
	}
}

func TestProviderResolver(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{{Kind: model.KindOther, Serial: 3}}}
	closed := 0
	orig := platform.NewProviderFunc
	platform.NewProviderFunc = func(context.Context, platform.ProviderOptions) (*platform.Provider, error) {
		return &platform.Provider{
			Events:  backend,
			Tree:    backend,
			Focus:   backend,
			Closers: []io.Closer{closerFunc(func() error { closed++; return nil })},
		}, nil
	}
	t.Cleanup(func() { platform.NewProviderFunc = orig })
	policy := platform.LibraryPolicy{Emulated32Bit: func() bool { return false }}

	setupErr := errors.New("cannot watch window")
	failing := ProviderResolver(policy, platform.ProviderOptions{}, func(context.Context, *platform.Provider) error {
		return setupErr
	})
	i := New(failing, nil, focus.DefaultOptions())
	if _, err := i.NextEvent(context.Background()); !errors.Is(err, ErrUnresolved) || !errors.Is(err, setupErr) {
		t.Fatalf("expected wrapped setup error, got %v", err)
	}
	if closed != 1 {
		t.Errorf("provider closed %d times after failed setup", closed)
	}

	var seen *platform.Provider
	ok := ProviderResolver(policy, platform.ProviderOptions{}, func(_ context.Context, p *platform.Provider) error {
		seen = p
		return nil
	})
	i = New(ok, nil, focus.DefaultOptions())
	ev, err := i.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ev.Serial != 3 || seen == nil {
		t.Errorf("event %+v, setup saw %v", ev, seen)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
	if closed != 2 {
		t.Errorf("Close should release the provider, closed = %d", closed)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
