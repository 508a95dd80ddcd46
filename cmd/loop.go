package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/intercept"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
)

const signalQueueSize = 8

// focusLoop runs the interceptor for one watched window. The provider it
// resolves stays available to input commands while the loop runs.
type focusLoop struct {
	window      string
	queue       *signal.Queue
	interceptor *intercept.Interceptor

	providerLocker sync.Mutex
	provider       *platform.Provider
	watched        model.WindowID
}

func newFocusLoop(window string) *focusLoop {
	l := &focusLoop{
		window: window,
		queue:  signal.NewQueue(signalQueueSize),
	}
	resolver := intercept.ProviderResolver(
		cfg.LibraryPolicy(),
		platform.ProviderOptions{Display: cfg.Display},
		l.setup,
	)
	signals := signal.Multi{cfg.FileMarker(), l.queue}
	l.interceptor = intercept.New(resolver, signals, cfg.FocusOptions())
	return l
}

func (l *focusLoop) setup(ctx context.Context, provider *platform.Provider) error {
	w, err := resolveWindow(ctx, provider, l.window)
	if err != nil {
		return err
	}
	if provider.Watcher == nil {
		return fmt.Errorf("window watching not available on this platform")
	}
	if err := provider.Watcher.Watch(ctx, w); err != nil {
		return err
	}
	l.setProvider(provider, w)
	logger.Infof(ctx, "watching window %s", w)
	return nil
}

func (l *focusLoop) setProvider(provider *platform.Provider, w model.WindowID) {
	l.providerLocker.Lock()
	defer l.providerLocker.Unlock()
	l.provider = provider
	l.watched = w
}

// inputter returns the input collaborator and the watched window.
func (l *focusLoop) inputter() (platform.Inputter, model.WindowID, error) {
	l.providerLocker.Lock()
	defer l.providerLocker.Unlock()
	if l.provider == nil {
		return nil, model.None, fmt.Errorf("not connected to the display yet")
	}
	if l.provider.Inputter == nil {
		return nil, model.None, fmt.Errorf("input simulation not available on this platform")
	}
	return l.provider.Inputter, l.watched, nil
}

// run arbitrates events until ctx ends or fetching fails. emit sees every
// decision.
func (l *focusLoop) run(ctx context.Context, emit func(model.Decision) error) error {
	defer func() {
		if err := l.interceptor.Close(); err != nil {
			logger.Warnf(ctx, "unable to close the display connection: %v", err)
		}
		l.setProvider(nil, model.None)
	}()

	for {
		d, err := l.interceptor.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := emit(d); err != nil {
			return err
		}
	}
}
