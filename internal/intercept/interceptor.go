// Package intercept wraps a windowing system's event source so that every
// fetched event goes through focus arbitration before the caller sees it.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/focus"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
)

// ErrUnresolved is returned, wrapped, when the underlying event source cannot
// be resolved. No event is delivered by such a call.
var ErrUnresolved = errors.New("unable to resolve the underlying event source")

// Resolver produces the real backend the interceptor forwards to.
type Resolver interface {
	Resolve(ctx context.Context) (platform.Backend, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (platform.Backend, error)

func (f ResolverFunc) Resolve(ctx context.Context) (platform.Backend, error) {
	return f(ctx)
}

// ProviderResolver resolves through a library policy and the registered
// platform provider. setup, when not nil, runs on the fresh provider before
// its backend is handed out; its failure fails the resolution.
func ProviderResolver(
	policy platform.LibraryPolicy,
	opts platform.ProviderOptions,
	setup func(context.Context, *platform.Provider) error,
) Resolver {
	return ResolverFunc(func(ctx context.Context) (platform.Backend, error) {
		provider, err := policy.Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		backend, err := provider.Backend()
		if err == nil && setup != nil {
			err = setup(ctx, provider)
		}
		if err != nil {
			if closeErr := provider.Close(); closeErr != nil {
				logger.Warnf(ctx, "unable to release the provider: %v", closeErr)
			}
			return nil, err
		}
		return backend, nil
	})
}

// Interceptor has the same contract as the event source it wraps: each
// NextEvent call blocks for exactly one real event and returns exactly one
// event, the real one or a placeholder.
//
// The resolved backend is kept until Close releases it. A later NextEvent
// resolves a new backend and starts arbitration afresh. NextEvent must not
// be called concurrently.
type Interceptor struct {
	resolver Resolver
	signals  signal.Reader
	opts     focus.Options

	backend platform.Backend
	arbiter *focus.Arbiter

	snapshotLocker sync.Mutex
	snapshot       focus.Snapshot
}

var _ platform.EventSource = (*Interceptor)(nil)

// New returns an interceptor that resolves its backend on first use.
func New(resolver Resolver, signals signal.Reader, opts focus.Options) *Interceptor {
	return &Interceptor{
		resolver: resolver,
		signals:  signals,
		opts:     opts,
	}
}

// NextEvent fetches and arbitrates one event.
func (i *Interceptor) NextEvent(ctx context.Context) (model.Event, error) {
	d, err := i.Next(ctx)
	if err != nil {
		return model.Event{}, err
	}
	return d.Event, nil
}

// Next is NextEvent returning the whole decision.
func (i *Interceptor) Next(ctx context.Context) (model.Decision, error) {
	backend, err := i.resolve(ctx)
	if err != nil {
		return model.Decision{}, err
	}

	ev, err := backend.NextEvent(ctx)
	if err != nil {
		return model.Decision{}, fmt.Errorf("unable to fetch the next event: %w", err)
	}

	d := i.arbiter.Process(ctx, ev)
	if d.StealBack != model.None {
		if err := backend.SetInputFocus(ctx, d.StealBack); err != nil {
			logger.Errorf(ctx, "unable to give focus back to %s: %v", d.StealBack, err)
		}
	}
	i.publish(i.arbiter.Snapshot())
	return d, nil
}

func (i *Interceptor) resolve(ctx context.Context) (platform.Backend, error) {
	if i.backend != nil {
		return i.backend, nil
	}
	if i.resolver == nil {
		return nil, fmt.Errorf("%w: no resolver", ErrUnresolved)
	}
	backend, err := i.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: resolver returned no backend", ErrUnresolved)
	}
	// Arbitration state and its relationship cache belong to one backend.
	i.backend = backend
	i.arbiter = focus.NewArbiter(backend, i.signals, i.opts)
	logger.Debugf(ctx, "focus arbitration initialized")
	return backend, nil
}

func (i *Interceptor) publish(s focus.Snapshot) {
	i.snapshotLocker.Lock()
	defer i.snapshotLocker.Unlock()
	i.snapshot = s
}

// Snapshot returns the arbitration state after the last NextEvent call. It
// may be called from any goroutine.
func (i *Interceptor) Snapshot() focus.Snapshot {
	i.snapshotLocker.Lock()
	defer i.snapshotLocker.Unlock()
	return i.snapshot
}

// Close releases the resolved backend, if it holds resources.
func (i *Interceptor) Close() error {
	backend := i.backend
	i.backend = nil
	if c, ok := backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
