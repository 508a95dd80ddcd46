package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/hashicorp/go-multierror"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	// Library is the windowing library path the provider was resolved for.
	Library string

	Events   EventSource
	Tree     WindowTree
	Focus    FocusSetter
	Watcher  Watcher
	Inputter Inputter
	Active   ActiveGetter

	Closers []io.Closer
}

// ProviderOptions selects what a provider connects to.
type ProviderOptions struct {
	// Display is the X display name; empty means $DISPLAY.
	Display string
	// Library is the resolved windowing library path, informational for
	// backends that speak the wire protocol directly.
	Library string
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("focusguard is not supported on %s/%s; supported: linux with an X11 display", runtime.GOOS, runtime.GOARCH)

// ErrNoBackend is returned when a provider lacks one of the pieces focus
// arbitration needs.
var ErrNoBackend = errors.New("provider does not implement event fetching, tree queries and focus setting")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/x11/init.go for the X11 registration.
var NewProviderFunc func(ctx context.Context, opts ProviderOptions) (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider(ctx context.Context, opts ProviderOptions) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(ctx, opts)
}

// Backend returns the provider's event source, tree and focus setter as one
// Backend.
func (p *Provider) Backend() (Backend, error) {
	if p == nil || p.Events == nil || p.Tree == nil || p.Focus == nil {
		return nil, ErrNoBackend
	}
	return &providerBackend{
		EventSource: p.Events,
		WindowTree:  p.Tree,
		FocusSetter: p.Focus,
		closer:      p,
	}, nil
}

// Close releases every resource the provider holds, in reverse order.
func (p *Provider) Close() error {
	var result *multierror.Error
	for i := len(p.Closers) - 1; i >= 0; i-- {
		if err := p.Closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	p.Closers = nil
	return result.ErrorOrNil()
}

type providerBackend struct {
	EventSource
	WindowTree
	FocusSetter
	closer io.Closer
}

func (b *providerBackend) Close() error {
	return b.closer.Close()
}
