// Package signal carries the out-of-band "window switch started" marker from
// the browser driver to focus arbitration. A signal is consumed by the first
// read that observes it.
package signal

import (
	"context"
	"strings"
)

const (
	DefaultCloseTag = "close:"
	DefaultMaxBytes = 256
)

// Signal announces an intentional window switch.
type Signal struct {
	Payload string `yaml:"payload,omitempty" json:"payload,omitempty"`
	// Close is set when the switch happens because a window is closing.
	Close bool `yaml:"close" json:"close"`
}

// Reader reports pending switch signals.
type Reader interface {
	// Read returns the pending signal and consumes it. ok is false when no
	// signal is pending.
	Read(ctx context.Context) (sig Signal, ok bool)
	// Discard drops any pending signal without reporting it.
	Discard(ctx context.Context)
}

// Parse turns a raw payload into a Signal. Payloads that do not start with
// closeTag, including malformed ones, are plain switches.
func Parse(payload, closeTag string) Signal {
	payload = strings.TrimRight(payload, "\x00")
	if closeTag == "" {
		closeTag = DefaultCloseTag
	}
	return Signal{
		Payload: payload,
		Close:   strings.HasPrefix(payload, closeTag),
	}
}

// Format is the inverse of Parse.
func Format(reason string, isClose bool, closeTag string) string {
	if !isClose {
		return reason
	}
	if closeTag == "" {
		closeTag = DefaultCloseTag
	}
	return closeTag + reason
}

// Multi reads from several readers; the first one holding a signal wins.
type Multi []Reader

var _ Reader = Multi(nil)

func (m Multi) Read(ctx context.Context) (Signal, bool) {
	for _, r := range m {
		if sig, ok := r.Read(ctx); ok {
			return sig, true
		}
	}
	return Signal{}, false
}

func (m Multi) Discard(ctx context.Context) {
	for _, r := range m {
		r.Discard(ctx)
	}
}

// Nop never reports a signal.
type Nop struct{}

func (Nop) Read(context.Context) (Signal, bool) { return Signal{}, false }
func (Nop) Discard(context.Context)             {}
