package signal

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by TrySend when no slot is free.
var ErrQueueFull = errors.New("switch signal queue is full")

// Queue is an in-process command channel for switch signals. Send may be
// called from any goroutine; each queued signal is read exactly once.
type Queue struct {
	ch chan Signal
}

var _ Reader = (*Queue)(nil)

// NewQueue returns a queue holding up to capacity signals.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan Signal, capacity)}
}

// Send blocks until the signal is queued or ctx is done.
func (q *Queue) Send(ctx context.Context, sig Signal) error {
	select {
	case q.ch <- sig:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend queues the signal without blocking.
func (q *Queue) TrySend(sig Signal) error {
	select {
	case q.ch <- sig:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Read(context.Context) (Signal, bool) {
	select {
	case sig := <-q.ch:
		return sig, true
	default:
		return Signal{}, false
	}
}

func (q *Queue) Discard(context.Context) {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

// Len returns the number of queued signals.
func (q *Queue) Len() int {
	return len(q.ch)
}
