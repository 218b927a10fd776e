package command

import (
	"context"
	"sync"
	"time"
)

// Bus is an unbounded multi-producer, single-consumer queue of envelopes.
// Send never blocks; the consumer takes everything queued at once.
type Bus struct {
	mu    sync.Mutex
	queue []Envelope
	ready chan struct{}
}

func NewBus() *Bus {
	return &Bus{ready: make(chan struct{}, 1)}
}

// Send enqueues e.
func (b *Bus) Send(e Envelope) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Sender returns a send function bound to one module.
func (b *Bus) Sender(origin string, background bool) func(Command) {
	return func(c Command) {
		b.Send(Envelope{Origin: origin, Background: background, Command: c})
	}
}

// TryDrain returns everything queued without waiting.
func (b *Bus) TryDrain() []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Drain waits up to wait for at least one envelope, then returns all of
// them in arrival order. It returns nil on timeout or cancellation.
func (b *Bus) Drain(ctx context.Context, wait time.Duration) []Envelope {
	if out := b.TryDrain(); len(out) > 0 {
		return out
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return b.TryDrain()
		case <-b.ready:
			if out := b.TryDrain(); len(out) > 0 {
				return out
			}
		}
	}
}

// Len reports the number of queued envelopes.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
