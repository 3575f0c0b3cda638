package market

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between outbound requests. It is owned by
// the API client that shares the upstream quota; there is no process-wide
// state. Concurrent callers serialize at Acquire: each caller reserves the
// next free slot and sleeps until it opens.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewPacer creates a pacer with the given minimum inter-request interval
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Acquire blocks until the spacing from the previous request is satisfied or
// the context is done.
func (p *Pacer) Acquire(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
