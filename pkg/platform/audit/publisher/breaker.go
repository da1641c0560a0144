package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"
)

// breaker stops calling an unhealthy store. After threshold consecutive
// failures it stays open for cooldown, then lets one append through.
type breaker struct {
	mu sync.Mutex

	threshold int           // failures to trigger open
	cooldown  time.Duration // how long to stay open
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isOpen {
		return true
	}
	if b.now().After(b.openUntil) {
		b.isOpen = false
		b.failures = 0
		return true
	}
	return false
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.isOpen = false
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.isOpen = true
		b.openUntil = b.now().Add(b.cooldown)
	}
}

func (b *breaker) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isOpen
}

// guardedStore routes appends through a breaker.
type guardedStore struct {
	store   audit.Store
	breaker *breaker
}

func (g guardedStore) Append(ctx context.Context, event audit.Event) error {
	if !g.breaker.allow() {
		return fmt.Errorf("audit store circuit open: %w", sentinel.ErrUnavailable)
	}
	if err := g.store.Append(ctx, event); err != nil {
		g.breaker.recordFailure()
		return err
	}
	g.breaker.recordSuccess()
	return nil
}
