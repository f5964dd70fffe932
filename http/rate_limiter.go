package http

import (
	"sync"
	"time"
)

const (
	bucketIdleTimeout = 1 * time.Hour
	sweepInterval     = 30 * time.Minute
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a per-client fixed-window token bucket. A bucket refills to
// capacity once refillEvery has elapsed since its last refill.
type RateLimiter struct {
	mu          sync.Mutex
	capacity    int
	refillEvery time.Duration
	buckets     map[string]*bucket
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter returns nil when capacity is not positive, which disables limiting.
func NewRateLimiter(capacity int, refillEvery time.Duration) *RateLimiter {
	if capacity <= 0 {
		return nil
	}
	rl := &RateLimiter{
		capacity:    capacity,
		refillEvery: refillEvery,
		buckets:     make(map[string]*bucket),
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for client, b := range r.buckets {
		if now.Sub(b.lastRefill) > bucketIdleTimeout {
			delete(r.buckets, client)
		}
	}
}

func (r *RateLimiter) Stop() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[client]
	if !ok {
		r.buckets[client] = &bucket{tokens: r.capacity - 1, lastRefill: now}
		return true
	}

	if now.Sub(b.lastRefill) >= r.refillEvery {
		b.tokens = r.capacity
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
