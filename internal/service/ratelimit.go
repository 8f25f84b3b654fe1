package service

import (
	"sync"
	"time"
)

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTimeout   = 10 * time.Minute
)

// TokenBucket is an in-memory per-key rate limiter. Keys are client IPs for
// the auth endpoints and user IDs for feed writes. It is safe for concurrent use.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	stop     chan struct{}
	once     sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a rate limiter that allows up to capacity tokens per key,
// refilling at the given rate (tokens per second). Idle buckets are swept in the
// background until Close is called.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		stop:     make(chan struct{}),
	}
	go tb.sweepLoop()
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*tb.rate, tb.capacity)
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Close stops the background sweeper. It is safe to call more than once.
func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.stop) })
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

func (tb *TokenBucket) sweepLoop() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-tb.stop:
			return
		case now := <-ticker.C:
			tb.sweep(now.Add(-bucketIdleTimeout))
		}
	}
}

func (tb *TokenBucket) sweep(cutoff time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
