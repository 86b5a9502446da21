// Package ratelimit implements per-key requests-per-minute rate limiting
// with a lazy-refill token bucket.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed           bool
	Limit             int64
	Remaining         int64
	RetryAfterSeconds float64
}

// Bucket is a token bucket with lazy refill (no background goroutine).
type Bucket struct {
	tokens   float64
	max      float64
	rate     float64 // tokens per second
	lastFill time.Time
}

func newBucket(limit int64) *Bucket {
	return &Bucket{
		tokens:   float64(limit),
		max:      float64(limit),
		rate:     float64(limit) / 60.0, // per-minute limit -> per-second rate
		lastFill: time.Now(),
	}
}

// refill adds tokens based on elapsed time since last refill.
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.max, b.tokens+elapsed*b.rate)
	b.lastFill = now
}

// tryConsume attempts to consume n tokens. Returns remaining and whether allowed.
func (b *Bucket) tryConsume(n float64, now time.Time) (remaining int64, allowed bool) {
	b.refill(now)
	if b.tokens >= n {
		b.tokens -= n
		return int64(b.tokens), true
	}
	return 0, false
}

// retryAfter returns seconds until n tokens are available.
func (b *Bucket) retryAfter(n float64) float64 {
	if b.tokens >= n {
		return 0
	}
	deficit := n - b.tokens
	return deficit / b.rate
}

// remaining returns current token count.
func (b *Bucket) remaining() int64 {
	return int64(b.tokens)
}

// Limiter holds a single RPM bucket for one key.
type Limiter struct {
	mu       sync.Mutex
	bucket   *Bucket // nil if unlimited
	limit    int64
	lastUsed time.Time
}

// newLimiter creates a Limiter with the given per-minute limit. A limit of
// 0 means unlimited.
func newLimiter(limit int64) *Limiter {
	l := &Limiter{limit: limit, lastUsed: time.Now()}
	if limit > 0 {
		l.bucket = newBucket(limit)
	}
	return l
}

// Allow consumes 1 token, admitting the request if one is available.
func (l *Limiter) Allow() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.lastUsed = now

	if l.bucket == nil {
		return Result{Allowed: true}
	}

	remaining, ok := l.bucket.tryConsume(1, now)
	if ok {
		return Result{Allowed: true, Limit: l.limit, Remaining: remaining}
	}
	return Result{
		Allowed:           false,
		Limit:             l.limit,
		Remaining:         0,
		RetryAfterSeconds: l.bucket.retryAfter(1),
	}
}

// Result returns current bucket state without consuming a token.
func (l *Limiter) Result() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bucket == nil {
		return Result{Allowed: true}
	}
	l.bucket.refill(time.Now())
	return Result{Allowed: true, Limit: l.limit, Remaining: l.bucket.remaining()}
}

// Registry manages per-key Limiters.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
}

// NewRegistry creates a new rate limiter registry.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*Limiter)}
}

// GetOrCreate returns the limiter for keyID, creating one if needed. If the
// key's limit has changed, a new limiter is created.
func (r *Registry) GetOrCreate(keyID string, limit int64) *Limiter {
	r.mu.RLock()
	l, ok := r.limiters[keyID]
	r.mu.RUnlock()
	if ok && l.limit == limit {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if l, ok := r.limiters[keyID]; ok && l.limit == limit {
		return l
	}
	l = newLimiter(limit)
	r.limiters[keyID] = l
	return l
}

// EvictStale removes limiters not used since cutoff.
func (r *Registry) EvictStale(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for k, l := range r.limiters {
		l.mu.Lock()
		stale := l.lastUsed.Before(cutoff)
		l.mu.Unlock()
		if stale {
			delete(r.limiters, k)
			evicted++
		}
	}
	return evicted
}
