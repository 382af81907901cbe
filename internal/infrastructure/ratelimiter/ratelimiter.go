package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
	Close() error
}

type bucket struct {
	tokens   float64
	lastFill time.Time
	touched  time.Time
}

// RateLimiter is a per-source token bucket. Buckets idle longer than the
// TTL are swept away.
type RateLimiter struct {
	ratePerSecond   float64
	maxBurst        int
	ttl             time.Duration
	sourceHeaderKey string

	mu      sync.Mutex
	buckets map[string]*bucket

	stopSweep chan struct{}
	sweepOnce sync.Once
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.CacheTTL == 0 {
		options.CacheTTL = 5 * time.Minute
	}

	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}

	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	rl := &RateLimiter{
		ratePerSecond:   float64(options.MaxRatePerSecond),
		maxBurst:        options.MaxBurst,
		ttl:             options.CacheTTL,
		sourceHeaderKey: options.SourceHeaderKey,
		buckets:         make(map[string]*bucket),
		stopSweep:       make(chan struct{}),
	}

	go rl.sweep()

	return rl
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.refill(sourceKey)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return int(math.Floor(rl.refill(sourceKey).tokens))
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to IP address
	return r.RemoteAddr
}

func (rl *RateLimiter) Close() error {
	rl.sweepOnce.Do(func() {
		close(rl.stopSweep)
	})
	return nil
}

// refill must be called with the lock held.
func (rl *RateLimiter) refill(sourceKey string) *bucket {
	now := time.Now()

	b, ok := rl.buckets[sourceKey]
	if !ok {
		b = &bucket{tokens: float64(rl.maxBurst), lastFill: now}
		rl.buckets[sourceKey] = b
	} else {
		elapsed := now.Sub(b.lastFill).Seconds()
		if elapsed > 0 {
			b.tokens = math.Min(b.tokens+elapsed*rl.ratePerSecond, float64(rl.maxBurst))
			b.lastFill = now
		}
	}

	b.touched = now
	return b
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.ttl)
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.touched.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()

		case <-rl.stopSweep:
			return
		}
	}
}
