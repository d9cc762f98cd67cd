package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config controls the per-client token buckets.
type Config struct {
	PerSecond float64
	Burst     int
	SkipPaths []string
}

// Limiter hands out one token bucket per client key (client id header when
// present, remote IP otherwise). Idle buckets are dropped after an hour.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	config   Config
	lastSeen map[string]time.Time
}

type bucket struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter with the given refill rate and burst.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		lastSeen: make(map[string]time.Time),
		config:   config,
	}
	go l.cleanup()
	return l
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.config.PerSecond), l.config.Burst)}
		l.buckets[key] = b
	}
	l.lastSeen[key] = time.Now()
	l.mu.Unlock()

	return b.limiter.Allow()
}

func (l *Limiter) cleanup() {
	for range time.Tick(10 * time.Minute) {
		l.mu.Lock()
		for key, seen := range l.lastSeen {
			if time.Since(seen) > time.Hour {
				delete(l.buckets, key)
				delete(l.lastSeen, key)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware wraps an http.Handler with per-client rate limiting.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	skip := make(map[string]bool, len(l.config.SkipPaths))
	for _, p := range l.config.SkipPaths {
		skip[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return "client:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
