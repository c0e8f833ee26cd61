package shield

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimitRule caps requests per client IP for paths under Prefix.
type RateLimitRule struct {
	Prefix        string
	MaxRequests   int
	WindowSeconds int
}

type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter enforces fixed per-IP, per-prefix rate limits in memory.
// Model-invoking endpoints are the intended target: they are slow and
// metered upstream, so a runaway client must be cut off before it
// burns the provider quota.
type RateLimiter struct {
	rules   []RateLimitRule
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter creates a limiter with a static rule set. Call
// StartGC to reap expired buckets in the background.
func NewRateLimiter(rules []RateLimitRule) *RateLimiter {
	return &RateLimiter{
		rules:   rules,
		buckets: make(map[string]*bucket),
	}
}

// StartGC reaps expired buckets every 5 minutes until done is closed.
func (rl *RateLimiter) StartGC(done <-chan struct{}) {
	tick := time.NewTicker(5 * time.Minute)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				rl.gc()
			}
		}
	}()
}

func (rl *RateLimiter) gc() {
	now := time.Now()
	rl.mu.Lock()
	for key, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, key)
		}
	}
	rl.mu.Unlock()
}

func (rl *RateLimiter) rule(path string) (RateLimitRule, bool) {
	for _, r := range rl.rules {
		if strings.HasPrefix(path, r.Prefix) {
			return r, true
		}
	}
	return RateLimitRule{}, false
}

func (rl *RateLimiter) allow(ip string, rule RateLimitRule) bool {
	key := ip + ":" + rule.Prefix
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.After(b.resetAt) {
		rl.buckets[key] = &bucket{
			count:   1,
			resetAt: now.Add(time.Duration(rule.WindowSeconds) * time.Second),
		}
		return true
	}
	b.count++
	return b.count <= rule.MaxRequests
}

// Middleware enforces the rule set, answering blocked requests with a
// 429 JSON envelope and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule, ok := rl.rule(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := ExtractIP(r)
		if rl.allow(ip, rule) {
			next.ServeHTTP(w, r)
			return
		}

		GetLogger(r.Context()).Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", "60")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
	})
}

// ExtractIP returns the client IP from X-Forwarded-For or RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
