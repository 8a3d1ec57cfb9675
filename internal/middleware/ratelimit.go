package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig controls the per-client token bucket.
type RateLimiterConfig struct {
	Rate            rate.Limit    // sustained requests per second
	Burst           int           // bucket size: how many requests may arrive at once
	CleanupInterval time.Duration // how often idle client entries are dropped
}

// DefaultRateLimiterConfig allows 10 attempts per minute with a burst of 5 —
// generous for a human retyping a password, hopeless for a credential stuffer.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           5,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter pairs a token bucket with its last use, so idle entries can
// be evicted.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles requests per client IP. It protects the credential
// endpoints (login, register), where each request costs a bcrypt comparison
// and unthrottled guessing would be an offline attack run online.
//
// Keyed by IP rather than user because the clients being throttled are
// exactly the ones that are NOT logged in yet.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	logger *slog.Logger
	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts the background cleanup
// goroutine. Call Stop on shutdown.
func NewRateLimiter(config RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Limit is the middleware. GET requests pass through untouched — only the
// POSTed credential attempts count against the bucket, so a user refreshing
// the login page never gets throttled.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.allow(ip) {
			rl.logger.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			// Retry-After: seconds until one token is refilled.
			retryAfter := int(math.Ceil(1.0 / float64(rl.config.Rate)))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "Too many attempts. Please wait a moment and try again.",
				http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow takes one token from the client's bucket, creating it on first use.
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst),
		}
		rl.limiters[ip] = cl
	}
	cl.lastAccess = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// cleanupLoop periodically drops entries for clients that went quiet, so
// the map doesn't grow forever.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware runs
// earlier in the chain and has already rewritten RemoteAddr from
// X-Forwarded-For when the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
