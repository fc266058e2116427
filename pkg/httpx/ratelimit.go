package httpx

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aakar745/form-registration/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for one profile.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows temporary bursts above the steady rate.
	Burst int
}

// LoginLimit bounds credential-stuffing on the login endpoint: 5 attempts
// per 15 minutes per source address. Override with RATELIMIT_LOGIN_REQUESTS,
// RATELIMIT_LOGIN_WINDOW_SEC and RATELIMIT_LOGIN_BURST.
func LoginLimit() RateLimitConfig {
	return ParseRateLimitFromEnv("LOGIN", RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            15 * time.Minute,
		Burst:             5,
	})
}

// ParseRateLimitFromEnv reads overrides for a rate limit profile from
// RATELIMIT_{prefix}_REQUESTS, RATELIMIT_{prefix}_WINDOW_SEC and
// RATELIMIT_{prefix}_BURST. Useful for loosening limits in tests.
func ParseRateLimitFromEnv(prefix string, defaults RateLimitConfig) RateLimitConfig {
	cfg := defaults

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.RequestsPerWindow = n
		}
	}
	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if sec, err := strconv.Atoi(val); err == nil && sec > 0 {
			cfg.Window = time.Duration(sec) * time.Second
		}
	}
	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Burst = n
		}
	}

	return cfg
}

// KeyExtractor derives the grouping key for rate limiting from a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and
// X-Real-IP for proxied deployments.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimiter manages per-key token buckets.
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)

	rl.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle limiters so ephemeral keys don't accumulate
// forever. A limiter with a full bucket has not been used recently.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware throttles requests grouped by keyExtractor.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	rl := &rateLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					fmt.Sprintf("Too many requests. Please try again in %ds.", retryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits requests by source address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}
