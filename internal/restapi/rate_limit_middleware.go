package restapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/models"
)

const (
	anonymousRateLimitKey = "__no_key__"
	limiterIdleTimeout    = 10 * time.Minute
	limiterCleanupEvery   = 5 * time.Minute
)

// keyLimiter is one API key's token bucket and when it was last used.
type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimitMiddleware limits requests per API key. Idle keys are evicted
// by a background loop that runs until Stop.
type RateLimitMiddleware struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter

	limit      rate.Limit
	burst      int
	exemptKeys map[string]struct{}
	clock      clock.Clock

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval
// for each key, with bursts of the same size. A non-positive count disables
// limiting.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, exemptKeys []string, c clock.Clock) *RateLimitMiddleware {
	if c == nil {
		c = clock.RealClock{}
	}

	limit := rate.Inf
	burst := 0
	if requestsPerInterval > 0 {
		limit = rate.Every(interval / time.Duration(requestsPerInterval))
		burst = requestsPerInterval
	}

	exempt := make(map[string]struct{}, len(exemptKeys))
	for _, key := range exemptKeys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			exempt[trimmed] = struct{}{}
		}
	}

	rl := &RateLimitMiddleware{
		limiters:   make(map[string]*keyLimiter),
		limit:      limit,
		burst:      burst,
		exemptKeys: exempt,
		clock:      c,
		ticker:     time.NewTicker(limiterCleanupEvery),
		stopChan:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Handler returns the middleware.
func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return rl.rateLimitHandler
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			key = anonymousRateLimitKey
		}

		if _, exempt := rl.exemptKeys[key]; exempt || rl.limit == rate.Inf {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.limiterFor(key).AllowN(rl.clock.Now(), 1) {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterFor returns the key's limiter, creating it on first use.
func (rl *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	entry, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if entry, ok = rl.limiters[key]; !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen.Store(now)
	return entry.limiter
}

func (rl *RateLimitMiddleware) retryAfterSeconds() int {
	if rl.limit <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(rl.limit))))
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	response := models.NewResponse(http.StatusTooManyRequests, models.EntryData{
		References: models.NewEmptyReferences(),
	}, "Rate limit exceeded. Please try again later.", rl.clock)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode rate limit response", "error", err)
	}
}

// cleanupOnce evicts limiters idle for longer than limiterIdleTimeout.
func (rl *RateLimitMiddleware) cleanupOnce() {
	cutoff := rl.clock.Now().Add(-limiterIdleTimeout).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if entry.lastSeen.Load() < cutoff {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case <-rl.ticker.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimitMiddleware) trackedKeys() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.ticker.Stop()
	})
}
