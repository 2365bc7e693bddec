package api

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/render"
)

// RateLimiter limits requests per client IP with a token bucket that refills
// to Limit tokens over Window.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	message string
	buckets map[string]*tokenBucket
	swept   time.Time
	now     func() time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

func NewRateLimiter(limit int, window time.Duration, message string) *RateLimiter {
	if message == "" {
		message = "Too many requests from this IP, please try again later."
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		message: message,
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

// sweep drops buckets idle for a full window. They have refilled completely,
// so a fresh bucket is equivalent. Runs at most once per window.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.swept) < rl.window {
		return
	}
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.lastRefill) >= rl.window {
			delete(rl.buckets, key)
		}
	}
	rl.swept = now
}

// allow consumes a token for key and reports the remaining tokens, or the
// wait until the next token when the bucket is empty.
func (rl *RateLimiter) allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	bucket, exists := rl.buckets[key]
	if !exists {
		bucket = &tokenBucket{tokens: float64(rl.limit), lastRefill: now}
		rl.buckets[key] = bucket
	}

	rate := float64(rl.limit) / rl.window.Seconds()
	bucket.tokens = math.Min(float64(rl.limit), bucket.tokens+now.Sub(bucket.lastRefill).Seconds()*rate)
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		wait := time.Duration((1 - bucket.tokens) / rate * float64(time.Second))
		return false, 0, wait
	}
	bucket.tokens--
	return true, int(bucket.tokens), 0
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil || rl.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, wait := rl.allow(clientIP(r))

		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, ErrorResponse{
				Error:   rl.message,
				Details: fmt.Sprintf("limit is %d requests per %s", rl.limit, rl.window),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr; chi's RealIP middleware has
// already applied any forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestSizeLimitMiddleware limits the size of request bodies
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
