// internal/middleware/ratelimit.go
package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
)

const (
	GlobalMessage     = "Too many requests from this IP, please try again later."
	FormMessage       = "Too many submissions from this IP, please try again later."
	NewsletterMessage = "Too many subscription attempts, please try again tomorrow."
)

// WindowCounter keeps fixed-window hit counts shared between processes.
// cache.Client implements it on Redis.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type window struct {
	start time.Time
	count int
}

// RateLimiter allows Max requests per fixed Window for each client IP and
// bucket. The window starts at a client's first request and the count
// resets once it ends.
type RateLimiter struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
	Metrics *metrics.Metrics
	// Store, when set, holds the counts so every API process shares them.
	// The in-memory count is used if the store fails.
	Store WindowCounter

	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewRateLimiter(name string, max int, windowLen time.Duration, message string, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		Name:    name,
		Max:     max,
		Window:  windowLen,
		Message: message,
		Metrics: m,
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// GlobalLimiter caps every route at 100 requests per 15 minutes.
func GlobalLimiter(m *metrics.Metrics) *RateLimiter {
	return NewRateLimiter("global", 100, 15*time.Minute, GlobalMessage, m)
}

// FormLimiter allows 10 submissions per hour for each form bucket.
func FormLimiter(m *metrics.Metrics) *RateLimiter {
	return NewRateLimiter("forms", 10, time.Hour, FormMessage, m)
}

func NewsletterLimiter(m *metrics.Metrics) *RateLimiter {
	return NewRateLimiter("newsletter", 5, 24*time.Hour, NewsletterMessage, m)
}

// Allow counts a request for key and reports whether it may proceed, how
// many requests are left and when the window resets.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Duration) {
	if rl.Store != nil {
		n, reset, err := rl.Store.IncrWindow(ctx, "ratelimit:"+rl.Name+":"+key, rl.Window)
		if err == nil {
			return rl.verdict(n, reset)
		}
	}
	return rl.local(key)
}

func (rl *RateLimiter) local(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.start.Add(rl.Window)) {
		w = &window{start: now}
		rl.windows[key] = w
	}
	if w.count <= rl.Max {
		w.count++
	}
	return rl.verdict(int64(w.count), w.start.Add(rl.Window).Sub(now))
}

func (rl *RateLimiter) verdict(count int64, reset time.Duration) (bool, int, time.Duration) {
	remaining := int64(rl.Max) - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(rl.Max), int(remaining), reset
}

// Cleanup drops windows that have ended. Returns how many it removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	now := rl.now()
	for key, w := range rl.windows {
		if !now.Before(w.start.Add(rl.Window)) {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until Stop.
func (rl *RateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-rl.stop:
				return
			}
		}
	}()
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Handler limits all requests passing through it under one bucket.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return rl.Bucket("")(next)
}

// Bucket limits requests under a named bucket, so each form counts separately.
func (rl *RateLimiter) Bucket(bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, reset := rl.Allow(r.Context(), bucket+"|"+clientIP(r))

			w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.Max))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("RateLimit-Reset", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			if !ok {
				if rl.Metrics != nil {
					rl.Metrics.RateLimited.WithLabelValues(rl.Name).Inc()
				}
				writeError(w, http.StatusTooManyRequests, rl.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have run; it only strips the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
