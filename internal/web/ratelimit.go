package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	mw "github.com/JonMunkholm/erpdash/internal/web/middleware"
)

// rateLimiter gives each client IP a token bucket of perWindow requests
// that refills evenly over window.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perWindow int
	window    time.Duration
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter starts a limiter and its cleanup goroutine. Close stops it.
func newRateLimiter(perWindow int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors:  make(map[string]*visitor),
		perWindow: perWindow,
		window:    window,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune forgets clients idle for two windows; their buckets are full again anyway.
func (rl *rateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-2 * rl.window)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// Close stops the cleanup goroutine and waits for it to exit.
func (rl *rateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

// allow reports whether ip may make a request now, consuming a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		every := rl.window / time.Duration(max(rl.perWindow, 1))
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.perWindow)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// retryAfter is the Retry-After value in seconds: one token's refill time.
func (rl *rateLimiter) retryAfter() string {
	secs := int((rl.window/time.Duration(max(rl.perWindow, 1)) + time.Second - 1) / time.Second)
	return strconv.Itoa(max(secs, 1))
}

// middleware rejects clients over their limit with 429.
// RemoteAddr has already been rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(mw.ClientIP(r)) {
			w.Header().Set("Retry-After", rl.retryAfter())
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
