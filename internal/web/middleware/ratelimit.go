package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shindakun/campuslogin/internal/config"
)

// Throttle limits each client IP to RequestsPerWindow per WindowDuration
type Throttle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle creates a per-client limiter from configuration
func NewThrottle(cfg config.RateLimitConfig) *Throttle {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerWindow
	}
	return &Throttle{
		limit:    rate.Limit(float64(cfg.RequestsPerWindow) / cfg.WindowDuration.Seconds()),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// Handler rejects over-limit requests with 429 {"message":"Too Many Attempts."}
func (t *Throttle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := t.limiterFor(clientIP(r))

		res := lim.ReserveN(t.now(), 1)
		if delay := res.DelayFrom(t.now()); delay > 0 {
			res.CancelAt(t.now())
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Too Many Attempts."})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) limiterFor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cl, ok := t.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Sweep forgets clients idle for longer than idle
func (t *Throttle) Sweep(idle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	cutoff := t.now().Add(-idle)
	for ip, cl := range t.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(t.limiters, ip)
			removed++
		}
	}
	return removed
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
