package middleware

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/config"
	"golang.org/x/time/rate"
)

// errThrottled is logged when a client exceeds its request rate.
var errThrottled = errors.New("client request rate exceeded")

// defaultIdleTTL is how long an unused client bucket is kept.
const defaultIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle is a per-client token bucket in front of the API. It protects the
// service from request floods; it is unrelated to the daily generation quota.
type Throttle struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

// NewThrottle creates a Throttle from configuration. A zero
// RequestsPerSecond yields a nil Throttle whose Limit is a pass-through.
func NewThrottle(cfg config.ThrottleConfig) *Throttle {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

// Limit rejects requests beyond the client's rate with 429 and a Retry-After header.
func (t *Throttle) Limit(next http.Handler) http.Handler {
	if t == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.allow(clientKey(r)) {
			w.Header().Set("Retry-After", t.retryAfter())
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Too many requests", errThrottled)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) allow(key string) bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastSweep) >= t.idleTTL {
		for k, b := range t.clients {
			if now.Sub(b.lastSeen) >= t.idleTTL {
				delete(t.clients, k)
			}
		}
		t.lastSweep = now
	}

	b, ok := t.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// trackedClients reports how many client buckets are held.
func (t *Throttle) trackedClients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

func (t *Throttle) retryAfter() string {
	secs := math.Ceil(1 / float64(t.limit))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(int(secs))
}

// clientKey identifies the caller by IP. RemoteAddr is expected to have been
// rewritten by chi's RealIP middleware when running behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
