package chi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter defaults.
const (
	DefaultRateLimitIdleTTL = 10 * time.Minute
	sweepEvery              = time.Minute
)

// RateLimitConfig configures the per-client limiter. A non-positive RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration
	// KeyByToken buckets clients by bearer token. Only safe when bearer auth rejects unknown tokens;
	// NewRouter sets it from RouterConfig.APIKeys.
	KeyByToken bool
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client. Clients are identified by bearer token
// when KeyByToken is set and a token is present, otherwise by remote IP.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	keyByToken bool
	lastSweep  time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter, or returns nil when limiting is disabled.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultRateLimitIdleTTL
	}
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		limit:      rate.Limit(cfg.RequestsPerSecond),
		burst:      burst,
		idleTTL:    ttl,
		keyByToken: cfg.KeyByToken,
		now:        time.Now,
	}
}

// Middleware rejects requests over the client's budget with 429. A nil limiter passes everything through.
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !l.allow(l.clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepEvery {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *RateLimiter) retryAfterSeconds() int {
	secs := int(1 / float64(l.limit))
	return max(1, secs)
}

func (l *RateLimiter) clientKey(r *http.Request) string {
	if l.keyByToken {
		if token, ok := bearerToken(r); ok {
			return "key:" + token
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
