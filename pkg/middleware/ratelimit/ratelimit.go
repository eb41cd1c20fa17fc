package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
	"github.com/noah-isme/consultation-api/pkg/response"
)

const (
	defaultMaxClients = 10000
	idleTimeout       = 30 * time.Minute
)

// Limiter hands out one token bucket per client key.
// Idle buckets are pruned lazily when the table is full, so no background goroutine is needed.
type Limiter struct {
	rps        rate.Limit
	burst      int
	maxClients int
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a Limiter. A non-positive burst defaults to twice the rate, with a floor of one.
func New(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = int(rps * 2)
		if burst < 1 {
			burst = 1
		}
	}
	return &Limiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		maxClients: defaultMaxClients,
		now:        time.Now,
		clients:    make(map[string]*clientBucket),
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.pruneLocked(now)
		}
		bucket = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

func (l *Limiter) pruneLocked(now time.Time) {
	for key, bucket := range l.clients {
		if now.Sub(bucket.lastSeen) > idleTimeout {
			delete(l.clients, key)
		}
	}
}

// Middleware rejects requests over the per-IP budget with 429. A nil limiter disables limiting.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
