package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	signInRateKeyPrefix = "authshell:rl:signin:"
	signInRateWindow    = time.Minute
	// visitorIdleTTL is how long an unused local bucket is kept.
	visitorIdleTTL = 10 * time.Minute
)

// SignInRateLimit caps sign-in submissions per email (or client IP when the
// body carries none). Redis holds the counters when cache is set; otherwise
// a per-process token bucket is used. The returned stop function ends the
// background eviction of idle local buckets and is safe to call more than once.
func SignInRateLimit(cache *redis.Client, maxPerMin int) (fiber.Handler, func() error) {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	if cache == nil {
		l := newLocalLimiter(maxPerMin, visitorIdleTTL)
		go l.cleanup()
		return l.handle, l.stop
	}
	return redisSignInRateLimit(cache, maxPerMin), func() error { return nil }
}

func redisSignInRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := signInRateKeyPrefix + rateSubject(c)
		cnt, err := countAttempt(c.UserContext(), cache, key)
		if err != nil {
			return c.Next() // fail open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return tooManyAttempts()
		}
		return c.Next()
	}
}

// countAttempt increments the window counter and arms its expiry in the
// same transaction. EXPIRE NX leaves a running window untouched and re-arms
// a counter whose expiry was lost.
func countAttempt(ctx context.Context, cache *redis.Client, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, signInRateWindow)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func newLocalLimiter(maxPerMin int, idle time.Duration) *localLimiter {
	return &localLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(signInRateWindow / time.Duration(maxPerMin)),
		burst:    maxPerMin,
		idle:     idle,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (l *localLimiter) handle(c *fiber.Ctx) error {
	if !l.get(rateSubject(c)).Allow() {
		return tooManyAttempts()
	}
	return c.Next()
}

func (l *localLimiter) get(subject string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[subject]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[subject] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

// evictIdle drops buckets not used within the idle period. The idle period
// must exceed the refill window.
func (l *localLimiter) evictIdle() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for subject, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, subject)
		}
	}
}

func (l *localLimiter) stop() error {
	l.stopOnce.Do(func() { close(l.done) })
	return nil
}

func rateSubject(c *fiber.Ctx) string {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&req)
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return email
	}
	return c.IP()
}

func tooManyAttempts() error {
	return fiber.NewError(http.StatusTooManyRequests, "too many sign-in attempts, try again later")
}
