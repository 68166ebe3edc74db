package http

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/vehicle-pricing/internal/config"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

type visitor struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limit    rate.Limit
	burst    int
	idle     time.Duration
	mu       sync.Mutex
	visitors map[string]*visitor
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter builds a limiter and starts evicting idle visitors.
// A non-positive rate disables limiting.
func NewIPRateLimiter(cfg config.RateLimitConfig) *IPRateLimiter {
	rl := &IPRateLimiter{
		limit:    rate.Limit(float64(cfg.ValidatePerMinute) / 60.0),
		burst:    cfg.ValidateBurst,
		idle:     10 * time.Minute,
		visitors: make(map[string]*visitor),
		stopCh:   make(chan struct{}),
	}
	if rl.burst <= 0 {
		rl.burst = 1
	}
	if cfg.ValidatePerMinute > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Handle rejects the request with 429 once the caller's bucket is empty.
func (rl *IPRateLimiter) Handle(c *fiber.Ctx) error {
	if rl == nil || rl.limit <= 0 {
		return c.Next()
	}
	if !rl.get(c.IP()).Allow() {
		retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return apperrors.NewRateLimited(retryAfter)
	}
	return c.Next()
}

func (rl *IPRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastAccess = time.Now()
	return v.limiter
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *IPRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastAccess) > rl.idle {
			delete(rl.visitors, ip)
		}
	}
}
