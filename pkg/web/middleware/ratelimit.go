package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	PerIP             bool          `mapstructure:"per_ip"`
	SkipPaths         []string      `mapstructure:"skip_paths"`
	LimiterTTL        time.Duration `mapstructure:"limiter_ttl"` // 空闲多久后回收单个 IP 的限流器
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 令牌桶限流器，可按 IP 拆分
type RateLimiter struct {
	cfg    RateLimitConfig
	global *rate.Limiter
	logger logger.Logger

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	lastGC   time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.LimiterTTL <= 0 {
		cfg.LimiterTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:      cfg,
		global:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:   logger.OrNoop(l),
		limiters: make(map[string]*limiterEntry),
		lastGC:   time.Now(),
	}
}

// Allow 检查 key 是否允许请求，key 为空时使用全局限流器
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return rl.global.Allow()
	}
	return rl.limiterFor(key).Allow()
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastGC) > rl.cfg.LimiterTTL {
		for k, e := range rl.limiters {
			if now.Sub(e.lastSeen) > rl.cfg.LimiterTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastGC = now
	}

	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit 限流中间件，超限时返回 429
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(rl.cfg.SkipPaths))
	for _, p := range rl.cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		key := ""
		if rl.cfg.PerIP {
			key = "ip:" + c.ClientIP()
		}
		if !rl.Allow(key) {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", path)
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests"})
			return
		}
		c.Next()
	}
}
