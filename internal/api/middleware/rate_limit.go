package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"menu-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器：window 內最多 requests 個請求
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 添加新令牌（保留小數部分）
	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// IPRateLimiter 每個用戶端 IP 一個令牌桶；閒置超過 window 的桶已經補滿，清掉不影響限流結果
type IPRateLimiter struct {
	mu        sync.Mutex
	requests  int
	window    time.Duration
	limiters  map[string]*RateLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter 創建依 IP 分桶的限流器
func NewIPRateLimiter(requests int, window time.Duration) *IPRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		requests:  requests,
		window:    window,
		limiters:  make(map[string]*RateLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// limiter 取得 ip 的令牌桶，順便清掉閒置的桶
func (l *IPRateLimiter) limiter(ip string) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}

	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		rl.now = l.now
		rl.lastTime = now
		l.limiters[ip] = rl
	}
	return rl
}

// sweep 呼叫端需持有 l.mu
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, rl := range l.limiters {
		rl.mu.Lock()
		idle := now.Sub(rl.lastTime)
		rl.mu.Unlock()
		if idle >= l.window {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Handler 限流中間件
func (l *IPRateLimiter) Handler() gin.HandlerFunc {
	retryAfter := fmt.Sprintf("%d", int(math.Ceil(l.window.Seconds())))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.limiter(ip).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrTooManyRequests.Code,
				Message: "Too many requests",
			})
			return
		}

		c.Next()
	}
}

// RateLimit 限流中間件，每個用戶端 IP 一個令牌桶
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewIPRateLimiter(requests, window).Handler()
}
