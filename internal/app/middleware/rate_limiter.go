package middleware

import (
	"strconv"
	"sync"
	"time"

	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// idle 桶是否已闲置超过 ttl
func (tb *TokenBucket) idle(now time.Time, ttl time.Duration) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill) > ttl
}

// limiterSet 按键分组的令牌桶，闲置的桶会被回收
type limiterSet struct {
	mu       sync.Mutex
	rate     float64
	burst    int
	ttl      time.Duration
	buckets  map[string]*TokenBucket
	lastScan time.Time
}

func newLimiterSet(rate float64, burst int) *limiterSet {
	return &limiterSet{
		rate:     rate,
		burst:    burst,
		ttl:      time.Hour,
		buckets:  make(map[string]*TokenBucket),
		lastScan: time.Now(),
	}
}

func (s *limiterSet) get(key string) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastScan) > s.ttl {
		for k, b := range s.buckets {
			if b.idle(now, s.ttl) {
				delete(s.buckets, k)
			}
		}
		s.lastScan = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = NewTokenBucket(s.rate, s.burst)
		s.buckets[key] = b
	}
	return b
}

// RateLimiter 按 keyFunc 返回的键限流
func RateLimiter(rate float64, burst int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 5
	}
	set := newLimiterSet(rate, burst)

	return func(c *gin.Context) {
		if !set.get(keyFunc(c)).Allow() {
			response.AbortWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试")
			return
		}
		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(rate, burst, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// PathRateLimiter 按路径限流
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(rate, burst, func(c *gin.Context) string {
		return c.FullPath()
	})
}

// CallerRateLimiter 按已认证用户限流，未认证时退回按IP
func CallerRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(rate, burst, func(c *gin.Context) string {
		if caller := GetCaller(c); caller != nil {
			return "user:" + strconv.FormatUint(uint64(caller.UserID), 10)
		}
		return "ip:" + c.ClientIP()
	})
}
