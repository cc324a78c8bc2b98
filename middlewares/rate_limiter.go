package middlewares

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/gourmet-house/utils"
	"golang.org/x/time/rate"
)

const idleVisitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket kept in process memory.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	ips       map[string]*visitor
	lastSweep time.Time
	mu        sync.Mutex
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		ips:       make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > time.Minute {
		for key, v := range rl.ips {
			if now.Sub(v.lastSeen) > idleVisitorTTL {
				delete(rl.ips, key)
			}
		}
		rl.lastSweep = now
	}

	v, exists := rl.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			tooManyRequests(c, 1)
			return
		}
		c.Next()
	}
}

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RedisRateLimit shares one token bucket per client IP across all instances.
// Redis failures let the request through.
func RedisRateLimit(rdb *redis.Client, rps float64, burst int) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	intervalMs := int64(1000)
	if rps > 0 {
		intervalMs = int64(math.Max(1, math.Round(1000/rps)))
	}
	ttl := int64(burst)*intervalMs/1000 + 60

	return func(c *gin.Context) {
		key := fmt.Sprintf("gourmet:ratelimit:%s", c.ClientIP())
		args := []interface{}{time.Now().UnixMilli(), burst, intervalMs, ttl}

		vals, err := tokenBucketScript.Run(c.Request.Context(), rdb, []string{key}, args...).Int64Slice()
		if err != nil || len(vals) != 3 {
			utils.ErrorLogger.Warnf("Rate limit check failed for %s: %v", key, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(burst))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))
		if vals[0] != 1 {
			tooManyRequests(c, int(math.Ceil(float64(vals[2])/1000)))
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
		Error:   "Too many requests",
		Details: "Please wait before trying again",
	})
}
