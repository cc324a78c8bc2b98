package middlewares

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/utils"
)

const cachePrefix = "gourmet:cache"

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func cacheKey(c *gin.Context, vary []func(*gin.Context) string) string {
	raw := c.Request.URL.Path + "?" + c.Request.URL.RawQuery
	for _, fn := range vary {
		raw += "|" + fn(c)
	}
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%x", cachePrefix, sum[:])
}

// ResponseCache stores successful GET JSON responses in Redis for ttl.
// X-Cache tells whether the body came from Redis. Each vary function adds
// its result to the cache key.
func ResponseCache(rdb *redis.Client, ttl time.Duration, vary ...func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c, vary)
		ctx := c.Request.Context()

		body, err := rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			metrics.RecordCacheLookup("hit")
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		case err == redis.Nil:
			metrics.RecordCacheLookup("miss")
		default:
			metrics.RecordCacheLookup("error")
			utils.ErrorLogger.Warnf("Cache lookup failed for %s: %v", c.Request.URL.Path, err)
		}

		c.Header("X-Cache", "MISS")
		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		if cw.Status() != http.StatusOK || cw.buf.Len() == 0 {
			return
		}
		if err := rdb.Set(ctx, key, cw.buf.Bytes(), ttl).Err(); err != nil {
			utils.ErrorLogger.Warnf("Cache store failed for %s: %v", c.Request.URL.Path, err)
		}
	}
}
