package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/pkg/logger"
	"github.com/gogotex/docshare/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript checks every window first and charges them only when all
// have room, so a request rejected by one rule costs nothing on the others.
// KEYS[i] is the window counter of rule i; ARGV holds limit and ttl pairs.
// Returns 0 when charged, otherwise the 1-based index of the full window.
var fixedWindowScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	local n = tonumber(redis.call('GET', key) or '0')
	if n >= tonumber(ARGV[i * 2 - 1]) then
		return i
	end
end
for i, key in ipairs(KEYS) do
	if redis.call('INCR', key) == 1 then
		redis.call('EXPIRE', key, ARGV[i * 2])
	end
end
return 0
`)

// RedisRateLimitMiddleware enforces every rule with a Redis fixed window,
// so limits hold across replicas. scope separates counters of different
// routes. Keying follows clientKey.
func RedisRateLimitMiddleware(client *redis.Client, scope string, rules ...Rule) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rules...)
	}
	return func(c *gin.Context) {
		if len(rules) == 0 {
			c.Next()
			return
		}
		key := clientKey(c)
		now := time.Now()

		keys := make([]string, len(rules))
		args := make([]interface{}, 0, 2*len(rules))
		resets := make([]time.Time, len(rules))
		for i, r := range rules {
			window := int64(r.Per / time.Second)
			if window <= 0 {
				window = 1
			}
			bucket := now.Unix() / window
			keys[i] = fmt.Sprintf("rl:%s:%s:%d:%d", scope, key, window, bucket)
			args = append(args, r.Requests, window+1)
			resets[i] = time.Unix((bucket+1)*window, 0)
		}

		full, err := fixedWindowScript.Run(c.Request.Context(), client, keys, args...).Int()
		if err != nil {
			logger.Errorf("rate limit check %s: %v", scope, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if full > 0 {
			reject(c, "redis", resets[full-1].Sub(now))
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
