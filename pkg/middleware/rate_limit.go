package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/pkg/metrics"
	"golang.org/x/time/rate"
)

// Rule allows Requests per Per window.
type Rule struct {
	Requests int
	Per      time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d/%s", r.Requests, r.Per)
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRules parses a comma separated list like "200/day,50/hour".
// Units may be plural. An empty string yields no rules.
func ParseRules(s string) ([]Rule, error) {
	var rules []Rule
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, unit, ok := strings.Cut(part, "/")
		if !ok {
			return nil, fmt.Errorf("rate limit %q: want N/unit", part)
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("rate limit %q: bad count", part)
		}
		unit = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "s")
		per, ok := units[unit]
		if !ok {
			return nil, fmt.Errorf("rate limit %q: unknown unit %q", part, unit)
		}
		rules = append(rules, Rule{Requests: count, Per: per})
	}
	return rules, nil
}

// clientKey prefers the authenticated subject (claims.sub) and falls back to
// the client IP.
func clientKey(c *gin.Context) string {
	if v, ok := c.Get("claims"); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if sub, ok3 := cm["sub"].(string); ok3 && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func reject(c *gin.Context, limiter string, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	metrics.RateLimitRejected.WithLabelValues(limiter).Inc()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
}

// memoryLimiter keeps one token bucket per rule for each client key.
type memoryLimiter struct {
	rules   []Rule
	buckets sync.Map // map[string][]*rate.Limiter
}

func (m *memoryLimiter) get(key string) []*rate.Limiter {
	if v, ok := m.buckets.Load(key); ok {
		return v.([]*rate.Limiter)
	}
	lims := make([]*rate.Limiter, len(m.rules))
	for i, r := range m.rules {
		lims[i] = rate.NewLimiter(rate.Every(r.Per/time.Duration(r.Requests)), r.Requests)
	}
	v, _ := m.buckets.LoadOrStore(key, lims)
	return v.([]*rate.Limiter)
}

// allow takes one token from every bucket, or none when any bucket is empty.
func (m *memoryLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	lims := m.get(key)
	taken := make([]*rate.Reservation, 0, len(lims))
	for _, lim := range lims {
		r := lim.ReserveN(now, 1)
		if !r.OK() {
			cancelAll(taken, now)
			return false, time.Second
		}
		if d := r.DelayFrom(now); d > 0 {
			r.CancelAt(now)
			cancelAll(taken, now)
			return false, d
		}
		taken = append(taken, r)
	}
	return true, 0
}

func cancelAll(rs []*rate.Reservation, now time.Time) {
	for _, r := range rs {
		r.CancelAt(now)
	}
}

// RateLimitMiddleware enforces every rule per client with in-process token
// buckets. Each call owns its own buckets, so per-route limits do not share
// state with the global one.
func RateLimitMiddleware(rules ...Rule) gin.HandlerFunc {
	m := &memoryLimiter{rules: rules}
	return func(c *gin.Context) {
		if len(rules) == 0 {
			c.Next()
			return
		}
		ok, wait := m.allow(clientKey(c), time.Now())
		if !ok {
			reject(c, "memory", wait)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
