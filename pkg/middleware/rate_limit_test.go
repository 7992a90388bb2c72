package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func hit(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules("200/day, 50/hour")
	require.NoError(t, err)
	require.Equal(t, []Rule{{200, 24 * time.Hour}, {50, time.Hour}}, rules)

	rules, err = ParseRules("5/minutes")
	require.NoError(t, err)
	require.Equal(t, []Rule{{5, time.Minute}}, rules)

	rules, err = ParseRules("")
	require.NoError(t, err)
	require.Empty(t, rules)

	for _, bad := range []string{"5", "x/minute", "0/minute", "5/fortnight"} {
		_, err := ParseRules(bad)
		require.Error(t, err, bad)
	}
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(Rule{10, time.Second}))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/ok").Code)
	require.Equal(t, http.StatusOK, hit(r, "/ok").Code)

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(Rule{2, time.Second}))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/limited").Code)
	require.Equal(t, http.StatusOK, hit(r, "/limited").Code)

	w := hit(r, "/limited")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"Rate limit exceeded"}`, w.Body.String())
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	// one token refills every 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r, "/limited").Code)
}

func TestRateLimitMiddleware_AllRulesApply(t *testing.T) {
	r := gin.New()
	// the tighter long window wins over the generous short one
	r.Use(RateLimitMiddleware(Rule{100, time.Second}, Rule{3, time.Hour}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "/x").Code)
	}
	w := hit(r, "/x")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEqual(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_InstancesAreIndependent(t *testing.T) {
	r := gin.New()
	r.GET("/a", RateLimitMiddleware(Rule{1, time.Hour}), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", RateLimitMiddleware(Rule{1, time.Hour}), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(r, "/a").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/a").Code)
	require.Equal(t, http.StatusOK, hit(r, "/b").Code)
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": c.Query("u")})
		c.Next()
	})
	r.Use(RateLimitMiddleware(Rule{1, time.Hour}))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/u?u=user-123").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/u?u=user-123").Code)
	// same IP, different subject
	require.Equal(t, http.StatusOK, hit(r, "/u?u=user-456").Code)
}

func TestRateLimitMiddleware_NoRules(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/free", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, hit(r, "/free").Code)
	}
}
