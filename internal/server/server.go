// Package server assembles the gin engine from the configured components.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/handlers"
	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/document/handler"
	"github.com/gogotex/docshare/internal/document/service"
	"github.com/gogotex/docshare/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps are the runtime components the router exposes. Sweeper, Verifier and
// Redis are optional.
type Deps struct {
	Config   *config.Config
	Service  service.Service
	Sweeper  handlers.Sweeper
	Verifier middleware.Verifier
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
	Started  time.Time
}

// NewRouter builds the engine with middleware and all routes.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS())

	var limits handler.RouteLimits
	if cfg.RateLimit.Enabled {
		global, err := limiter(d, "global", cfg.RateLimit.Default)
		if err != nil {
			return nil, err
		}
		if global != nil {
			r.Use(global)
		}
		if limits.Publish, err = limiter(d, "publish", cfg.RateLimit.Publish); err != nil {
			return nil, err
		}
		if limits.Fetch, err = limiter(d, "fetch", cfg.RateLimit.Fetch); err != nil {
			return nil, err
		}
		if limits.Delete, err = limiter(d, "delete", cfg.RateLimit.Delete); err != nil {
			return nil, err
		}
	}

	handler.RegisterDocumentRoutes(r, d.Service, limits)
	handler.RegisterHealthRoute(r, d.Service)
	r.GET("/ready", ready(d))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	if d.Verifier != nil && d.Sweeper != nil {
		admin := r.Group("/admin", middleware.AuthMiddleware(d.Verifier), middleware.RequireRole("admin"))
		handlers.RegisterAdminRoutes(admin, d.Sweeper)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	})
	return r, nil
}

// limiter returns nil when the rule list is empty.
func limiter(d Deps, scope, list string) (gin.HandlerFunc, error) {
	rules, err := middleware.ParseRules(list)
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", scope, err)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	if d.Config.RateLimit.UseRedis && d.Redis != nil {
		return middleware.RedisRateLimitMiddleware(d.Redis, scope, rules...), nil
	}
	return middleware.RateLimitMiddleware(rules...), nil
}

// ready reports 200 only when the store answers and Redis, when the limiter
// depends on it, is reachable.
func ready(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ok := true
		deps := map[string]bool{}

		deps["storage"] = d.Service.Ping(ctx) == nil
		ok = ok && deps["storage"]

		if d.Config.RateLimit.UseRedis {
			deps["redis"] = d.Redis != nil && d.Redis.Ping(ctx).Err() == nil
			ok = ok && deps["redis"]
		}
		deps["admin"] = d.Verifier != nil

		status, code := "ready", http.StatusOK
		if !ok {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(d.Started).String()})
	}
}
