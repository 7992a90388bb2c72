package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/internal/document"
	"github.com/gogotex/docshare/internal/document/service"
	"github.com/gogotex/docshare/pkg/logger"
)

// RouteLimits holds optional per-route middleware (rate limiters). Nil
// entries are skipped.
type RouteLimits struct {
	Publish gin.HandlerFunc
	Fetch   gin.HandlerFunc
	Delete  gin.HandlerFunc
}

func chain(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}

// RegisterDocumentRoutes wires publish, fetch, delete and the slug probe.
func RegisterDocumentRoutes(r gin.IRoutes, svc service.Service, limits RouteLimits) {
	r.POST("/publish", chain(limits.Publish, publish(svc))...)
	r.GET("/document/:id", chain(limits.Fetch, fetch(svc))...)
	r.DELETE("/delete/:id", chain(limits.Delete, remove(svc))...)
	r.GET("/check-url/:slug", checkURL(svc))
}

// RegisterHealthRoute adds the liveness probe, which pings the store.
func RegisterHealthRoute(r gin.IRoutes, svc service.Service) {
	r.GET("/health", func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			logger.Errorf("health check failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
	})
}

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, document.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, document.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, op string, err error) {
	code := StatusCode(err)
	msg, ok := document.Message(err)
	switch code {
	case http.StatusServiceUnavailable:
		logger.Errorf("%s: store unavailable: %v", op, err)
		msg = "Service temporarily unavailable"
	case http.StatusInternalServerError:
		logger.Errorf("%s: %v", op, err)
		msg = "Internal server error"
	default:
		if !ok {
			msg = http.StatusText(code)
		}
	}
	c.JSON(code, gin.H{"success": false, "error": msg})
}

func publish(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEJSON {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Content-Type must be application/json"})
			return
		}
		var in document.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
			return
		}
		created, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, "publish document", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": created.ID, "delete_code": created.DeleteCode})
	}
}

func fetch(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, "retrieve document", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "document": v})
	}
}

func remove(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), c.Query("code")); err != nil {
			fail(c, "delete document", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func checkURL(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.CheckAvailability(c.Request.Context(), c.Param("slug"))
		if err != nil {
			fail(c, "check custom url", err)
			return
		}
		if a.Invalid {
			c.JSON(http.StatusOK, gin.H{"available": false, "error": "Invalid URL format"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"available": a.Available})
	}
}
