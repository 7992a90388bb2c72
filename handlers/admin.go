package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/internal/sweeper"
	"github.com/gogotex/docshare/pkg/logger"
)

// Sweeper is the manual trigger the admin route calls.
type Sweeper interface {
	SweepOnce(ctx context.Context) (int64, error)
}

// RegisterAdminRoutes adds POST /sweep to rg. The caller attaches auth.
func RegisterAdminRoutes(rg gin.IRoutes, s Sweeper) {
	rg.POST("/sweep", func(c *gin.Context) {
		removed, err := s.SweepOnce(c.Request.Context())
		if err != nil && !errors.Is(err, sweeper.ErrArchiveIncomplete) {
			logger.Errorf("manual sweep: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Sweep failed"})
			return
		}
		resp := gin.H{"success": true, "removed": removed}
		if err != nil {
			logger.Warnf("manual sweep: %v", err)
			resp["warning"] = sweeper.ErrArchiveIncomplete.Error()
		}
		if sub := subject(c); sub != "" {
			logger.WithFields(logger.Fields{"sub": sub, "removed": removed}).Info("manual sweep")
		}
		c.JSON(http.StatusOK, resp)
	})
}

func subject(c *gin.Context) string {
	v, ok := c.Get("claims")
	if !ok {
		return ""
	}
	claims, _ := v.(map[string]interface{})
	sub, _ := claims["sub"].(string)
	return sub
}
