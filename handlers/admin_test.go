package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docshare/internal/sweeper"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	removed int64
	err     error
}

func (s stubSweeper) SweepOnce(context.Context) (int64, error) { return s.removed, s.err }

func sweep(s Sweeper) *httptest.ResponseRecorder {
	g := gin.New()
	RegisterAdminRoutes(g.Group("/admin"), s)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sweep", nil))
	return w
}

func TestAdminSweep(t *testing.T) {
	w := sweep(stubSweeper{removed: 3})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true,"removed":3}`, w.Body.String())
}

func TestAdminSweepArchiveIncomplete(t *testing.T) {
	w := sweep(stubSweeper{removed: 2, err: fmt.Errorf("%w: bucket gone", sweeper.ErrArchiveIncomplete)})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"warning":"archive incomplete"`)
}

func TestAdminSweepFailure(t *testing.T) {
	w := sweep(stubSweeper{err: errors.New("store down")})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"success":false,"error":"Sweep failed"}`, w.Body.String())
}
