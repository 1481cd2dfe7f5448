package graceful

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestDrainWaitsForCriticalTasks(t *testing.T) {
	var finished atomic.Bool
	GoCritical(context.Background(), "slow", func(context.Context) {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, Drain(ctx))
	require.True(t, finished.Load())
}

func TestDrainTimesOutOnStuckRequest(t *testing.T) {
	done := BeginRequest()
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Drain(ctx), context.DeadlineExceeded)
}

func TestGinRequestTracker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var during int64
	r := gin.New()
	r.Use(GinRequestTracker())
	r.GET("/", func(c *gin.Context) {
		during = InFlight()
		c.Status(http.StatusNoContent)
	})

	before := InFlight()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, before+1, during)
	require.Equal(t, before, InFlight())
}

func TestDrainingFlag(t *testing.T) {
	require.False(t, IsDraining())
	SetDraining()
	require.True(t, IsDraining())
}
