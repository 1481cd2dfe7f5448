package graceful

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/common/logger"
)

// Lifecycle manager for graceful shutdown and task draining.

var (
	inFlightRequests int64
	draining         atomic.Bool

	wg sync.WaitGroup
)

// BeginRequest increments the in-flight request counter and returns a function
// to decrement it. Use with `defer` at the top of request handlers/middlewares.
func BeginRequest() func() {
	atomic.AddInt64(&inFlightRequests, 1)
	return func() {
		atomic.AddInt64(&inFlightRequests, -1)
	}
}

// InFlight returns the number of requests currently being served.
func InFlight() int64 { return atomic.LoadInt64(&inFlightRequests) }

// GoCritical runs fn in a tracked goroutine that Drain waits for.
func GoCritical(ctx context.Context, name string, fn func(context.Context)) {
	wg.Go(func() {
		start := time.Now()
		logger.Logger.Debug("critical task start", zap.String("name", name))
		fn(ctx)
		logger.Logger.Debug("critical task done", zap.String("name", name), zap.Duration("elapsed", time.Since(start)))
	})
}

// Drain waits for all tracked critical tasks to finish and for in-flight requests to
// reach zero, bounded by ctx deadline.
func Drain(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Error("graceful drain timeout",
				zap.Int64("in_flight_requests", InFlight()))
			return ctx.Err()
		case <-done:
			for InFlight() != 0 {
				select {
				case <-ctx.Done():
					logger.Logger.Error("graceful drain timeout (requests not zero)", zap.Int64("in_flight_requests", InFlight()))
					return ctx.Err()
				case <-ticker.C:
				}
			}
			logger.Logger.Info("graceful drain complete")
			return nil
		case <-ticker.C:
			logger.Logger.Debug("draining...",
				zap.Int64("in_flight_requests", InFlight()))
		}
	}
}

// SetDraining flips the draining flag to true.
func SetDraining() { draining.Store(true) }

// IsDraining returns whether the server is currently draining.
func IsDraining() bool { return draining.Load() }

// GinRequestTracker counts every request as in flight until its handler returns.
func GinRequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := BeginRequest()
		defer done()
		c.Next()
	}
}
