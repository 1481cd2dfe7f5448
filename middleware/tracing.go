package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/common/tracing"
)

// TracingMiddleware records when a request arrived, when its response started and when it completed
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tracing.RecordTraceStart(c)

		writer := &tracingResponseWriter{
			ResponseWriter: c.Writer,
			context:        c,
			firstWrite:     true,
		}
		c.Writer = writer

		c.Next()

		tracing.RecordTraceEnd(c)
	}
}

// tracingResponseWriter wraps gin.ResponseWriter to capture first response timing
type tracingResponseWriter struct {
	gin.ResponseWriter
	context    *gin.Context
	firstWrite bool
}

func (w *tracingResponseWriter) markFirstWrite() {
	if w.firstWrite {
		w.firstWrite = false
		tracing.RecordTraceTimestamp(w.context, tracing.TimestampFirstClientResponse)
	}
}

func (w *tracingResponseWriter) Write(data []byte) (int, error) {
	w.markFirstWrite()
	return w.ResponseWriter.Write(data)
}

func (w *tracingResponseWriter) WriteHeader(statusCode int) {
	w.markFirstWrite()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *tracingResponseWriter) WriteString(s string) (int, error) {
	w.markFirstWrite()
	return w.ResponseWriter.WriteString(s)
}
