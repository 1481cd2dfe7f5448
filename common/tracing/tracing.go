package tracing

import (
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

const (
	// TimestampRequestReceived is taken when the request enters the tracing middleware.
	TimestampRequestReceived = "request_received"
	// TimestampFirstClientResponse is taken on the first header or body write.
	TimestampFirstClientResponse = "first_client_response"
	// TimestampRequestCompleted is taken after every handler returned.
	TimestampRequestCompleted = "request_completed"
)

const timelineKey = "tracing_timeline"

// Timeline collects the timestamps of one request.
type Timeline struct {
	TraceID    string
	Timestamps map[string]time.Time
}

// Since returns the time between the request start and key, or zero if key was not recorded.
func (t *Timeline) Since(key string) time.Duration {
	start, ok := t.Timestamps[TimestampRequestReceived]
	at, ok2 := t.Timestamps[key]
	if !ok || !ok2 {
		return 0
	}
	return at.Sub(start)
}

// GetTraceID extracts the TraceID from gin context using gin-middlewares
func GetTraceID(c *gin.Context) string {
	traceID, err := gmw.TraceID(c)
	if err != nil {
		return ""
	}
	return traceID.String()
}

// GetTimeline returns the timeline attached by RecordTraceStart, or nil.
func GetTimeline(c *gin.Context) *Timeline {
	v, ok := c.Get(timelineKey)
	if !ok {
		return nil
	}
	tl, _ := v.(*Timeline)
	return tl
}

// RecordTraceStart attaches a new timeline to the request
func RecordTraceStart(c *gin.Context) {
	tl := &Timeline{
		TraceID:    GetTraceID(c),
		Timestamps: map[string]time.Time{TimestampRequestReceived: time.Now()},
	}
	c.Set(timelineKey, tl)
}

// RecordTraceTimestamp records key once; later calls for the same key are ignored.
func RecordTraceTimestamp(c *gin.Context, key string) {
	tl := GetTimeline(c)
	if tl == nil {
		return
	}
	if _, ok := tl.Timestamps[key]; !ok {
		tl.Timestamps[key] = time.Now()
	}
}

// RecordTraceEnd marks the completion of a request and logs its timeline
func RecordTraceEnd(c *gin.Context) {
	RecordTraceTimestamp(c, TimestampRequestCompleted)
	tl := GetTimeline(c)
	if tl == nil {
		return
	}

	gmw.GetLogger(c).Debug("request timeline",
		WithTraceID(c,
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("first_response", tl.Since(TimestampFirstClientResponse)),
			zap.Duration("total", tl.Since(TimestampRequestCompleted)))...)
}

// WithTraceID adds trace ID to structured logging fields
func WithTraceID(c *gin.Context, fields ...zap.Field) []zap.Field {
	traceID := GetTraceID(c)
	if traceID == "" {
		return fields
	}

	traceField := zap.String("trace_id", traceID)
	return append([]zap.Field{traceField}, fields...)
}
