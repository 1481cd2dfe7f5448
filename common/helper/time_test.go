package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundMillis(t *testing.T) {
	assert.Equal(t, 0.0, RoundMillis(0))
	assert.Equal(t, 1.23, RoundMillis(1234*time.Microsecond))
	assert.Equal(t, 1.24, RoundMillis(1235600*time.Nanosecond))
	assert.Equal(t, 30000.0, RoundMillis(30*time.Second))
}

func TestElapsedMillisNonNegative(t *testing.T) {
	start := time.Now()
	assert.GreaterOrEqual(t, ElapsedMillis(start), 0.0)
}

func TestMessageWithRequestId(t *testing.T) {
	assert.Equal(t, "boom", MessageWithRequestId("boom", ""))
	assert.Equal(t, "boom (request id: abc)", MessageWithRequestId("boom", "abc"))
}
