package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	t.Setenv("APITEST_DURATION", "")
	assert.Equal(t, 5*time.Second, Duration("APITEST_DURATION", 5*time.Second))

	t.Setenv("APITEST_DURATION", "45")
	assert.Equal(t, 45*time.Second, Duration("APITEST_DURATION", 5*time.Second))

	t.Setenv("APITEST_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, Duration("APITEST_DURATION", 5*time.Second))

	t.Setenv("APITEST_DURATION", "soon")
	assert.Equal(t, 5*time.Second, Duration("APITEST_DURATION", 5*time.Second))
}

func TestScalars(t *testing.T) {
	t.Setenv("APITEST_INT", "7")
	t.Setenv("APITEST_BOOL", "true")
	t.Setenv("APITEST_FLOAT", "0.25")
	t.Setenv("APITEST_STRING", "")

	assert.Equal(t, 7, Int("APITEST_INT", 1))
	assert.True(t, Bool("APITEST_BOOL", false))
	assert.InDelta(t, 0.25, Float64("APITEST_FLOAT", 1), 1e-9)
	assert.Equal(t, "fallback", String("APITEST_STRING", "fallback"))

	t.Setenv("APITEST_INT", "seven")
	assert.Equal(t, 1, Int("APITEST_INT", 1))
}
