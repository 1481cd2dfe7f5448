package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Bool reads a boolean environment variable, returning defaultValue when unset or unparsable.
func Bool(env string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// Int reads an integer environment variable, returning defaultValue when unset or unparsable.
func Int(env string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return num
}

// Float64 reads a float environment variable, returning defaultValue when unset or unparsable.
func Float64(env string, defaultValue float64) float64 {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return num
}

// String reads a string environment variable, returning defaultValue when unset.
func String(env string, defaultValue string) string {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return defaultValue
}

// Duration reads a duration such as "45s" or "2m". A bare integer is taken as seconds.
func Duration(env string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
