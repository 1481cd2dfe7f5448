package common

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Laisky/zap"

	"github.com/songquanpeng/apitest/common/logger"
)

var windowsEnvPattern = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// ExpandPath resolves a leading ~ and environment variable placeholders ($VAR, ${VAR}
// and %VAR%) in plan file paths.
func ExpandPath(path string) string {
	logger.Logger.Debug("expand path", zap.String("path", path))
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	expanded := os.ExpandEnv(path)

	expanded = windowsEnvPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		key := strings.Trim(match, "%")
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return match
	})

	return expanded
}
