package logger

import (
	"fmt"
	"os"
	"sync"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/apitest/common/config"
)

var (
	Logger       glog.Logger
	setupLogOnce sync.Once
	initLogOnce  sync.Once
)

// init initializes the logger automatically when the package is imported
func init() {
	initLogger()
}

// initLogger initializes the go-utils logger
func initLogger() {
	initLogOnce.Do(func() {
		var err error
		level := glog.LevelInfo
		if config.DebugEnabled {
			level = glog.LevelDebug
		}

		Logger, err = glog.NewConsoleWithName("apitest", level)
		if err != nil {
			panic(fmt.Sprintf("failed to create logger: %+v", err))
		}
	})
}

// SetupLogger attaches process-wide context (hostname) to the logger and applies the
// configured level. Safe to call more than once.
func SetupLogger() {
	setupLogOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		Logger = Logger.With(zap.String("host", hostname))

		if config.DebugEnabled {
			_ = Logger.ChangeLevel(glog.LevelDebug)
			Logger.Debug("running in debug mode")
		} else {
			_ = Logger.ChangeLevel(glog.LevelInfo)
		}
	})
}
