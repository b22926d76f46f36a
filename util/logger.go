package util

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	loggerMu     sync.RWMutex
	currentLevel LogLevel = LogLevelInfo
	logger                = newLogger(os.Stderr, LogLevelInfo)
)

func newLogger(w io.Writer, level LogLevel) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pubsub-harness",
		Level:  level.hclogLevel(),
		Output: w,
	})
}

func (l LogLevel) hclogLevel() hclog.Level {
	switch l {
	case LogLevelDebug:
		return hclog.Debug
	case LogLevelWarn:
		return hclog.Warn
	case LogLevelError:
		return hclog.Error
	default:
		return hclog.Info
	}
}

func SetLevel(level LogLevel) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	currentLevel = level
	logger.SetLevel(level.hclogLevel())
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = newLogger(w, currentLevel)
}

// Logger returns the shared logger for callers that want key/value fields.
func Logger() hclog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func Debug(format string, v ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, v...))
}

func Info(format string, v ...interface{}) {
	Logger().Info(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	Logger().Error(fmt.Sprintf(format, v...))
}

func Fatal(format string, v ...interface{}) {
	Logger().Error("[FATAL] " + fmt.Sprintf(format, v...))
	os.Exit(1)
}
