// Package logging configures the process-wide logger.
package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "DATACOPY_LOG_LEVEL"
	EnvLogTimestamp = "DATACOPY_LOG_TIMESTAMP"
	EnvLogNoColor   = "DATACOPY_LOG_NOCOLOR"
)

var initOnce sync.Once

// Init builds the root logger for app and installs it as the global
// logger. Environment variables override the given level. Safe to
// call more than once; only the first call configures anything.
func Init(app string, level zerolog.Level) zerolog.Logger {
	initOnce.Do(func() {
		if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
			level = lvl
		}
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    envBool(EnvLogNoColor),
		}
		logger := zerolog.New(output).Level(level).With().Str("app", app)
		if !envBoolDefault(EnvLogTimestamp, true) {
			log.Logger = logger.Logger()
			return
		}
		log.Logger = logger.Timestamp().Logger()
	})
	return log.Logger
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func envBoolDefault(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
