package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. JSON by default; pretty console output when
// LOG_PRETTY=1.
func New() zerolog.Logger {
	var logger zerolog.Logger
	if os.Getenv("LOG_PRETTY") == "1" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	logger = logger.With().Timestamp().Logger()

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		logger = logger.Level(zerolog.DebugLevel)
	case "warn":
		logger = logger.Level(zerolog.WarnLevel)
	case "error":
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}

// Component returns a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
