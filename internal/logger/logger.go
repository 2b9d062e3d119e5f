package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger: human-readable output in development, JSON
// everywhere else.
func New(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	var base zerolog.Logger
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "production", "prod":
		base = zerolog.New(os.Stdout)
	default:
		level = zerolog.DebugLevel
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	return base.Level(level).With().Timestamp().Str("service", "licitabrasil").Logger()
}
