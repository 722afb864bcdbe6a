// Package logger provides a zerolog-backed implementation of the bot's
// Logger interface.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger adapts zerolog to the key-value logging interface used across the
// application.
type Logger struct {
	l zerolog.Logger
}

// New creates a logger writing JSON to stderr, or pretty console output in
// debug mode.
func New(serviceName string, debug bool) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	var out = zerolog.New(os.Stderr)
	if debug {
		level = zerolog.DebugLevel
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	return &Logger{
		l: out.Level(level).With().Timestamp().Str("service", serviceName).Logger(),
	}
}

func (lg *Logger) Debug(msg string, args ...any) {
	lg.l.Debug().Fields(args).Msg(msg)
}

func (lg *Logger) Info(msg string, args ...any) {
	lg.l.Info().Fields(args).Msg(msg)
}

func (lg *Logger) Warn(msg string, args ...any) {
	lg.l.Warn().Fields(args).Msg(msg)
}

func (lg *Logger) Error(msg string, args ...any) {
	lg.l.Error().Fields(args).Msg(msg)
}
