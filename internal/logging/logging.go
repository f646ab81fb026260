// Package logging configures the engine-wide zerolog logger: console output
// for interactive use plus an optional size-rotated log file.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level   string // debug, info, warn, error
	File    string // rotating log file path; empty disables file output
	Console bool
}

// New builds the root logger. Components derive their own logger via
// Component so every event carries a component field.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
}

// Component tags a logger with the component emitting its events.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests and optional wiring.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
