// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// Level is "debug", "info", "warn" or "error"
	Level string
	// Format is "text" or "json"
	Format string
	// File is the rotating log file; empty disables file output
	File string
	// Console receives log lines besides the file; nil means file only
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, errors.Errorf("unknown log level %q", level)
}

// New builds a logger from opts. The returned closer releases the log file
// and must be called on shutdown.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	text := !strings.EqualFold(opts.Format, "json")

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Console != nil {
		if text {
			writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen})
		} else {
			writers = append(writers, opts.Console)
		}
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		closer = rotator
		if text {
			writers = append(writers, zerolog.ConsoleWriter{Out: rotator, NoColor: true, TimeFormat: time.RFC3339})
		} else {
			writers = append(writers, rotator)
		}
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// Init builds a logger from opts and installs it as the global logger.
func Init(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return closer, err
	}
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return closer, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
