// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger is the process-wide logger. Commands hand it to the protocol
// session for exchange-level debug output.
var logger = zerolog.Nop()

// initLogging builds the console logger on stderr. Level precedence:
// --log-level flag, JOLTCTL_LOG environment variable, config file, warn.
func initLogging(levelFlagSet bool, configLevel string) {
	level := logLevel
	if !levelFlagSet {
		if env := os.Getenv("JOLTCTL_LOG"); env != "" {
			level = env
		} else if configLevel != "" {
			level = configLevel
		}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
