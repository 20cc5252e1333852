// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// setupLogging builds the logger injected into the editor. Output goes to
// stderr so command output stays clean; color only on a terminal.
func setupLogging(verbosity int) zerolog.Logger {
	var level zerolog.Level
	switch verbosity {
	case 0:
		level = zerolog.WarnLevel
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}

	w := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
