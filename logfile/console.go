// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package logfile

import (
	"fmt"
	"io"

	"github.com/juju/ansiterm"
	"github.com/juju/loggo/v2"
)

// severityColor fixes the console presentation for each level.
var severityColor = map[loggo.Level]*ansiterm.Context{
	loggo.TRACE:   ansiterm.Foreground(ansiterm.Default),
	loggo.DEBUG:   ansiterm.Foreground(ansiterm.Green),
	loggo.INFO:    ansiterm.Foreground(ansiterm.BrightBlue),
	loggo.WARNING: ansiterm.Foreground(ansiterm.Yellow),
	loggo.ERROR:   ansiterm.Foreground(ansiterm.BrightRed),
	loggo.CRITICAL: {
		Foreground: ansiterm.White,
		Background: ansiterm.Red,
	},
}

// consoleWriter mirrors log entries to interactive output. INFO, WARN
// and ERROR are always shown; DEBUG and FATAL stay file-only unless
// verbose was requested.
type consoleWriter struct {
	writer  *ansiterm.Writer
	verbose bool
}

func newConsoleWriter(w io.Writer, verbose bool) loggo.Writer {
	return &consoleWriter{
		writer:  ansiterm.NewWriter(w),
		verbose: verbose,
	}
}

// Write implements loggo.Writer.
func (w *consoleWriter) Write(entry loggo.Entry) {
	switch entry.Level {
	case loggo.TRACE, loggo.DEBUG, loggo.CRITICAL:
		if !w.verbose {
			return
		}
	}
	fmt.Fprintf(w.writer, "%s ", entry.Timestamp.Format(lineStampFormat))
	severityColor[entry.Level].Fprintf(w.writer, "%s", levelName(entry.Level))
	fmt.Fprintf(w.writer, " %s\n", entry.Message)
}
