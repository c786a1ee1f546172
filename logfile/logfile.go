// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package logfile wires the run's loggers to a dated append-only file
// and to the console. One log file exists per host and run-start
// minute; successive runs within a month share the same directory.
package logfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/policybackup/provision"
)

const (
	monthDirFormat  = "2006-01"
	fileStampFormat = "2006-01-02_15.04"
	lineStampFormat = "2006-01-02 15:04:05"
)

// Params holds what is needed to open a run log.
type Params struct {
	// Dir is the logs root; the dated month directory is created
	// beneath it.
	Dir string

	// Hostname prefixes the log file name.
	Hostname string

	// Now names the log file; it should be the run timestamp.
	Now time.Time

	// Verbose echoes DEBUG and FATAL lines to the console too.
	Verbose bool

	// Console receives the mirrored lines. Defaults to os.Stderr.
	Console io.Writer
}

// Log owns the loggo context for one run.
type Log struct {
	context *loggo.Context
	path    string
	file    io.Closer
}

// DefaultDir returns the Logs directory beside the executable, falling
// back to a relative Logs directory when the executable path is
// unknown.
func DefaultDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "Logs"
	}
	return filepath.Join(filepath.Dir(exe), "Logs")
}

// ConsoleOnly returns a Log that mirrors to the console without any
// file backing. It is the degraded mode used when the log file cannot
// be initialised, and the only mode used for dry runs.
func ConsoleOnly(p Params) *Log {
	console := p.Console
	if console == nil {
		console = os.Stderr
	}
	context := loggo.NewContext(loggo.DEBUG)
	// The writer name is fixed and the context is fresh, so this
	// cannot collide.
	_ = context.AddWriter("console", newConsoleWriter(console, p.Verbose))
	return &Log{context: context}
}

// Open creates the dated log file under p.Dir and returns a Log that
// appends to it and mirrors INFO, WARN and ERROR lines to the console.
// Callers should treat a failure here as degraded rather than fatal
// and continue with ConsoleOnly.
func Open(p Params) (*Log, error) {
	dir := filepath.Join(p.Dir, p.Now.Format(monthDirFormat))
	if err := provision.EnsureFolders(dir); err != nil {
		return nil, errors.Trace(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", p.Hostname, p.Now.Format(fileStampFormat)))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Trace(err)
	}
	l := ConsoleOnly(p)
	if err := l.context.AddWriter("file", loggo.NewSimpleWriter(file, Format)); err != nil {
		_ = file.Close()
		return nil, errors.Trace(err)
	}
	l.path = path
	l.file = file
	return l, nil
}

// Logger returns a named logger writing through this run's log.
func (l *Log) Logger(name string) loggo.Logger {
	return l.context.GetLogger(name)
}

// Path returns the log file path, or "" in console-only mode.
func (l *Log) Path() string {
	return l.path
}

// Close releases the log file, if any.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return errors.Trace(l.file.Close())
}

// Format renders one log line as "<timestamp> | <LEVEL> | <message>".
func Format(entry loggo.Entry) string {
	return fmt.Sprintf("%s | %s | %s",
		entry.Timestamp.Format(lineStampFormat), levelName(entry.Level), entry.Message)
}

func levelName(level loggo.Level) string {
	switch level {
	case loggo.WARNING:
		return "WARN"
	case loggo.CRITICAL:
		return "FATAL"
	default:
		return level.String()
	}
}
