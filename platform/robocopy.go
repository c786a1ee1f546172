// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package platform

import (
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
)

// Robocopy exit codes are a bitmask: values below 8 report copied,
// extra or skipped files; 8 and above mean at least one copy failed.
const robocopyFailureThreshold = 8

// Robocopy mirrors directory trees with the host's robocopy tool.
// The tool's own retry switches (/R /W) handle transient per-file
// failures; RetryDelay covers failures to launch the tool at all.
type Robocopy struct {
	Runner     CommandRunner
	Clock      clock.Clock
	RetryDelay time.Duration
}

// NewRobocopy returns a Robocopy with production defaults.
func NewRobocopy(runner CommandRunner) *Robocopy {
	return &Robocopy{
		Runner:     runner,
		Clock:      clock.WallClock,
		RetryDelay: invocationDelay,
	}
}

// Mirror replicates the source tree to dest, copying only changed or
// missing items. A failure exit from the tool is an error; partial
// success grades (new/extra files) are not.
func (r *Robocopy) Mirror(source, dest string) error {
	command := shellquote.Join(
		"robocopy", source, dest,
		"/MIR", "/R:2", "/W:5", "/NP", "/NDL", "/NJH",
	)
	response, err := runCommand(r.Runner, r.Clock, r.RetryDelay, command)
	if err != nil {
		return errors.Annotatef(err, "cannot run robocopy for %q", source)
	}
	if response.Code >= robocopyFailureThreshold {
		return errors.Errorf("robocopy exited with code %d: %s",
			response.Code, strings.TrimSpace(string(response.Stderr)))
	}
	return nil
}
