// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package platform invokes the host's administrative tooling: the
// robocopy mirroring tool, the Group Policy export cmdlet and the
// Active Directory domain query. Everything runs through a
// CommandRunner so tests never touch the real tools.
package platform

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"
	"github.com/juju/utils/v4/exec"
)

// CommandRunner abstracts the execution of host commands.
type CommandRunner interface {
	RunCommands(run exec.RunParams) (*exec.ExecResponse, error)
}

type defaultRunner struct{}

// RunCommands implements CommandRunner using the host shell.
func (defaultRunner) RunCommands(run exec.RunParams) (*exec.ExecResponse, error) {
	return exec.RunCommands(run)
}

// NewCommandRunner returns a CommandRunner backed by the host shell.
func NewCommandRunner() CommandRunner {
	return defaultRunner{}
}

const (
	invocationAttempts = 3
	invocationDelay    = 5 * time.Second
)

// runCommand executes the command, retrying a bounded number of times
// with a short wait when the tool cannot be launched at all. A tool
// that launches and exits non-zero is not retried here; its exit code
// is for the caller to interpret.
func runCommand(runner CommandRunner, clk clock.Clock, delay time.Duration, command string) (*exec.ExecResponse, error) {
	var response *exec.ExecResponse
	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			result, err := runner.RunCommands(exec.RunParams{Commands: command})
			if err != nil {
				return errors.Trace(err)
			}
			response = result
			return nil
		},
		NotifyFunc: func(err error, attempt int) {
			lastErr = err
		},
		Attempts: invocationAttempts,
		Delay:    delay,
		Clock:    clk,
	})
	if retry.IsAttemptsExceeded(err) {
		return nil, errors.Annotate(lastErr, "giving up")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return response, nil
}
