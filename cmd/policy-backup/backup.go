// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"
	"os/user"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/mutex/v2"

	"github.com/juju/policybackup/backup"
	"github.com/juju/policybackup/config"
	"github.com/juju/policybackup/logfile"
	"github.com/juju/policybackup/platform"
)

var backupDoc = `
policy-backup copies the domain's ADMX policy definitions and exports
all Group Policy Objects to timestamped folders under the destination
root. The destination root must already exist.

Pass --admx and/or --gpo to choose what to back up; without either
flag the run logs a warning and performs no backup.

Run logs are appended to a dated file under a Logs directory beside
the executable, one file per host and run-start minute.
`

const backupExamples = `
    policy-backup D:\DomainBackups --admx --gpo
    policy-backup \\backupsrv\gpo$ --gpo --dry-run
`

type backupCommand struct {
	cmd.CommandBase

	destinationRoot string
	admx            bool
	gpo             bool
	dryRun          bool
	verbose         bool
	logDir          string

	runner      platform.CommandRunner
	clock       clock.Clock
	acquireLock func(mutex.Spec) (mutex.Releaser, error)
}

// newBackupCommand returns the policy-backup command wired to the
// host's tooling.
func newBackupCommand() cmd.Command {
	return &backupCommand{
		runner: platform.NewCommandRunner(),
		clock:  clock.WallClock,
	}
}

// Info implements cmd.Command.
func (c *backupCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "policy-backup",
		Args:     "<destination-root>",
		Purpose:  "Back up domain ADMX policy definitions and Group Policy Objects.",
		Doc:      backupDoc,
		Examples: backupExamples,
	}
}

// SetFlags implements cmd.Command.
func (c *backupCommand) SetFlags(f *gnuflag.FlagSet) {
	f.BoolVar(&c.admx, "admx", false, "Mirror the sysvol and local ADMX policy definitions")
	f.BoolVar(&c.gpo, "gpo", false, "Export all Group Policy Objects in the domain")
	f.BoolVar(&c.dryRun, "dry-run", false, "Report what would be backed up without changing anything")
	f.BoolVar(&c.verbose, "verbose", false, "Echo DEBUG and FATAL log lines to the console")
	f.StringVar(&c.logDir, "log-dir", "", "Directory for run logs (default: Logs beside the executable)")
}

// Init implements cmd.Command.
func (c *backupCommand) Init(args []string) error {
	if len(args) < 1 {
		return errors.New("destination root path is required")
	}
	c.destinationRoot = args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run implements cmd.Command.
func (c *backupCommand) Run(ctx *cmd.Context) error {
	cfg, err := config.Resolve(config.ResolveParams{
		DestinationRoot: c.destinationRoot,
		EnableADMX:      c.admx,
		EnableGPO:       c.gpo,
		DryRun:          c.dryRun,
		Verbose:         c.verbose,
		Domain:          platform.NewDomainResolver(c.runner),
		Clock:           c.clock,
	})
	if err != nil {
		return errors.Trace(err)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	logDir := c.logDir
	if logDir == "" {
		logDir = logfile.DefaultDir()
	}
	params := logfile.Params{
		Dir:      logDir,
		Hostname: host,
		Now:      cfg.Timestamp,
		Verbose:  c.verbose,
		Console:  ctx.Stderr,
	}
	var runLog *logfile.Log
	if cfg.DryRun {
		runLog = logfile.ConsoleOnly(params)
	} else {
		runLog, err = logfile.Open(params)
		if err != nil {
			// Logging is diagnostic, not essential.
			runLog = logfile.ConsoleOnly(params)
			runLog.Logger("policybackup").Warningf(
				"cannot initialise the log file: %v (continuing with console output only)", err)
		}
	}
	defer func() { _ = runLog.Close() }()

	runner, err := backup.NewRunner(backup.RunnerParams{
		Config:      cfg,
		Logger:      runLog.Logger("policybackup"),
		Clock:       c.clock,
		Mirror:      platform.NewRobocopy(c.runner),
		Exporter:    platform.NewGPOExport(c.runner),
		Host:        host,
		Username:    username,
		AcquireLock: c.acquireLock,
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(runner.Run())
}
