// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/mutex/v2"

	"github.com/juju/policybackup/config"
)

// Only one run may write backup folders and the minute-stamped log on
// a host at a time.
const runLockName = "policy-backup"

// RunnerParams holds a Runner's dependencies.
type RunnerParams struct {
	Config   *config.RunConfig
	Logger   loggo.Logger
	Clock    clock.Clock
	Mirror   MirrorCopier
	Exporter GPOExporter

	// Host and Username appear in the run banner.
	Host     string
	Username string

	// AcquireLock is a hook for tests; it defaults to mutex.Acquire.
	AcquireLock func(mutex.Spec) (mutex.Releaser, error)
}

// Validate checks that the params are complete for the requested work.
func (p RunnerParams) Validate() error {
	if p.Config == nil {
		return errors.NotValidf("nil Config")
	}
	if p.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if p.Config.EnableADMX && p.Mirror == nil {
		return errors.NotValidf("nil Mirror with ADMX enabled")
	}
	if p.Config.EnableGPO && p.Exporter == nil {
		return errors.NotValidf("nil Exporter with GPO enabled")
	}
	return nil
}

// Runner sequences one backup run: banner, then the ADMX task, then
// the GPO task, then the elapsed-time line. Each task's failure is
// logged and does not prevent the other task from running.
type Runner struct {
	params RunnerParams
}

// NewRunner returns a Runner for the given params.
func NewRunner(params RunnerParams) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if params.AcquireLock == nil {
		params.AcquireLock = mutex.Acquire
	}
	return &Runner{params: params}, nil
}

// Run performs the backup run. It returns an error only for
// environment-level failures (the run lock); task failures are caught
// here, logged as errors and swallowed so the run completes
// best-effort.
func (r *Runner) Run() error {
	cfg := r.params.Config
	logger := r.params.Logger
	start := r.params.Clock.Now()

	releaser, err := r.params.AcquireLock(mutex.Spec{
		Name:    runLockName,
		Clock:   r.params.Clock,
		Delay:   250 * time.Millisecond,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return errors.Annotate(err, "cannot acquire the backup run lock; is another run in progress?")
	}
	defer releaser.Release()

	logger.Infof("policy backup starting on %s as %s", r.params.Host, r.params.Username)
	logger.Infof("domain %s, destination root %s", cfg.DomainName, cfg.DestinationRoot)
	if cfg.DryRun {
		logger.Infof("dry-run: nothing will be copied or created")
	}

	if !cfg.Requested() {
		logger.Warningf("nothing to do: neither --admx nor --gpo was requested")
		return nil
	}

	if cfg.EnableADMX {
		task := NewADMXBackup(cfg.DomainName, r.params.Mirror, logger.Child("admx"), cfg.DryRun)
		if err := task.Run(cfg.ADMXRoot()); err != nil {
			logger.Errorf("ADMX backup failed: %v", err)
		}
	}
	if cfg.EnableGPO {
		task := NewGPOBackup(r.params.Exporter, logger.Child("gpo"), cfg.DryRun)
		if err := task.Run(cfg.GPORoot()); err != nil {
			logger.Errorf("GPO backup failed: %v", err)
		}
	}

	logger.Infof("policy backup finished in %s", r.params.Clock.Now().Sub(start).Round(time.Millisecond))
	return nil
}
