// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup_test

import (
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/mutex/v2"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/policybackup/backup"
	"github.com/juju/policybackup/config"
)

type fakeReleaser struct{}

func (fakeReleaser) Release() {}

type runnerSuite struct {
	jujutesting.IsolationSuite
	stub     *jujutesting.Stub
	recorder *logRecorder
	logger   loggo.Logger
	config   *config.RunConfig
}

var _ = gc.Suite(&runnerSuite{})

var fixedTime = time.Date(2024, 2, 25, 10, 30, 0, 0, time.UTC)

func (s *runnerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &jujutesting.Stub{}
	s.logger, s.recorder = newRecordedLogger(c)
	s.config = &config.RunConfig{
		DestinationRoot: c.MkDir(),
		DomainName:      "corp.example.com",
		Timestamp:       fixedTime,
	}
}

func (s *runnerSuite) newRunner(c *gc.C) *backup.Runner {
	runner, err := backup.NewRunner(backup.RunnerParams{
		Config:   s.config,
		Logger:   s.logger,
		Clock:    testclock.NewClock(fixedTime),
		Mirror:   &stubMirror{stub: s.stub},
		Exporter: &stubExporter{stub: s.stub},
		Host:     "dc01",
		Username: "CORP\\backupsvc",
		AcquireLock: func(spec mutex.Spec) (mutex.Releaser, error) {
			s.stub.AddCall("AcquireLock", spec.Name)
			if err := s.stub.NextErr(); err != nil {
				return nil, err
			}
			return fakeReleaser{}, nil
		},
	})
	c.Assert(err, jc.ErrorIsNil)
	return runner
}

func (s *runnerSuite) TestNothingRequested(c *gc.C) {
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)

	// No copy or export happened, and exactly one warning was logged.
	s.stub.CheckCallNames(c, "AcquireLock")
	c.Check(s.recorder.count(loggo.WARNING), gc.Equals, 1)
	c.Check(s.recorder.messages(loggo.WARNING)[0], gc.Matches,
		"nothing to do: neither --admx nor --gpo was requested")
}

func (s *runnerSuite) TestRunsADMXBeforeGPO(c *gc.C) {
	s.config.EnableADMX = true
	s.config.EnableGPO = true
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "AcquireLock", "Mirror", "Mirror", "ExportAll")
}

func (s *runnerSuite) TestADMXOnly(c *gc.C) {
	s.config.EnableADMX = true
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "AcquireLock", "Mirror", "Mirror")
}

func (s *runnerSuite) TestGPOOnly(c *gc.C) {
	s.config.EnableGPO = true
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "AcquireLock", "ExportAll")
}

func (s *runnerSuite) TestGPOFailureIsLoggedNotFatal(c *gc.C) {
	s.config.EnableADMX = true
	s.config.EnableGPO = true
	// AcquireLock, Mirror x2 fine; ExportAll fails.
	s.stub.SetErrors(nil, nil, nil, errors.New("export broke"))
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.recorder.messages(loggo.ERROR), jc.DeepEquals,
		[]string{"GPO backup failed: export broke"})
}

func (s *runnerSuite) TestLockContention(c *gc.C) {
	s.stub.SetErrors(errors.New("timeout acquiring mutex"))
	err := s.newRunner(c).Run()
	c.Assert(err, gc.ErrorMatches,
		"cannot acquire the backup run lock; is another run in progress\\?: timeout acquiring mutex")
	c.Check(s.recorder.entries, gc.HasLen, 0)
}

func (s *runnerSuite) TestLogsElapsedTime(c *gc.C) {
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	infos := s.recorder.messages(loggo.INFO)
	c.Assert(len(infos) > 0, jc.IsTrue)
	c.Check(infos[len(infos)-1], gc.Matches, "policy backup finished in .*")
}

func (s *runnerSuite) TestBannerNamesHostUserAndDomain(c *gc.C) {
	err := s.newRunner(c).Run()
	c.Assert(err, jc.ErrorIsNil)
	infos := s.recorder.messages(loggo.INFO)
	c.Check(infos[0], gc.Equals, `policy backup starting on dc01 as CORP\backupsvc`)
	c.Check(infos[1], gc.Matches, "domain corp.example.com, destination root .*")
}

func (s *runnerSuite) TestValidate(c *gc.C) {
	_, err := backup.NewRunner(backup.RunnerParams{})
	c.Check(err, jc.Satisfies, errors.IsNotValid)

	_, err = backup.NewRunner(backup.RunnerParams{
		Config: &config.RunConfig{EnableADMX: true},
		Logger: s.logger,
		Clock:  testclock.NewClock(fixedTime),
	})
	c.Check(err, gc.ErrorMatches, "nil Mirror with ADMX enabled not valid")

	_, err = backup.NewRunner(backup.RunnerParams{
		Config: &config.RunConfig{EnableGPO: true},
		Logger: s.logger,
		Clock:  testclock.NewClock(fixedTime),
	})
	c.Check(err, gc.ErrorMatches, "nil Exporter with GPO enabled not valid")
}
