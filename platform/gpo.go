// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
)

// GPOExport serialises every Group Policy Object in the domain using
// the host's Group Policy management cmdlets. The cmdlet handles
// individual GPO failures and writes the backup manifest itself.
type GPOExport struct {
	Runner     CommandRunner
	Clock      clock.Clock
	RetryDelay time.Duration
}

// NewGPOExport returns a GPOExport with production defaults.
func NewGPOExport(runner CommandRunner) *GPOExport {
	return &GPOExport{
		Runner:     runner,
		Clock:      clock.WallClock,
		RetryDelay: invocationDelay,
	}
}

// ExportAll backs up all GPOs into dest. It fails when the Group
// Policy tooling is absent or the export exits non-zero.
func (g *GPOExport) ExportAll(dest string) error {
	command := fmt.Sprintf(
		"Import-Module GroupPolicy -ErrorAction Stop; Backup-GPO -All -Path %s",
		shellquote.Join(dest),
	)
	response, err := runCommand(g.Runner, g.Clock, g.RetryDelay, command)
	if err != nil {
		return errors.Annotate(err, "cannot run the Group Policy export")
	}
	if response.Code != 0 {
		return errors.Errorf("GPO export exited with code %d: %s",
			response.Code, strings.TrimSpace(string(response.Stderr)))
	}
	return nil
}
