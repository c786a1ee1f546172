// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package backup holds the two backup tasks and the coordinator that
// sequences one run.
package backup

import (
	"path/filepath"

	"github.com/juju/loggo/v2"

	"github.com/juju/policybackup/provision"
)

// Well-known policy definition locations on a domain controller.
var (
	defaultSysvolRoot       = `C:\Windows\SYSVOL`
	defaultLocalDefinitions = `C:\Windows\PolicyDefinitions`
)

// MirrorCopier replicates a source tree to a destination, copying only
// changed or missing items.
type MirrorCopier interface {
	Mirror(source, dest string) error
}

// ADMXBackup mirrors the domain's sysvol policy definitions and the
// local policy definitions into two folders under a destination root.
type ADMXBackup struct {
	// Domain is the DNS name of the domain whose sysvol is copied.
	Domain string

	// SysvolRoot and LocalDefinitions locate the two sources.
	SysvolRoot       string
	LocalDefinitions string

	Copier MirrorCopier
	Logger loggo.Logger
	DryRun bool
}

// NewADMXBackup returns an ADMXBackup against the well-known Windows
// source locations.
func NewADMXBackup(domain string, copier MirrorCopier, logger loggo.Logger, dryRun bool) *ADMXBackup {
	return &ADMXBackup{
		Domain:           domain,
		SysvolRoot:       defaultSysvolRoot,
		LocalDefinitions: defaultLocalDefinitions,
		Copier:           copier,
		Logger:           logger,
		DryRun:           dryRun,
	}
}

// Run copies both policy definition trees under destRoot. A failed
// copy of one tree is logged and does not prevent the other; the run
// as a whole is never aborted by a copy failure.
func (t *ADMXBackup) Run(destRoot string) error {
	pairs := []struct {
		what   string
		source string
		dest   string
	}{{
		what:   "sysvol",
		source: filepath.Join(t.SysvolRoot, "sysvol", t.Domain, "Policies", "PolicyDefinitions"),
		dest:   filepath.Join(destRoot, "SYSVOL-ADMXBackup"),
	}, {
		what:   "local",
		source: t.LocalDefinitions,
		dest:   filepath.Join(destRoot, "Local-ADMXBackup"),
	}}
	for _, pair := range pairs {
		t.Logger.Infof("mirroring %s policy definitions from %s to %s", pair.what, pair.source, pair.dest)
		if t.DryRun {
			t.Logger.Infof("dry-run: would mirror %s to %s", pair.source, pair.dest)
			continue
		}
		if err := provision.EnsureFolders(pair.dest); err != nil {
			t.Logger.Errorf("cannot provision %s destination: %v", pair.what, err)
			continue
		}
		if err := t.Copier.Mirror(pair.source, pair.dest); err != nil {
			t.Logger.Errorf("%s policy definitions copy failed: %v", pair.what, err)
			continue
		}
	}
	t.Logger.Infof("ADMX backup finished under %s", destRoot)
	return nil
}
