// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/policybackup/provision"
)

// GPOExporter serialises every Group Policy Object in the domain into
// a destination folder, writing the backup manifest alongside.
type GPOExporter interface {
	ExportAll(dest string) error
}

// GPOBackup exports all GPOs into a destination root and reports what
// the manifest says was exported.
type GPOBackup struct {
	Exporter GPOExporter
	Logger   loggo.Logger
	DryRun   bool
}

// NewGPOBackup returns a GPOBackup using the given exporter.
func NewGPOBackup(exporter GPOExporter, logger loggo.Logger, dryRun bool) *GPOBackup {
	return &GPOBackup{
		Exporter: exporter,
		Logger:   logger,
		DryRun:   dryRun,
	}
}

// Run provisions destRoot and exports all GPOs into it. An export
// failure is fatal for this task only; the caller decides what to do
// with the error.
func (t *GPOBackup) Run(destRoot string) error {
	if t.DryRun {
		t.Logger.Infof("dry-run: would export all GPOs to %s", destRoot)
		return nil
	}
	if err := provision.EnsureFolders(destRoot); err != nil {
		return errors.Trace(err)
	}
	t.Logger.Infof("exporting all group policy objects to %s", destRoot)
	if err := t.Exporter.ExportAll(destRoot); err != nil {
		return errors.Trace(err)
	}
	entries, err := ReadManifest(destRoot)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			t.Logger.Warningf("GPO export wrote no manifest under %s", destRoot)
			return nil
		}
		t.Logger.Warningf("cannot read GPO backup manifest: %v", err)
		return nil
	}
	t.Logger.Infof("exported %d GPOs; manifest at %s", len(entries), filepath.Join(destRoot, manifestFilename))
	return nil
}
