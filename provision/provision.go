// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package provision creates destination and log directories on demand.
package provision

import (
	"os"

	"github.com/juju/errors"
)

// EnsureFolders creates any of the given directories that do not
// already exist, including missing parents. Existing directories are
// left untouched, so calling it again with the same paths is a no-op.
func EnsureFolders(paths ...string) error {
	for _, path := range paths {
		if err := os.MkdirAll(path, 0755); err != nil {
			return errors.Annotatef(err, "creating %q", path)
		}
	}
	return nil
}
