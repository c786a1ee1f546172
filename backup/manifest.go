// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

const manifestFilename = "manifest.xml"

// ManifestEntry identifies one exported GPO: its display name and the
// identifier of its backup instance.
type ManifestEntry struct {
	Name string
	ID   string
}

// The export tool writes a Backups document with one BackupInst node
// per exported GPO. Values are CDATA text.
type manifestDocument struct {
	XMLName   xml.Name           `xml:"Backups"`
	Instances []manifestInstance `xml:"BackupInst"`
}

type manifestInstance struct {
	DisplayName string `xml:"GPODisplayName"`
	ID          string `xml:"ID"`
}

// ReadManifest parses the backup manifest the export tool leaves in
// dir and returns one entry per exported GPO.
func ReadManifest(dir string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFilename))
	if err != nil {
		return nil, errors.Trace(err)
	}
	var document manifestDocument
	if err := xml.Unmarshal(data, &document); err != nil {
		return nil, errors.Annotate(err, "parsing GPO backup manifest")
	}
	entries := make([]ManifestEntry, len(document.Instances))
	for i, instance := range document.Instances {
		entries[i] = ManifestEntry{
			Name: instance.DisplayName,
			ID:   instance.ID,
		}
	}
	return entries, nil
}
