// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config resolves the parameters for a single backup run from
// the command line and the host environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
)

// ErrDirectoryUnavailable is returned when the domain name cannot be
// resolved because the directory service cannot be queried. The run
// cannot proceed without it.
const ErrDirectoryUnavailable = errors.ConstError("directory service unavailable")

// DomainResolver resolves the DNS name of the domain this machine is
// joined to.
type DomainResolver interface {
	DNSRoot() (string, error)
}

// RunConfig carries the resolved parameters for one backup run. It is
// immutable once Resolve returns it.
type RunConfig struct {
	// DestinationRoot is the existing directory the timestamped
	// backup folders are created under.
	DestinationRoot string

	// EnableADMX and EnableGPO select which backup tasks run.
	EnableADMX bool
	EnableGPO  bool

	// DryRun reports what would be done without creating folders or
	// invoking any copy or export tooling.
	DryRun bool

	// Verbose echoes DEBUG and FATAL lines to the console.
	Verbose bool

	// DomainName is the DNS name of the machine's domain.
	DomainName string

	// Timestamp is the wall-clock start of the run. All derived
	// destination paths are computed from it.
	Timestamp time.Time
}

// ResolveParams holds the arguments to Resolve.
type ResolveParams struct {
	DestinationRoot string
	EnableADMX      bool
	EnableGPO       bool
	DryRun          bool
	Verbose         bool
	Domain          DomainResolver
	Clock           clock.Clock
}

// Validate checks that the params are complete.
func (p ResolveParams) Validate() error {
	if p.DestinationRoot == "" {
		return errors.NotValidf("empty destination root")
	}
	if p.Domain == nil {
		return errors.NotValidf("nil Domain resolver")
	}
	if p.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Resolve validates the destination root, queries the directory
// service for the domain name and returns the immutable run config.
// The destination root must already exist; nothing is created here.
func Resolve(p ResolveParams) (*RunConfig, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	info, err := os.Stat(p.DestinationRoot)
	if err != nil || !info.IsDir() {
		return nil, errors.NotValidf("destination root %q", p.DestinationRoot)
	}
	domain, err := p.Domain.DNSRoot()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &RunConfig{
		DestinationRoot: p.DestinationRoot,
		EnableADMX:      p.EnableADMX,
		EnableGPO:       p.EnableGPO,
		DryRun:          p.DryRun,
		Verbose:         p.Verbose,
		DomainName:      domain,
		Timestamp:       p.Clock.Now(),
	}, nil
}

// Requested reports whether at least one backup task was asked for.
func (c *RunConfig) Requested() bool {
	return c.EnableADMX || c.EnableGPO
}

// Stamp returns the timestamp fragment used in destination folder
// names, e.g. "2024-02-25_1030".
func (c *RunConfig) Stamp() string {
	return c.Timestamp.Format("2006-01-02_1504")
}

// ADMXRoot returns the destination folder for this run's ADMX backup.
func (c *RunConfig) ADMXRoot() string {
	return filepath.Join(c.DestinationRoot, "ADMX-"+c.Stamp())
}

// GPORoot returns the destination folder for this run's GPO backup.
func (c *RunConfig) GPORoot() string {
	return filepath.Join(c.DestinationRoot, "GPOBackup-"+c.Stamp())
}
