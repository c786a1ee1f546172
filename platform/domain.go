// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package platform

import (
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/juju/policybackup/config"
)

const domainQuery = "Import-Module ActiveDirectory -ErrorAction Stop; (Get-ADDomain).DNSRoot"

// DomainResolver queries the directory service for the DNS name of the
// machine's domain. Any failure, including the Active Directory module
// being absent, is reported as config.ErrDirectoryUnavailable.
type DomainResolver struct {
	Runner     CommandRunner
	Clock      clock.Clock
	RetryDelay time.Duration
}

// NewDomainResolver returns a DomainResolver with production defaults.
func NewDomainResolver(runner CommandRunner) *DomainResolver {
	return &DomainResolver{
		Runner:     runner,
		Clock:      clock.WallClock,
		RetryDelay: invocationDelay,
	}
}

// DNSRoot implements config.DomainResolver.
func (d *DomainResolver) DNSRoot() (string, error) {
	response, err := runCommand(d.Runner, d.Clock, d.RetryDelay, domainQuery)
	if err != nil {
		return "", errors.WithType(err, config.ErrDirectoryUnavailable)
	}
	if response.Code != 0 {
		return "", errors.WithType(
			errors.Errorf("domain query exited with code %d: %s",
				response.Code, strings.TrimSpace(string(response.Stderr))),
			config.ErrDirectoryUnavailable)
	}
	name := strings.TrimSpace(string(response.Stdout))
	if name == "" {
		return "", errors.WithType(
			errors.New("domain query returned no output"),
			config.ErrDirectoryUnavailable)
	}
	return name, nil
}
