// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// policy-backup backs up domain policy artifacts: it mirrors ADMX
// policy definitions and exports all Group Policy Objects to
// timestamped folders under a destination root.
package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"
)

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(newBackupCommand(), ctx, os.Args[1:]))
}
