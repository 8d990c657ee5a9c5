package main

import (
	_ "embed"
	"strings"

	"github.com/ChristianHoesel/export-google-files/cmd"
)

//go:embed VERSION
var embeddedVersion string

func init() {
	if v := strings.TrimSpace(embeddedVersion); v != "" && cmd.Version == "dev" {
		cmd.Version = v
	}
	// The cobra command was built before this init ran.
	cmd.ApplyVersion()
}
