package main

import (
	_ "embed"
	"strings"

	"github.com/clinicpulse/clinicpulse/internal/cli"
	"github.com/clinicpulse/clinicpulse/internal/logging"
)

//go:embed VERSION
var versionFile string

var executeCLI = cli.Execute

func run() error {
	return executeCLI(strings.TrimSpace(versionFile))
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("clinicpulse execution failed", "error", err)
	}
}
