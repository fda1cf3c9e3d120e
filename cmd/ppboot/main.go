package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pricepulse/ppboot/cmd/ppboot/cmd"
	"github.com/pricepulse/ppboot/internal/config"
	"github.com/pricepulse/ppboot/internal/supervisor"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		os.Exit(config.ExitOK)
	}

	// Child exit codes pass through silently; the child already reported
	// its own failure on stderr.
	var exitErr *supervisor.ExitStatusError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	// One diagnostic line per fatal condition
	fmt.Fprintf(os.Stderr, "ppboot: %v\n", err)

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		os.Exit(config.ExitConfig)
	}

	var launchErr *supervisor.LaunchError
	if errors.As(err, &launchErr) {
		os.Exit(config.ExitLaunch)
	}

	os.Exit(1)
}
