package main

import (
	"os"

	"github.com/dyluth/holdcheck/cmd/holdcheck/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors and verdicts are printed by the commands themselves
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
