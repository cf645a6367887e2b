package commands

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/dyluth/holdcheck/internal/config"
	"github.com/dyluth/holdcheck/internal/printer"
	"github.com/spf13/cobra"
)

// ErrFailed is returned when a command ran to completion but found problems. Its output
// has already been written, so main only needs to exit non-zero.
var ErrFailed = errors.New("verification failed")

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "holdcheck",
	Short: "holdcheck - No-Limit Hold'em hand history verifier",
	Long: `holdcheck verifies No-Limit Hold'em hand history logs written as
newline-delimited JSON, one hand per line.

Every hand is checked for legal bet sizing, dealing order, chip conservation
and stack continuity across hands. Inputs may be plain, zstd or gzip compressed.

Verification reports can be stored in Redis and inspected later with
"holdcheck reports".`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command with colored errors printed by the printer package.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// newLogger returns the component logger: stderr when verbose, otherwise discarded.
func newLogger(cmd *cobra.Command, verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
}

// inputArg picks the input from the positional argument or --input.
func inputArg(args []string, flag, command string) (string, error) {
	switch {
	case len(args) > 0 && flag != "" && args[0] != flag:
		return "", printer.Error(
			"conflicting inputs",
			fmt.Sprintf("Both '%s' and --input=%s were given.", args[0], flag),
			[]string{"Pass the input once, either as an argument or with --input"},
		)
	case len(args) > 0:
		return args[0], nil
	case flag != "":
		return flag, nil
	}

	return "", printer.Error(
		"input required",
		"No hand history input was given.",
		[]string{
			fmt.Sprintf("Pass a file:\n  holdcheck %s hands.jsonl", command),
			fmt.Sprintf("Read from stdin:\n  cat hands.jsonl | holdcheck %s -", command),
		},
	)
}

// loadConfig resolves holdcheck.yml, .env and HOLDCHECK_* variables.
func loadConfig(path string) (*config.HoldcheckConfig, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{"Check holdcheck.yml and HOLDCHECK_* environment variables"},
		)
	}
	return cfg, nil
}

// sourceError explains a fatal input failure.
func sourceError(input string, err error) error {
	return printer.ErrorWithContext(
		"failed to read input",
		err.Error(),
		map[string]string{"input": input},
		[]string{
			"Inputs must be UTF-8 NDJSON, optionally zstd or gzip compressed",
			"Raise input.max_decompressed_bytes for very large files",
		},
	)
}
