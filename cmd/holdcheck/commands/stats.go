package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dyluth/holdcheck/internal/printer"
	"github.com/dyluth/holdcheck/internal/source"
	"github.com/dyluth/holdcheck/internal/stats"
	"github.com/spf13/cobra"
)

var (
	statsInput        string
	statsConfigPath   string
	statsOutputFormat string
	statsVerbose      bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [PATH]",
	Short: "Summarise hand history logs",
	Long: `Count hands and winners across one or more hand history logs.

PATH may be a file, - for stdin, or a directory. Directories are walked
recursively for *.jsonl, *.jsonl.zst and *.jsonl.gz files.

Records that cannot be decoded are skipped and counted. An unterminated
final line that is not valid JSON is treated as an interrupted write and
discarded. Hands whose net_result does not sum to zero are reported as
"Error:" lines and make the command exit non-zero.

Output Formats:
  json  - hands and wins per player as JSON (default)
  table - every counter in a table

Examples:
  # Summarise a day of logs
  holdcheck stats logs/2025-01-02/

  # Human-readable table
  holdcheck stats --output=table hands.jsonl.zst`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "File, directory, or - for stdin")
	statsCmd.Flags().StringVarP(&statsConfigPath, "config", "c", "", "Path to holdcheck.yml (default: ./holdcheck.yml if present)")
	statsCmd.Flags().StringVarP(&statsOutputFormat, "output", "o", "json", "Output format: json or table")
	statsCmd.Flags().BoolVarP(&statsVerbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	printer.SetOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger := newLogger(cmd, statsVerbose)

	format := stats.OutputFormat(statsOutputFormat)
	if format != stats.OutputFormatJSON && format != stats.OutputFormatTable {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", statsOutputFormat),
			[]string{"Valid formats: json, table"},
		)
	}

	input, err := inputArg(args, statsInput, "stats")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(statsConfigPath)
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(input); statErr == nil && info.IsDir() {
		printer.Step("Scanning %s for %s files\n", input, strings.Join(stats.Extensions, ", "))
	}

	summary, err := stats.Collect(input, source.Options{
		MaxBytes: cfg.MaxDecompressedBytes(),
		Stdin:    cmd.InOrStdin(),
	})
	if errors.Is(err, stats.ErrNoValidRecords) {
		printer.Diagnostic(cmd.ErrOrStderr(), "Invalid record")
		return ErrFailed
	}
	if err != nil {
		return sourceError(input, err)
	}
	logger.Printf("[Source] Read %d file(s) from %s", summary.Files, input)

	for _, problem := range summary.Problems {
		printer.Diagnostic(cmd.ErrOrStderr(), problem)
	}
	if summary.Corrupted > 0 {
		printer.Warning("Skipped %d corrupted record(s)\n", summary.Corrupted)
	}
	if summary.Incomplete > 0 {
		printer.Warning("Discarded %d incomplete final line(s)\n", summary.Incomplete)
	}

	if err := stats.Write(cmd.OutOrStdout(), summary, format); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}

	if !summary.OK() {
		return ErrFailed
	}
	return nil
}
