package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/holdcheck/internal/printer"
	"github.com/dyluth/holdcheck/internal/report"
	"github.com/dyluth/holdcheck/internal/timespec"
	"github.com/dyluth/holdcheck/internal/watch"
	"github.com/spf13/cobra"
)

var (
	reportsConfigPath   string
	reportsRedisURL     string
	reportsNamespace    string
	reportsOutputFormat string
	reportsSince        string
	reportsUntil        string
	reportsStatus       string
	reportsInput        string
	reportsWatch        bool
	reportsVerbose      bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports [REPORT_ID]",
	Short: "Inspect stored verification reports",
	Long: `Inspect reports stored by "holdcheck verify --publish".

List Mode (no REPORT_ID):
  Displays reports matching filters as a table or JSONL stream, oldest first.

Get Mode (with REPORT_ID):
  Displays one complete report as pretty-printed JSON.
  Supports short IDs (e.g., "abc123" instead of full UUID).

Watch Mode (--watch):
  Prints each report as it is published until interrupted.

Output Formats:
  default - Human-readable table (list) or one line per report (watch)
  jsonl   - Line-delimited JSON, one report per line

Filters (list and watch modes):
  --since   - Show reports created after this time
  --until   - Show reports created before this time
  --status  - ok or fail
  --input   - Input path contains this text (case-insensitive)

Examples:
  # Failed runs in the last day
  holdcheck reports --status=fail --since=1d

  # Pipe to jq
  holdcheck reports --output=jsonl | jq '.diagnostic_count'

  # Show one report
  holdcheck reports 3f2a9c`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReports,
}

func init() {
	reportsCmd.Flags().StringVarP(&reportsConfigPath, "config", "c", "", "Path to holdcheck.yml (default: ./holdcheck.yml if present)")
	reportsCmd.Flags().StringVar(&reportsRedisURL, "redis-url", "", "Redis URL (overrides redis.url)")
	reportsCmd.Flags().StringVarP(&reportsNamespace, "namespace", "n", "", "Report namespace (overrides redis.namespace)")
	reportsCmd.Flags().StringVarP(&reportsOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")

	reportsCmd.Flags().StringVar(&reportsSince, "since", "", "Show reports after time (duration, date or RFC3339)")
	reportsCmd.Flags().StringVar(&reportsUntil, "until", "", "Show reports before time (duration, date or RFC3339)")
	reportsCmd.Flags().StringVar(&reportsStatus, "status", "", "Filter by verdict: ok or fail")
	reportsCmd.Flags().StringVar(&reportsInput, "input", "", "Filter by input path substring")

	reportsCmd.Flags().BoolVarP(&reportsWatch, "watch", "w", false, "Follow newly published reports")
	reportsCmd.Flags().BoolVarP(&reportsVerbose, "verbose", "v", false, "Log skipped reports to stderr")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd, reportsVerbose)

	isGetMode := len(args) > 0

	var outputFormat report.OutputFormat
	switch reportsOutputFormat {
	case "default":
		outputFormat = report.OutputFormatDefault
	case "jsonl":
		outputFormat = report.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", reportsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	status := report.Status(reportsStatus)
	if status != report.StatusAny && status != report.StatusOK && status != report.StatusFail {
		return printer.Error(
			"invalid status filter",
			fmt.Sprintf("Unknown status: %s", reportsStatus),
			[]string{"Valid statuses: ok, fail"},
		)
	}

	if isGetMode && reportsWatch {
		return printer.Error(
			"conflicting modes",
			"--watch cannot be combined with a REPORT_ID.",
			[]string{"Follow new reports:\n  holdcheck reports --watch"},
		)
	}

	store, err := openReportStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if isGetMode {
		return getReport(ctx, cmd, store, args[0])
	}

	sinceMS, untilMS, err := timespec.ParseRange(reportsSince, reportsUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration like '1h30m' or '2d', a date like '2025-10-29', or RFC3339 like '2025-10-29T13:00:00Z'"},
		)
	}

	filters := &report.FilterCriteria{
		SinceTimestampMs: sinceMS,
		UntilTimestampMs: untilMS,
		Status:           status,
		InputContains:    reportsInput,
	}

	if reportsWatch {
		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		format := watch.OutputFormatDefault
		if outputFormat == report.OutputFormatJSONL {
			format = watch.OutputFormatJSON
		}
		return watch.StreamReports(watchCtx, store, filters, format, cmd.OutOrStdout())
	}

	if err := report.List(ctx, store, outputFormat, filters, logger, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return nil
}

func openReportStore(ctx context.Context) (*report.Store, error) {
	cfg, err := loadConfig(reportsConfigPath)
	if err != nil {
		return nil, err
	}
	if reportsRedisURL != "" {
		cfg.Redis.URL = reportsRedisURL
	}
	if reportsNamespace != "" {
		cfg.Redis.Namespace = reportsNamespace
		if err := cfg.Validate(); err != nil {
			return nil, printer.Error("invalid namespace", err.Error(), nil)
		}
	}
	if cfg.Redis.URL == "" {
		return nil, printer.Error(
			"redis url required",
			"Reports are stored in Redis but no server is configured.",
			[]string{
				"Pass it on the command line:\n  holdcheck reports --redis-url=redis://localhost:6379",
				"Or set redis.url in holdcheck.yml or HOLDCHECK_REDIS_URL",
			},
		)
	}

	store, err := report.Open(cfg.Redis.URL, cfg.Redis.Namespace)
	if err != nil {
		return nil, printer.Error("invalid redis url", err.Error(), nil)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis: %v", err),
			map[string]string{"url": cfg.Redis.URL},
			[]string{"Check that Redis is running and reachable"},
		)
	}
	return store, nil
}

func getReport(ctx context.Context, cmd *cobra.Command, store *report.Store, shortID string) error {
	fullID, err := report.ResolveID(ctx, store, shortID)
	if err != nil {
		if report.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("report with ID '%s' not found", shortID),
				fmt.Sprintf("No report with that ID exists in namespace '%s'.", store.Namespace()),
				[]string{"List all reports:\n  holdcheck reports"},
			)
		}
		if report.IsAmbiguousError(err) {
			ambigErr := err.(*report.AmbiguousError)
			fmt.Fprintln(cmd.ErrOrStderr(), report.FormatAmbiguousError(ambigErr))
			return fmt.Errorf("ambiguous short ID")
		}
		return printer.Error("invalid report ID", err.Error(), nil)
	}

	r, err := store.Get(ctx, fullID)
	if err != nil {
		if report.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("report with ID '%s' not found", fullID),
				"The report was resolved but could not be fetched.",
				[]string{"This might indicate a race condition. Try again."},
			)
		}
		return fmt.Errorf("failed to get report: %w", err)
	}

	if r.Truncated() {
		printer.Warning("Showing %d of %d diagnostics\n", len(r.Diagnostics), r.DiagnosticCount)
	}
	return report.FormatSingleJSON(cmd.OutOrStdout(), r)
}
