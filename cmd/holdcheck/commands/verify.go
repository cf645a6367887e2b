package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/holdcheck/internal/config"
	"github.com/dyluth/holdcheck/internal/printer"
	"github.com/dyluth/holdcheck/internal/report"
	"github.com/dyluth/holdcheck/internal/source"
	"github.com/dyluth/holdcheck/internal/verify"
	"github.com/spf13/cobra"
)

var (
	verifyInput        string
	verifyConfigPath   string
	verifyChipUnit     int64
	verifyStrictRoster bool
	verifyPublish      bool
	verifyRedisURL     string
	verifyNamespace    string
	verifyVerbose      bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [PATH]",
	Short: "Verify a hand history log",
	Long: `Verify every hand of a hand history log and print a verdict.

The verdict line "Verify: OK (hands=N)" or "Verify: FAIL (hands=N)" is written
to stdout. Each violation is written to stderr as "Error: <message>", naming the
1-based hand and, for betting problems, the 1-based action.

Exits non-zero when any violation is found or the input cannot be read.

Input:
  PATH or --input   a .jsonl file, optionally .zst or .gz compressed
  -                 read from stdin

Configuration (lowest to highest precedence):
  holdcheck.yml, .env, HOLDCHECK_* environment variables, flags

Examples:
  # Verify a compressed log
  holdcheck verify hands.jsonl.zst

  # Treat players joining mid-stream as violations
  holdcheck verify --strict-roster hands.jsonl

  # Store the report for later inspection
  holdcheck verify --publish --redis-url=redis://localhost:6379 hands.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "Hand history file, or - for stdin")
	verifyCmd.Flags().StringVarP(&verifyConfigPath, "config", "c", "", "Path to holdcheck.yml (default: ./holdcheck.yml if present)")
	verifyCmd.Flags().Int64Var(&verifyChipUnit, "chip-unit", config.DefaultChipUnit, "Smallest chip denomination")
	verifyCmd.Flags().BoolVar(&verifyStrictRoster, "strict-roster", false, "Report players joining after the first hand")
	verifyCmd.Flags().BoolVar(&verifyPublish, "publish", false, "Store the verification report in Redis")
	verifyCmd.Flags().StringVar(&verifyRedisURL, "redis-url", "", "Redis URL for --publish (overrides redis.url)")
	verifyCmd.Flags().StringVarP(&verifyNamespace, "namespace", "n", "", "Report namespace (overrides redis.namespace)")
	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false, "Log per-hand progress to stderr")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// stdout carries only the verdict line
	printer.SetOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger := newLogger(cmd, verifyVerbose)

	input, err := inputArg(args, verifyInput, "verify")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(verifyConfigPath)
	if err != nil {
		return err
	}
	if err := applyVerifyFlags(cmd, cfg); err != nil {
		return err
	}

	text, err := source.Load(input, source.Options{
		MaxBytes: cfg.MaxDecompressedBytes(),
		Stdin:    cmd.InOrStdin(),
	})
	if err != nil {
		return sourceError(input, err)
	}
	logger.Printf("[Source] Read %d bytes from %s", len(text), input)

	v := verify.New(verify.Options{
		ChipUnit:     cfg.ChipUnit(),
		StrictRoster: cfg.Verify.StrictRoster,
		Logger:       logger,
	})
	res := v.Text(text)

	for _, d := range res.Diagnostics {
		printer.Diagnostic(cmd.ErrOrStderr(), d.String())
	}
	printer.Verdict(cmd.OutOrStdout(), res.OK(), res.Hands)

	if verifyPublish {
		if err := publishReport(ctx, cfg, input, res, logger.Printf); err != nil {
			return err
		}
	}

	if !res.OK() {
		return ErrFailed
	}
	return nil
}

// applyVerifyFlags lets explicitly set flags override the resolved configuration.
func applyVerifyFlags(cmd *cobra.Command, cfg *config.HoldcheckConfig) error {
	flags := cmd.Flags()
	if flags.Changed("chip-unit") {
		if verifyChipUnit <= 0 {
			return printer.Error(
				"invalid chip unit",
				fmt.Sprintf("--chip-unit must be > 0, got %d", verifyChipUnit),
				[]string{"Use the smallest chip denomination in play, e.g. --chip-unit=25"},
			)
		}
		unit := verifyChipUnit
		cfg.Verify.ChipUnit = &unit
	}
	if flags.Changed("strict-roster") {
		cfg.Verify.StrictRoster = verifyStrictRoster
	}
	if flags.Changed("redis-url") {
		cfg.Redis.URL = verifyRedisURL
	}
	if flags.Changed("namespace") {
		cfg.Redis.Namespace = verifyNamespace
		if err := cfg.Validate(); err != nil {
			return printer.Error("invalid namespace", err.Error(), nil)
		}
	}
	return nil
}

func publishReport(ctx context.Context, cfg *config.HoldcheckConfig, input string, res verify.Result, logf func(string, ...any)) error {
	if cfg.Redis.URL == "" {
		return printer.Error(
			"redis url required",
			"--publish needs a Redis server to store the report in.",
			[]string{
				"Pass it on the command line:\n  holdcheck verify --publish --redis-url=redis://localhost:6379 hands.jsonl",
				"Or set redis.url in holdcheck.yml or HOLDCHECK_REDIS_URL",
			},
		)
	}

	store, err := report.Open(cfg.Redis.URL, cfg.Redis.Namespace)
	if err != nil {
		return printer.Error("invalid redis url", err.Error(), nil)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis: %v", err),
			map[string]string{"url": cfg.Redis.URL},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	r := report.New(input, cfg.ChipUnit(), res, time.Now())
	if err := store.Save(ctx, r); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	logf("[Reports] Saved report %s in namespace %s", r.ID, store.Namespace())
	printer.Success("Report %s saved to namespace '%s'\n", r.ID, store.Namespace())
	return nil
}
