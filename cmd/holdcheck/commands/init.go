package commands

import (
	"fmt"

	"github.com/dyluth/holdcheck/internal/printer"
	"github.com/dyluth/holdcheck/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter holdcheck.yml",
	Long: `Write a starter holdcheck.yml in the current directory.

The file documents every setting with its default value. holdcheck picks it
up automatically when --config is not given.

Use --force to replace an existing holdcheck.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Replace an existing holdcheck.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	path, err := scaffold.Initialize(".", forceInit)
	if err != nil {
		if scaffold.IsExistingError(err) {
			return printer.Error(
				"holdcheck.yml already exists",
				"Refusing to overwrite the existing configuration.",
				[]string{"Replace it:\n  holdcheck init --force"},
			)
		}
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(cmd.OutOrStdout(), path)
	return nil
}
