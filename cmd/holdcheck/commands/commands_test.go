package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var fullBoard = []map[string]string{
	{"rank": "Two", "suit": "Clubs"},
	{"rank": "Seven", "suit": "Diamonds"},
	{"rank": "Nine", "suit": "Hearts"},
	{"rank": "Jack", "suit": "Spades"},
	{"rank": "King", "suit": "Clubs"},
}

// hand builds a heads-up record in which p0 wins 100 chips from p1.
func hand(n int, p0, p1 int64) map[string]any {
	return map[string]any{
		"hand_id": fmt.Sprintf("20250102-%06d", n),
		"seed":    n,
		"level":   1,
		"blinds":  map[string]int64{"sb": 50, "bb": 100},
		"button":  "p0",
		"players": []map[string]any{
			{"id": "p0", "stack_start": p0},
			{"id": "p1", "stack_start": p1},
		},
		"actions": []map[string]any{
			{"player_id": "p0", "street": "Preflop", "action": map[string]int64{"Bet": 100}},
			{"player_id": "p1", "street": "Preflop", "action": "Call"},
			{"player_id": "p0", "street": "Flop", "action": "Check"},
			{"player_id": "p1", "street": "Flop", "action": "Check"},
		},
		"board":      fullBoard,
		"result":     "p0",
		"net_result": map[string]int64{"p0": 100, "p1": -100},
		"end_reason": "showdown",
		"meta": map[string]any{
			"small_blind":    "p0",
			"big_blind":      "p1",
			"deal_sequence":  []string{"p0", "p1", "p0", "p1"},
			"burn_positions": []int{5, 9, 11},
		},
	}
}

func ndjson(t *testing.T, records ...map[string]any) string {
	t.Helper()
	var b strings.Builder
	for _, r := range records {
		line, err := json.Marshal(r)
		require.NoError(t, err)
		b.Write(line)
		b.WriteString("\n")
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores every flag to its default so package-level flag variables do
// not leak between executions.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate runs the test in an empty directory with no HOLDCHECK_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "HOLDCHECK_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

// execute runs the CLI with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := Execute()
	return stdout.String(), stderr.String(), err
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
