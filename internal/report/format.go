package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// FormatTable writes reports as a table with columns ID, STATUS, HANDS, DIAGNOSTICS,
// INPUT and AGE.
func FormatTable(w io.Writer, reports []*Report, namespace string) error {
	if len(reports) == 0 {
		fmt.Fprintf(w, "No reports found in namespace '%s'\n", namespace)
		return nil
	}

	fmt.Fprintf(w, "Reports in namespace '%s':\n\n", namespace)

	table := tablewriter.NewWriter(w)
	table.Header("ID", "STATUS", "HANDS", "DIAGNOSTICS", "INPUT", "AGE")
	for _, r := range reports {
		row := []string{
			formatID(r.ID),
			formatStatus(r.OK),
			strconv.Itoa(r.Hands),
			strconv.Itoa(r.DiagnosticCount),
			formatInput(r.Input),
			formatTimestamp(r.CreatedAtMs),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to build table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	noun := "report"
	if len(reports) != 1 {
		noun = "reports"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(reports), noun)
	return nil
}

// FormatJSONL writes reports as line-delimited JSON, one report per line.
func FormatJSONL(w io.Writer, reports []*Report) error {
	for _, r := range reports {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes a single report as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatID truncates a report ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatStatus(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}

// formatInput shows the file name only, truncated to 40 characters.
func formatInput(input string) string {
	if input == "" {
		return "-"
	}
	name := filepath.Base(input)
	if len(name) > 40 {
		return name[:37] + "..."
	}
	return name
}

// formatTimestamp renders a Unix millisecond timestamp as a relative age like "2m ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
