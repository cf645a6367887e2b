package stats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OutputFormat selects how a Summary is rendered.
type OutputFormat string

const (
	// OutputFormatJSON prints the summary as pretty JSON
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatTable prints a two-column table with grouped thousands
	OutputFormatTable OutputFormat = "table"
)

// Write renders s in the requested format.
func Write(w io.Writer, s *Summary, format OutputFormat) error {
	switch format {
	case OutputFormatJSON, "":
		return FormatJSON(w, s)
	case OutputFormatTable:
		return FormatTable(w, s)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatJSON writes the hand count and winners as pretty-printed JSON.
func FormatJSON(w io.Writer, s *Summary) error {
	out := struct {
		Hands   int            `json:"hands"`
		Winners map[string]int `json:"winners"`
	}{Hands: s.Hands, Winners: s.Winners}
	if out.Winners == nil {
		out.Winners = map[string]int{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatTable writes every counter of s, one per row.
func FormatTable(w io.Writer, s *Summary) error {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(w)
	table.Header("METRIC", "VALUE")

	rows := [][]string{
		{"Files", p.Sprintf("%d", s.Files)},
		{"Hands", p.Sprintf("%d", s.Hands)},
		{"Corrupted records", p.Sprintf("%d", s.Corrupted)},
		{"Incomplete final lines", p.Sprintf("%d", s.Incomplete)},
	}
	for _, id := range s.WinnerIDs() {
		rows = append(rows, []string{"Wins " + id, p.Sprintf("%d", s.Winners[id])})
	}

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to build table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
