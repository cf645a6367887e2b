// Package watch follows verification reports as they are published.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/holdcheck/internal/report"
	"github.com/fatih/color"
)

// OutputFormat specifies how streamed reports are written.
type OutputFormat string

const (
	// OutputFormatDefault writes one human-readable line per report
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON writes each report as a line of JSON
	OutputFormatJSON OutputFormat = "json"
)

// StreamReports writes every report published in the store's namespace until ctx is
// cancelled. Reports rejected by filters are skipped. Returns nil on cancellation.
func StreamReports(ctx context.Context, store *report.Store, filters *report.FilterCriteria, format OutputFormat, w io.Writer) error {
	if format != OutputFormatDefault && format != OutputFormatJSON {
		return fmt.Errorf("unknown output format: %s", format)
	}

	sub, err := store.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	if format == OutputFormatDefault {
		fmt.Fprintf(w, "Watching reports in namespace '%s'...\n", store.Namespace())
	}

	events, errs := sub.Events(), sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(w, "⚠️  %v\n", err)
		case r, ok := <-events:
			if !ok {
				return nil
			}
			if filters != nil && !filters.Matches(r) {
				continue
			}
			if err := writeReport(w, r, format); err != nil {
				return err
			}
		}
	}
}

func writeReport(w io.Writer, r *report.Report, format OutputFormat) error {
	if format == OutputFormatJSON {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	_, err := fmt.Fprintln(w, FormatLine(r))
	return err
}

// FormatLine renders a report as "[15:04:05] ✓ OK abcdef12 hands=N diagnostics=N input".
func FormatLine(r *report.Report) string {
	ts := time.UnixMilli(r.CreatedAtMs).Format("15:04:05")
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}

	status := color.GreenString("✓ OK")
	if !r.OK {
		status = color.RedString("✗ FAIL")
	}
	return fmt.Sprintf("[%s] %s %s hands=%d diagnostics=%d %s", ts, status, id, r.Hands, r.DiagnosticCount, r.Input)
}
