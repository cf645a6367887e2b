package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
)

// OutputFormat specifies how to format the report list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with one row per report
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete reports as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Status filters reports by verdict.
type Status string

const (
	StatusAny  Status = ""
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
)

// FilterCriteria defines filtering options for listing reports.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	Status           Status // Verdict filter, empty = no filter
	InputContains    string // Substring of the input path, empty = no filter
}

// Matches returns true if the report matches all filter criteria.
func (fc *FilterCriteria) Matches(r *Report) bool {
	if fc.SinceTimestampMs > 0 && r.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && r.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}
	switch fc.Status {
	case StatusOK:
		if !r.OK {
			return false
		}
	case StatusFail:
		if r.OK {
			return false
		}
	}
	if fc.InputContains != "" && !containsFold(r.Input, fc.InputContains) {
		return false
	}
	return true
}

// Fetch returns the stored reports matching filters, oldest first.
// Index entries whose report is missing or malformed are skipped and logged.
func Fetch(ctx context.Context, store *Store, filters *FilterCriteria, logger *log.Logger) ([]*Report, error) {
	if filters == nil {
		filters = &FilterCriteria{}
	}

	ids, err := store.IDsBetween(ctx, filters.SinceTimestampMs, filters.UntilTimestampMs)
	if err != nil {
		return nil, err
	}

	var reports []*Report
	for _, id := range ids {
		r, err := store.Get(ctx, id)
		if err != nil {
			if logger != nil {
				logger.Printf("[Reports] Skipping report %s: %v", id, err)
			}
			continue
		}
		if !filters.Matches(r) {
			continue
		}
		reports = append(reports, r)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAtMs < reports[j].CreatedAtMs
	})
	return reports, nil
}

// List fetches reports matching filters and writes them in the requested format.
func List(ctx context.Context, store *Store, format OutputFormat, filters *FilterCriteria, logger *log.Logger, w io.Writer) error {
	reports, err := Fetch(ctx, store, filters, logger)
	if err != nil {
		return err
	}

	switch format {
	case OutputFormatDefault:
		if err := FormatTable(w, reports, store.Namespace()); err != nil {
			return err
		}
	case OutputFormatJSONL:
		if err := FormatJSONL(w, reports); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	return nil
}
