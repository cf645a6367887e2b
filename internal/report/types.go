package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/internal/verify"
	"github.com/google/uuid"
)

// MaxStoredDiagnostics caps how many diagnostics are kept with a stored report.
// DiagnosticCount and CountsByKind always cover the full run.
const MaxStoredDiagnostics = 100

// Report is the persisted outcome of one verification run.
type Report struct {
	ID              string            `json:"id"`
	Input           string            `json:"input"`
	Hands           int               `json:"hands"`
	OK              bool              `json:"ok"`
	DiagnosticCount int               `json:"diagnostic_count"`
	CountsByKind    map[diag.Kind]int `json:"counts_by_kind"`
	Diagnostics     []diag.Diagnostic `json:"diagnostics"`
	ChipUnit        int64             `json:"chip_unit"`
	CreatedAtMs     int64             `json:"created_at_ms"`
}

// New builds a report for a finished run with a fresh UUID.
func New(input string, chipUnit int64, res verify.Result, now time.Time) *Report {
	stored := res.Diagnostics
	if len(stored) > MaxStoredDiagnostics {
		stored = stored[:MaxStoredDiagnostics]
	}
	diags := make([]diag.Diagnostic, len(stored))
	copy(diags, stored)

	return &Report{
		ID:              uuid.New().String(),
		Input:           input,
		Hands:           res.Hands,
		OK:              res.OK(),
		DiagnosticCount: len(res.Diagnostics),
		CountsByKind:    diag.CountByKind(res.Diagnostics),
		Diagnostics:     diags,
		ChipUnit:        chipUnit,
		CreatedAtMs:     now.UnixMilli(),
	}
}

// Truncated reports whether some diagnostics were dropped when the report was stored.
func (r *Report) Truncated() bool {
	return r.DiagnosticCount > len(r.Diagnostics)
}

// Validate checks that the report can be stored.
func (r *Report) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("id must be a valid UUID: %w", err)
	}
	if r.Input == "" {
		return errors.New("input cannot be empty")
	}
	if r.Hands < 0 {
		return fmt.Errorf("hands must be >= 0, got %d", r.Hands)
	}
	if r.DiagnosticCount < len(r.Diagnostics) {
		return fmt.Errorf("diagnostic_count %d is below the %d stored diagnostics", r.DiagnosticCount, len(r.Diagnostics))
	}
	if r.OK != (r.DiagnosticCount == 0) {
		return errors.New("ok must be true exactly when there are no diagnostics")
	}
	if r.CreatedAtMs <= 0 {
		return errors.New("created_at_ms must be set")
	}
	return nil
}
