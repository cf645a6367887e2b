package report

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dyluth/holdcheck/internal/diag"
)

// Reports are stored as Redis hashes. Scalar fields get their own hash field; the kind
// counts and diagnostics are JSON-encoded into single fields.

// ToHash converts a Report to a Redis hash.
func ToHash(r *Report) (map[string]interface{}, error) {
	countsJSON, err := json.Marshal(r.CountsByKind)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal counts_by_kind: %w", err)
	}
	diagsJSON, err := json.Marshal(r.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	return map[string]interface{}{
		"id":               r.ID,
		"input":            r.Input,
		"hands":            r.Hands,
		"ok":               strconv.FormatBool(r.OK),
		"diagnostic_count": r.DiagnosticCount,
		"counts_by_kind":   string(countsJSON),
		"diagnostics":      string(diagsJSON),
		"chip_unit":        r.ChipUnit,
		"created_at_ms":    r.CreatedAtMs,
	}, nil
}

// FromHash converts a Redis hash back to a Report.
func FromHash(hash map[string]string) (*Report, error) {
	hands, err := strconv.Atoi(hash["hands"])
	if err != nil {
		return nil, fmt.Errorf("invalid hands field: %w", err)
	}
	ok, err := strconv.ParseBool(hash["ok"])
	if err != nil {
		return nil, fmt.Errorf("invalid ok field: %w", err)
	}
	count, err := strconv.Atoi(hash["diagnostic_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid diagnostic_count field: %w", err)
	}

	counts := map[diag.Kind]int{}
	if raw := hash["counts_by_kind"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal counts_by_kind: %w", err)
		}
	}

	diags := []diag.Diagnostic{}
	if raw := hash["diagnostics"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &diags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
		}
	}

	chipUnit, _ := strconv.ParseInt(hash["chip_unit"], 10, 64)
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	return &Report{
		ID:              hash["id"],
		Input:           hash["input"],
		Hands:           hands,
		OK:              ok,
		DiagnosticCount: count,
		CountsByKind:    counts,
		Diagnostics:     diags,
		ChipUnit:        chipUnit,
		CreatedAtMs:     createdAtMs,
	}, nil
}
