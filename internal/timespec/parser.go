// Package timespec turns the --since and --until flag values of the reports command
// into millisecond timestamps.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Now is the clock relative specs are measured from.
var Now = time.Now

// Parse converts spec into a Unix timestamp in milliseconds.
// Accepted forms:
//   - Go durations, measured back from now: "90s", "1h30m"
//   - whole days, measured back from now: "3d"
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - calendar dates, taken as UTC midnight: "2025-10-29"
func Parse(spec string) (int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse(time.DateOnly, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 0 {
			return Now().AddDate(0, 0, -n).UnixMilli(), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil && d >= 0 {
		return Now().Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '1h30m' or '2d', a date like '2025-10-29', or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

// ParseRange parses the --since and --until values. A zero bound means unbounded.
// Both bounds set must satisfy since < until.
func ParseRange(since, until string) (sinceMs, untilMs int64, err error) {
	if since != "" {
		if sinceMs, err = Parse(since); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if untilMs, err = Parse(until); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMs > 0 && untilMs > 0 && sinceMs >= untilMs {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}
	return sinceMs, untilMs, nil
}
