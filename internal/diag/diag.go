// Package diag defines the diagnostics emitted while verifying a hand history stream.
// Every rule violation becomes a Diagnostic; only an unreadable input source is fatal.
package diag

import (
	"fmt"
	"sort"
)

// Kind classifies a diagnostic by the validator family that raised it.
type Kind string

const (
	// KindParse marks a line that is not valid JSON or fails schema coercion
	KindParse Kind = "StructuralParseError"

	// KindUnknownPlayer marks a reference to an id outside the hand's roster
	KindUnknownPlayer Kind = "UnknownPlayerError"

	// KindBetting marks a bad bet size, a non-unit amount or an illegal reopen
	KindBetting Kind = "BettingRuleViolation"

	// KindDealing marks a wrong deal sequence or wrong burn positions
	KindDealing Kind = "DealingOrderViolation"

	// KindLedger marks chip conservation, stack continuity and elimination violations
	KindLedger Kind = "LedgerViolation"

	// KindField marks board length, hand_id form and duplicate card violations
	KindField Kind = "StructuralFieldViolation"
)

// Kinds lists every kind in reporting order.
var Kinds = []Kind{KindParse, KindUnknownPlayer, KindBetting, KindDealing, KindLedger, KindField}

// Diagnostic is a single verification finding.
// Hand is the 1-based index of the record in the stream. Action is the 1-based index of
// the action within that hand, or 0 when the finding is not tied to an action.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Hand    int    `json:"hand"`
	Action  int    `json:"action,omitempty"`
}

// New builds a diagnostic that is not tied to an action.
func New(kind Kind, hand int, format string, a ...any) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, a...), Hand: hand}
}

// AtAction builds a diagnostic for a specific action. The message is suffixed with the
// hand and action indices.
func AtAction(kind Kind, hand, action int, format string, a ...any) Diagnostic {
	msg := fmt.Sprintf(format, a...)
	return Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf("%s at hand %d (action #%d)", msg, hand, action),
		Hand:    hand,
		Action:  action,
	}
}

// String returns the message; it is what ends up after "Error: " on the diagnostic channel.
func (d Diagnostic) String() string {
	return d.Message
}

// CountByKind tallies diagnostics per kind. Kinds with no diagnostics are omitted.
func CountByKind(diags []Diagnostic) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range diags {
		counts[d.Kind]++
	}
	return counts
}

// SortedKinds returns the kinds present in counts, in reporting order followed by any
// unrecognised kinds sorted by name.
func SortedKinds(counts map[Kind]int) []Kind {
	var out []Kind
	known := make(map[Kind]bool, len(Kinds))
	for _, k := range Kinds {
		known[k] = true
		if counts[k] > 0 {
			out = append(out, k)
		}
	}
	var extra []Kind
	for k := range counts {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
