// Package structure checks the shape of a single hand record: board size, card
// uniqueness and the hand_id form.
package structure

import (
	"sort"
	"strings"

	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/pkg/handlog"
)

// BoardSize is the number of community cards of a completed hand.
const BoardSize = 5

// Check returns every structural violation of the record.
func Check(rec *handlog.HandRecord, hand int) []diag.Diagnostic {
	var out []diag.Diagnostic

	if !ValidHandID(rec.HandID) {
		out = append(out, diag.New(diag.KindField, hand, "Invalid hand_id at hand %d: %q", hand, rec.HandID))
	}

	if rec.BoardSize != BoardSize {
		out = append(out, diag.New(diag.KindField, hand,
			"Invalid board length at hand %d: expected %d cards but found %d", hand, BoardSize, rec.BoardSize))
	}

	if dups := duplicateCards(rec); len(dups) > 0 {
		out = append(out, diag.New(diag.KindField, hand,
			"Duplicate card(s) detected at hand %d: %s", hand, strings.Join(dups, ", ")))
	}

	return out
}

// ValidHandID reports whether id has the form YYYYMMDD-NNNNNN: eight ASCII digits, a dash
// and six ASCII digits. Calendar validity is not checked.
func ValidHandID(id string) bool {
	if len(id) != 15 || id[8] != '-' {
		return false
	}
	for i := 0; i < len(id); i++ {
		if i == 8 {
			continue
		}
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// duplicateCards returns the names of cards that occur more than once across the board
// and every player's hole cards, sorted.
func duplicateCards(rec *handlog.HandRecord) []string {
	seen := make(map[handlog.Card]bool)
	dups := make(map[handlog.Card]bool)

	record := func(c handlog.Card) {
		if seen[c] {
			dups[c] = true
			return
		}
		seen[c] = true
	}

	for _, c := range rec.Board {
		record(c)
	}
	for _, p := range rec.Players {
		for _, c := range p.HoleCards {
			record(c)
		}
	}

	names := make([]string, 0, len(dups))
	for c := range dups {
		names = append(names, c.String())
	}
	sort.Strings(names)
	return names
}
