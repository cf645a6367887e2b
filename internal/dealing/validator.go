// Package dealing checks card-distribution metadata against the blind and button
// assignment of a Texas Hold'em hand.
package dealing

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/pkg/handlog"
)

// HoleCardRounds is the number of hole cards dealt to each player, one per round.
const HoleCardRounds = 2

// Input is the dealing metadata of one hand plus the hand's roster.
type Input struct {
	Meta           *handlog.DealingMeta
	Button         string // "" when the record has no button
	StartingStacks map[string]int64
	Hand           int
}

// Validate returns the first dealing order violation, or nil.
// Hands with an empty roster are skipped.
func Validate(in Input) *diag.Diagnostic {
	if len(in.StartingStacks) == 0 || in.Meta == nil {
		return nil
	}
	meta := in.Meta
	known := in.StartingStacks
	players := len(known)
	sb, bb := meta.SmallBlind, meta.BigBlind

	if sb != "" {
		if _, ok := known[sb]; !ok {
			return unknown(in.Hand, "unknown small blind %s", sb)
		}
	}
	if bb != "" {
		if _, ok := known[bb]; !ok {
			return unknown(in.Hand, "unknown big blind %s", bb)
		}
	}
	if in.Button != "" && sb != "" && in.Button != sb {
		return invalid(in.Hand, "button %s must match small blind %s", in.Button, sb)
	}
	if sb != "" && bb != "" {
		if sb == bb {
			return invalid(in.Hand, "small blind and big blind must differ")
		}
		if players == 2 {
			if expected := otherPlayer(known, sb); bb != expected {
				return invalid(in.Hand, "expected big blind %s but found %s", expected, bb)
			}
		}
	}

	if meta.HasDealSequence {
		if d := validateSequence(in, players); d != nil {
			return d
		}
	}
	if meta.HasBurnPositions {
		if d := validateBurns(in, players); d != nil {
			return d
		}
	}
	return nil
}

func validateSequence(in Input, players int) *diag.Diagnostic {
	meta := in.Meta
	if meta.DealSequenceProblem != "" {
		return invalid(in.Hand, "%s", meta.DealSequenceProblem)
	}
	seq := meta.DealSequence

	if expected := players * HoleCardRounds; len(seq) != expected {
		return invalid(in.Hand, "expected %d entries in deal_sequence but found %d", expected, len(seq))
	}
	for _, id := range seq {
		if _, ok := in.StartingStacks[id]; !ok {
			return unknown(in.Hand, "deal_sequence references unknown player")
		}
	}

	firstRound := seq[:players]
	if meta.SmallBlind != "" && firstRound[0] != meta.SmallBlind {
		return invalid(in.Hand, "expected %s to receive the first card", meta.SmallBlind)
	}
	if meta.BigBlind != "" && players >= 2 && firstRound[1] != meta.BigBlind {
		return invalid(in.Hand, "expected %s to receive the second card", meta.BigBlind)
	}

	seen := make(map[string]bool, players)
	for _, id := range firstRound {
		seen[id] = true
	}
	if len(seen) != players {
		return invalid(in.Hand, "duplicate players in first deal round")
	}

	for round := 1; round < HoleCardRounds; round++ {
		chunk := seq[round*players : (round+1)*players]
		if !slices.Equal(chunk, firstRound) {
			return invalid(in.Hand, "inconsistent card distribution order")
		}
	}
	return nil
}

// ExpectedBurnPositions returns the 1-based deck positions of the burn cards before the
// flop, turn and river once every player holds two hole cards.
func ExpectedBurnPositions(players int) []int64 {
	holeCards := int64(players * HoleCardRounds)
	flopBurn := holeCards + 1
	turnBurn := flopBurn + 3 + 1
	riverBurn := turnBurn + 1 + 1
	return []int64{flopBurn, turnBurn, riverBurn}
}

func validateBurns(in Input, players int) *diag.Diagnostic {
	meta := in.Meta
	if meta.BurnPositionsProblem != "" {
		return invalid(in.Hand, "%s", meta.BurnPositionsProblem)
	}
	if len(meta.BurnPositions) != 3 {
		return invalid(in.Hand, "expected 3 burn positions")
	}
	if players >= 2 {
		expected := ExpectedBurnPositions(players)
		if !slices.Equal(meta.BurnPositions, expected) {
			return invalid(in.Hand, "expected burn positions %v but found %v", expected, meta.BurnPositions)
		}
	}
	return nil
}

// otherPlayer returns the lowest-sorted player id that is not id.
func otherPlayer(known map[string]int64, id string) string {
	ids := make([]string, 0, len(known))
	for k := range known {
		if k != id {
			ids = append(ids, k)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return ids[0]
}

func invalid(hand int, format string, a ...any) *diag.Diagnostic {
	return dealingDiag(diag.KindDealing, hand, format, a...)
}

// unknown reports a meta reference to an id that is not seated in the hand.
func unknown(hand int, format string, a ...any) *diag.Diagnostic {
	return dealingDiag(diag.KindUnknownPlayer, hand, format, a...)
}

func dealingDiag(kind diag.Kind, hand int, format string, a ...any) *diag.Diagnostic {
	d := diag.New(kind, hand, "Invalid dealing order at hand %d: %s", hand, fmt.Sprintf(format, a...))
	return &d
}
