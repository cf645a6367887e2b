// Package roster tracks player stacks across consecutive hands of one stream and checks
// chip conservation, stack continuity and elimination.
package roster

import (
	"math"
	"math/bits"
	"sort"

	"github.com/dyluth/holdcheck/internal/diag"
)

// Status is a tracked player's standing in the game.
type Status int

const (
	// StatusActive players may appear in the next hand
	StatusActive Status = iota
	// StatusEliminated is terminal: the player's stack reached zero or below
	StatusEliminated
)

func (s Status) String() string {
	if s == StatusEliminated {
		return "eliminated"
	}
	return "active"
}

type player struct {
	stack  int64
	status Status
}

// Tracker carries ledger state from one hand to the next.
// A Tracker belongs to a single stream and is not safe for concurrent use.
type Tracker struct {
	players map[string]*player
	busted  bool
	strict  bool
}

// NewTracker returns an empty tracker. In strict mode a player who was never seen before
// joining after the first hand is reported.
func NewTracker(strict bool) *Tracker {
	return &Tracker{
		players: make(map[string]*player),
		strict:  strict,
	}
}

// Busted reports whether any tracked stack has reached zero or below.
func (t *Tracker) Busted() bool {
	return t.busted
}

// Stack returns the tracked stack and status of a player.
func (t *Tracker) Stack(id string) (int64, Status, bool) {
	p, ok := t.players[id]
	if !ok {
		return 0, StatusActive, false
	}
	return p.stack, p.status, true
}

// BeginHand must be called before anything else is done with a record, even one that
// fails to decode. Once the game is over every further record is a violation.
func (t *Tracker) BeginHand(hand int) []diag.Diagnostic {
	if !t.busted {
		return nil
	}
	return []diag.Diagnostic{diag.New(diag.KindLedger, hand, "Hand %d recorded after player elimination", hand)}
}

// Observe checks a hand's starting stacks against the stacks carried over from the
// previous hand, then makes the starting stacks the tracked state. netResult ids that are
// not seated in the hand are reported; netResult may be nil.
func (t *Tracker) Observe(start map[string]int64, netResult map[string]int64, hand int) []diag.Diagnostic {
	var out []diag.Diagnostic
	ledger := func(format string, a ...any) {
		out = append(out, diag.New(diag.KindLedger, hand, format, a...))
	}

	ids := sortedKeys(start)

	if len(t.players) > 0 {
		for _, id := range ids {
			stack := start[id]
			prev, ok := t.players[id]
			if !ok {
				if t.strict {
					ledger("Unexpected player %s at hand %d", id, hand)
				}
				continue
			}
			if prev.stack != stack {
				ledger("Stack mismatch for %s at hand %d", id, hand)
			}
			if prev.status == StatusEliminated || prev.stack <= 0 {
				ledger("Player %s reappeared after elimination at hand %d", id, hand)
			}
		}
		for _, id := range sortedKeys(t.players) {
			prev := t.players[id]
			if _, seated := start[id]; seated || prev.status != StatusActive {
				continue
			}
			if prev.stack > 0 {
				ledger("Missing player %s at hand %d", id, hand)
			}
			delete(t.players, id)
		}
	}

	for _, id := range ids {
		if start[id] <= 0 {
			ledger("Player %s has non-positive starting stack at hand %d", id, hand)
		}
	}

	for _, id := range ids {
		if p, ok := t.players[id]; ok {
			p.stack = start[id]
			continue
		}
		t.players[id] = &player{stack: start[id], status: StatusActive}
	}

	for _, id := range sortedKeys(netResult) {
		if _, ok := start[id]; !ok {
			out = append(out, diag.New(diag.KindUnknownPlayer, hand, "Unknown player %s in net_result at hand %d", id, hand))
		}
	}
	return out
}

// Settle applies a hand's net_result. The deltas are applied even when they do not sum
// to zero. Any player left with zero chips or fewer is eliminated.
func (t *Tracker) Settle(netResult map[string]int64, hand int) []diag.Diagnostic {
	var out []diag.Diagnostic

	if !Conserved(netResult) {
		out = append(out, diag.New(diag.KindLedger, hand, "Chip conservation violated at hand %d", hand))
	}

	for id, delta := range netResult {
		p, ok := t.players[id]
		if !ok {
			p = &player{status: StatusActive}
			t.players[id] = p
		}
		p.stack = addSaturating(p.stack, delta)
	}

	for _, p := range t.players {
		if p.stack <= 0 {
			p.status = StatusEliminated
			t.busted = true
		}
	}
	return out
}

// Conserved reports whether the deltas of a net_result add up to exactly zero. The sum
// is exact for any int64 values.
func Conserved(netResult map[string]int64) bool {
	var gainHi, gainLo, lossHi, lossLo uint64
	for _, delta := range netResult {
		var carry uint64
		if delta >= 0 {
			gainLo, carry = bits.Add64(gainLo, uint64(delta), 0)
			gainHi += carry
		} else {
			// magnitude of delta, valid for math.MinInt64 too
			lossLo, carry = bits.Add64(lossLo, uint64(-(delta+1))+1, 0)
			lossHi += carry
		}
	}
	return gainHi == lossHi && gainLo == lossLo
}

// addSaturating returns a+b clamped to the int64 range so a stack can never wrap
// from negative to positive.
func addSaturating(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
