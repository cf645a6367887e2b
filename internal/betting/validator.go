// Package betting replays one hand's action log street by street and enforces No-Limit
// bet sizing, raise sizing, and the rule that a short all-in does not reopen betting
// for players who already faced the full bet.
package betting

import (
	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/pkg/handlog"
)

// Input is everything the betting replay needs for one hand.
type Input struct {
	Actions        []handlog.Action
	BigBlind       int64
	ChipUnit       int64 // Smallest legal increment for every bet, raise and all-in
	StartingStacks map[string]int64
	Hand           int // 1-based hand index, used in diagnostics
}

// Validate replays the actions and returns the first violation, or nil when the betting
// is legal. Validation of the hand stops at the first violation.
//
// Commitments beyond a player's remaining stack are capped to the remaining stack and
// treated as an implicit all-in; they are never reported on their own.
func Validate(in Input) *diag.Diagnostic {
	unit := in.ChipUnit
	if unit <= 0 {
		unit = 1
	}
	minBet := max(in.BigBlind, unit)

	hand := newHandState(in.StartingStacks)
	street := newStreetState(minBet)
	var currentStreet handlog.Street

	for i, act := range in.Actions {
		idx := i + 1
		if act.PlayerID == "" {
			continue
		}
		player := act.PlayerID

		if _, ok := in.StartingStacks[player]; !ok {
			d := diag.AtAction(diag.KindUnknownPlayer, in.Hand, idx, "Unknown player %s", player)
			return &d
		}

		if act.Street != "" && act.Street != currentStreet {
			currentStreet = act.Street
			street = newStreetState(minBet)
		}

		commitBefore := street.committed[player]
		target := commitBefore

		switch act.Kind {
		case handlog.ActionMalformed:
			return violation(in.Hand, idx, "Bet action missing amount")

		case handlog.ActionBet:
			if act.Amount%unit != 0 {
				return violation(in.Hand, idx, "Invalid bet amount %d", act.Amount)
			}
			if act.Amount < minBet {
				return violation(in.Hand, idx, "Bet below minimum %d", minBet)
			}
			target = act.Amount

		case handlog.ActionRaise:
			if act.Amount%unit != 0 {
				return violation(in.Hand, idx, "Invalid raise amount %d", act.Amount)
			}
			minDelta := max(street.lastFullRaise, in.BigBlind, unit)
			if act.Amount < minDelta {
				return violation(in.Hand, idx, "Raise delta %d below minimum raise %d", act.Amount, minDelta)
			}
			target = addCapped(street.currentHigh, act.Amount)

		case handlog.ActionAllIn:
			amount := hand.remaining[player]
			if act.HasAmount {
				amount = act.Amount
			}
			if amount%unit != 0 {
				return violation(in.Hand, idx, "Invalid all-in amount %d", amount)
			}
			target = addCapped(commitBefore, amount)

		case handlog.ActionCall:
			target = max(street.currentHigh, commitBefore)
		}

		newCommit := hand.commit(player, commitBefore, target)

		// extra is the raise-equivalent size of this action against the street's high bet
		if extra := newCommit - street.currentHigh; extra > 0 {
			if street.reopenBlocked {
				return violation(in.Hand, idx, "Betting illegally reopened after short all-in")
			}
			if extra < max(street.lastFullRaise, in.BigBlind, unit) {
				street.reopenBlocked = true
			} else {
				street.lastFullRaise = extra
				street.reopenBlocked = false
			}
			street.currentHigh = newCommit
		} else {
			street.currentHigh = max(street.currentHigh, newCommit)
		}

		street.committed[player] = newCommit
	}

	return nil
}

func violation(hand, action int, format string, a ...any) *diag.Diagnostic {
	d := diag.AtAction(diag.KindBetting, hand, action, format, a...)
	return &d
}
