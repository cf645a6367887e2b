package betting

import (
	"math"
	"strings"
	"testing"

	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/pkg/handlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bet(player string, street handlog.Street, amount int64) handlog.Action {
	return handlog.Action{PlayerID: player, Street: street, Kind: handlog.ActionBet, Amount: amount, HasAmount: true}
}

func raise(player string, street handlog.Street, delta int64) handlog.Action {
	return handlog.Action{PlayerID: player, Street: street, Kind: handlog.ActionRaise, Amount: delta, HasAmount: true}
}

func allIn(player string, street handlog.Street) handlog.Action {
	return handlog.Action{PlayerID: player, Street: street, Kind: handlog.ActionAllIn}
}

func allInFor(player string, street handlog.Street, amount int64) handlog.Action {
	return handlog.Action{PlayerID: player, Street: street, Kind: handlog.ActionAllIn, Amount: amount, HasAmount: true}
}

func simple(player string, street handlog.Street, kind handlog.ActionKind) handlog.Action {
	return handlog.Action{PlayerID: player, Street: street, Kind: kind}
}

const pre = handlog.StreetPreflop

func headsUp(p0, p1 int64, actions ...handlog.Action) Input {
	return Input{
		Actions:        actions,
		BigBlind:       100,
		ChipUnit:       25,
		StartingStacks: map[string]int64{"p0": p0, "p1": p1},
		Hand:           1,
	}
}

func TestValidate_ShortAllInBlocksReopen(t *testing.T) {
	in := headsUp(1000, 250,
		bet("p0", pre, 200),
		allIn("p1", pre), // commits 250: 50 over the high bet, below the 200 full raise
		raise("p0", pre, 200),
	)

	d := Validate(in)
	require.NotNil(t, d)
	assert.Equal(t, diag.KindBetting, d.Kind)
	assert.Equal(t, 1, d.Hand)
	assert.Equal(t, 3, d.Action)
	assert.Contains(t, strings.ToLower(d.Message), "all-in")
	assert.Equal(t, "Betting illegally reopened after short all-in at hand 1 (action #3)", d.Message)
}

func TestValidate_ShortAllInThenClosingActionsAccepted(t *testing.T) {
	for _, kind := range []handlog.ActionKind{handlog.ActionCall, handlog.ActionCheck, handlog.ActionFold} {
		t.Run(kind.String(), func(t *testing.T) {
			in := headsUp(1000, 250,
				bet("p0", pre, 200),
				allIn("p1", pre),
				simple("p0", pre, kind),
			)
			assert.Nil(t, Validate(in))
		})
	}
}

func TestValidate_ShortAllInBlocksThirdPlayerRaise(t *testing.T) {
	in := Input{
		Actions: []handlog.Action{
			bet("p0", pre, 200),
			allIn("p1", pre),
			simple("p2", pre, handlog.ActionCall),
			raise("p2", pre, 400),
		},
		BigBlind:       100,
		ChipUnit:       25,
		StartingStacks: map[string]int64{"p0": 2000, "p1": 250, "p2": 2000},
		Hand:           4,
	}

	d := Validate(in)
	require.NotNil(t, d)
	assert.Equal(t, 4, d.Action)
	assert.Equal(t, 4, d.Hand)
}

func TestValidate_SizingViolations(t *testing.T) {
	tests := []struct {
		name     string
		actions  []handlog.Action
		action   int
		contains string
	}{
		{
			name:     "bet not a chip unit multiple",
			actions:  []handlog.Action{bet("p0", pre, 30)},
			action:   1,
			contains: "Invalid bet amount 30",
		},
		{
			name:     "bet below big blind",
			actions:  []handlog.Action{bet("p0", pre, 50)},
			action:   1,
			contains: "Bet below minimum 100",
		},
		{
			name:     "raise delta below minimum",
			actions:  []handlog.Action{bet("p0", pre, 100), raise("p1", pre, 50)},
			action:   2,
			contains: "Raise delta 50 below minimum raise 100",
		},
		{
			name:     "raise not a chip unit multiple",
			actions:  []handlog.Action{bet("p0", pre, 100), raise("p1", pre, 110)},
			action:   2,
			contains: "Invalid raise amount 110",
		},
		{
			name:     "raise below last full raise",
			actions:  []handlog.Action{bet("p0", pre, 100), raise("p1", pre, 300), raise("p0", pre, 200)},
			action:   3,
			contains: "Raise delta 200 below minimum raise 300",
		},
		{
			name:     "explicit all-in not a chip unit multiple",
			actions:  []handlog.Action{allInFor("p0", pre, 130)},
			action:   1,
			contains: "Invalid all-in amount 130",
		},
		{
			name:     "textual bet without amount",
			actions:  []handlog.Action{simple("p0", pre, handlog.ActionMalformed)},
			action:   1,
			contains: "Bet action missing amount",
		},
		{
			name:     "non-unit bet on a later street",
			actions:  []handlog.Action{bet("p0", pre, 100), simple("p1", pre, handlog.ActionCall), bet("p1", handlog.StreetRiver, 135)},
			action:   3,
			contains: "Invalid bet amount 135",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(headsUp(1000, 1000, tt.actions...))
			require.NotNil(t, d)
			assert.Equal(t, diag.KindBetting, d.Kind)
			assert.Equal(t, tt.action, d.Action)
			assert.Contains(t, d.Message, tt.contains)
		})
	}
}

func TestValidate_ImplicitAllInUsesRemainingStack(t *testing.T) {
	d := Validate(headsUp(1000, 260, bet("p0", pre, 200), allIn("p1", pre)))
	require.NotNil(t, d)
	assert.Contains(t, d.Message, "Invalid all-in amount 260")

	// after committing 100 preflop the remaining 150 is a legal all-in amount
	in := headsUp(1000, 250,
		bet("p0", pre, 100),
		simple("p1", pre, handlog.ActionCall),
		bet("p0", handlog.StreetFlop, 100),
		allIn("p1", handlog.StreetFlop),
	)
	assert.Nil(t, Validate(in))
}

func TestValidate_UnknownPlayerAbortsHand(t *testing.T) {
	d := Validate(headsUp(1000, 1000, bet("p0", pre, 100), bet("p9", pre, 30)))
	require.NotNil(t, d)
	assert.Equal(t, diag.KindUnknownPlayer, d.Kind)
	assert.Equal(t, "Unknown player p9 at hand 1 (action #2)", d.Message)
}

func TestValidate_StreetBoundaryResetsState(t *testing.T) {
	in := headsUp(2000, 1000,
		bet("p0", pre, 200),
		allInFor("p1", pre, 250),
		simple("p0", pre, handlog.ActionCall),
		// a new street clears the reopen block and the last full raise
		bet("p0", handlog.StreetFlop, 100),
		raise("p1", handlog.StreetFlop, 100),
		raise("p0", handlog.StreetFlop, 100),
	)
	assert.Nil(t, Validate(in))
}

func TestValidate_FullAllInRaiseUpdatesMinimum(t *testing.T) {
	in := headsUp(1000, 300,
		bet("p0", pre, 100),
		allIn("p1", pre), // 300 total: a 200 full raise
		raise("p0", pre, 200),
	)
	assert.Nil(t, Validate(in))

	in = headsUp(1000, 300,
		bet("p0", pre, 100),
		allIn("p1", pre),
		raise("p0", pre, 150),
	)
	d := Validate(in)
	require.NotNil(t, d)
	assert.Contains(t, d.Message, "Raise delta 150 below minimum raise 200")
}

func TestValidate_OverCommitIsCapped(t *testing.T) {
	in := headsUp(1000, 250,
		bet("p1", pre, 400), // capped to the 250 remaining
		simple("p0", pre, handlog.ActionCall),
	)
	assert.Nil(t, Validate(in))
}

func TestValidate_HugeAmountsAfterShortAllInStillBlocked(t *testing.T) {
	// multiples of 25 close to math.MaxInt64
	const huge = 9223372036854775800

	tests := []struct {
		name    string
		closing handlog.Action
	}{
		{"raise", raise("p0", pre, huge)},
		{"all-in with amount", allInFor("p0", pre, huge)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := headsUp(1000, 250,
				bet("p0", pre, 200),
				allIn("p1", pre),
				tt.closing,
			)

			d := Validate(in)
			require.NotNil(t, d)
			assert.Equal(t, "Betting illegally reopened after short all-in at hand 1 (action #3)", d.Message)
		})
	}
}

func TestValidate_HugeRaiseIsCappedToStack(t *testing.T) {
	in := headsUp(1000, 1000,
		bet("p0", pre, 100),
		raise("p1", pre, 9223372036854775800),
		simple("p0", pre, handlog.ActionCall),
	)
	assert.Nil(t, Validate(in))
}

func TestAddCapped(t *testing.T) {
	assert.Equal(t, int64(300), addCapped(100, 200))
	assert.Equal(t, int64(math.MaxInt64), addCapped(250, math.MaxInt64-10))
	assert.Equal(t, int64(math.MinInt64), addCapped(-250, math.MinInt64+10))
	assert.Equal(t, int64(-50), addCapped(100, -150))
}

func TestValidate_SkipsActionsWithoutPlayer(t *testing.T) {
	in := headsUp(1000, 1000,
		handlog.Action{Kind: handlog.ActionBet, Amount: 7, HasAmount: true},
		bet("p0", pre, 100),
	)
	assert.Nil(t, Validate(in))
}

func TestValidate_ZeroChipUnitDoesNotPanic(t *testing.T) {
	in := headsUp(1000, 1000, bet("p0", pre, 100), raise("p1", pre, 100))
	in.ChipUnit = 0
	assert.NotPanics(t, func() { Validate(in) })
	assert.Nil(t, Validate(in))
}
