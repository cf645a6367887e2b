package betting

import "math"

// handState persists across streets for the whole hand.
type handState struct {
	remaining map[string]int64
}

func newHandState(startingStacks map[string]int64) *handState {
	remaining := make(map[string]int64, len(startingStacks))
	for id, stack := range startingStacks {
		remaining[id] = stack
	}
	return &handState{remaining: remaining}
}

// streetState is rebuilt at every street boundary.
type streetState struct {
	committed     map[string]int64
	currentHigh   int64
	lastFullRaise int64
	reopenBlocked bool
}

func newStreetState(minFullRaise int64) *streetState {
	return &streetState{
		committed:     make(map[string]int64),
		lastFullRaise: minFullRaise,
	}
}

// commit moves chips from the player's remaining stack into the street, capped at the
// remaining stack, and returns the player's new street commitment.
func (h *handState) commit(player string, commitBefore, target int64) int64 {
	delta := min(target-commitBefore, h.remaining[player])
	if delta <= 0 {
		return commitBefore
	}
	h.remaining[player] -= delta
	return commitBefore + delta
}

// addCapped returns a+b, saturating at the int64 bounds. A saturated target is
// later capped to the remaining stack like any other over-commitment.
func addCapped(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}
