package handlog

import "sort"

// HandRecord is one complete deal, from blind posting through showdown or fold-out.
type HandRecord struct {
	HandID    string           `json:"hand_id"`
	Seed      *uint64          `json:"seed,omitempty"`
	Level     *int64           `json:"level,omitempty"`
	Blinds    *Blinds          `json:"blinds,omitempty"`
	Button    string           `json:"button,omitempty"`
	Players   []Player         `json:"players,omitempty"`
	Actions   []Action         `json:"actions"`
	Board     []Card           `json:"board"`
	BoardSize int              `json:"-"` // Entries in the board array, including invalid cards
	Result    string           `json:"result,omitempty"`
	NetResult map[string]int64 `json:"net_result,omitempty"` // nil when absent
	EndReason string           `json:"end_reason,omitempty"`
	Meta      *DealingMeta     `json:"meta,omitempty"`
	Timestamp string           `json:"ts,omitempty"`

	// HasPlayers is true when the record carried a players array, even an empty one.
	HasPlayers bool `json:"-"`
}

// Player is one seat of the hand with its stack at the start of the deal.
type Player struct {
	ID         string `json:"id"`
	StackStart int64  `json:"stack_start"`
	HoleCards  []Card `json:"hole_cards,omitempty"`
}

// Blinds holds the forced bet sizes. BigBlind is zero when the record did not state it.
type Blinds struct {
	SmallBlind int64 `json:"sb"`
	BigBlind   int64 `json:"bb"`
}

// DealingMeta describes how cards were distributed.
// Empty ids mean the field was absent. Problem fields carry shape errors found while
// decoding so the dealing validator can report them in its own check order.
type DealingMeta struct {
	SmallBlind string `json:"small_blind,omitempty"`
	BigBlind   string `json:"big_blind,omitempty"`

	DealSequence        []string `json:"deal_sequence,omitempty"`
	HasDealSequence     bool     `json:"-"`
	DealSequenceProblem string   `json:"-"`

	BurnPositions        []int64 `json:"burn_positions,omitempty"`
	HasBurnPositions     bool    `json:"-"`
	BurnPositionsProblem string  `json:"-"`
}

// Street names a betting round. Values are compared verbatim; "" means unspecified.
type Street string

const (
	StreetPreflop Street = "Preflop"
	StreetFlop    Street = "Flop"
	StreetTurn    Street = "Turn"
	StreetRiver   Street = "River"
)

// ActionKind is the normalized kind of a player action.
type ActionKind int

const (
	ActionOther ActionKind = iota
	ActionBet
	ActionRaise
	ActionAllIn
	ActionCall
	ActionCheck
	ActionFold
	// ActionMalformed is a bet or raise that did not carry a numeric amount
	ActionMalformed
)

var actionKindNames = map[ActionKind]string{
	ActionOther:     "Other",
	ActionBet:       "Bet",
	ActionRaise:     "Raise",
	ActionAllIn:     "AllIn",
	ActionCall:      "Call",
	ActionCheck:     "Check",
	ActionFold:      "Fold",
	ActionMalformed: "Malformed",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return "Other"
}

// Action is one entry of the hand's action log.
// Amount is meaningful for Bet and Raise, and for AllIn when HasAmount is set.
// For Raise the amount is the raise delta on top of the street's current high bet.
type Action struct {
	PlayerID  string     `json:"player_id"`
	Street    Street     `json:"street"`
	Kind      ActionKind `json:"kind"`
	Amount    int64      `json:"amount,omitempty"`
	HasAmount bool       `json:"-"`
}

// StartingStacks maps each seated player to its starting stack.
// Returns nil when the record had no players array. Entries without an id are skipped
// during decoding, so they never appear here.
func (r *HandRecord) StartingStacks() map[string]int64 {
	if !r.HasPlayers {
		return nil
	}
	stacks := make(map[string]int64, len(r.Players))
	for _, p := range r.Players {
		stacks[p.ID] = p.StackStart
	}
	return stacks
}

// NetResultPlayers returns the net_result keys in sorted order.
func (r *HandRecord) NetResultPlayers() []string {
	ids := make([]string, 0, len(r.NetResult))
	for id := range r.NetResult {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BigBlindOr returns the stated big blind, or fallback when the record has none.
func (r *HandRecord) BigBlindOr(fallback int64) int64 {
	if r.Blinds == nil || r.Blinds.BigBlind == 0 {
		return fallback
	}
	return r.Blinds.BigBlind
}
