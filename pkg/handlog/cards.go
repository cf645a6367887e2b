package handlog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulhankin/poker"
)

// Suit is a card suit as written in hand logs.
type Suit string

const (
	Clubs    Suit = "Clubs"
	Diamonds Suit = "Diamonds"
	Hearts   Suit = "Hearts"
	Spades   Suit = "Spades"
)

// Rank is a card rank as written in hand logs ("Two" through "Ace").
type Rank string

const (
	Two   Rank = "Two"
	Three Rank = "Three"
	Four  Rank = "Four"
	Five  Rank = "Five"
	Six   Rank = "Six"
	Seven Rank = "Seven"
	Eight Rank = "Eight"
	Nine  Rank = "Nine"
	Ten   Rank = "Ten"
	Jack  Rank = "Jack"
	Queen Rank = "Queen"
	King  Rank = "King"
	Ace   Rank = "Ace"
)

// suitIndex follows the club, diamond, heart, spade order of the poker package.
var suitIndex = map[Suit]uint8{Clubs: 0, Diamonds: 1, Hearts: 2, Spades: 3}

// rankValue uses the poker package convention of ace = 1, jack..king = 11..13.
var rankValue = map[Rank]uint8{
	Ace: 1, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
	Eight: 8, Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13,
}

// Card is a playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// String renders the card as "<Rank> <Suit>", e.g. "Ace Hearts".
func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Rank, c.Suit)
}

// Poker converts c to a poker.Card, failing on an unknown rank or suit.
func (c Card) Poker() (poker.Card, error) {
	var none poker.Card
	s, ok := suitIndex[c.Suit]
	if !ok {
		return none, fmt.Errorf("unknown suit %q", c.Suit)
	}
	r, ok := rankValue[c.Rank]
	if !ok {
		return none, fmt.Errorf("unknown rank %q", c.Rank)
	}
	card, err := poker.MakeCard(poker.Suit(s), poker.Rank(r))
	if err != nil {
		return none, fmt.Errorf("invalid card %s: %w", c, err)
	}
	return card, nil
}

// ParseCard decodes a card object. Rank and suit names are matched case-insensitively.
func ParseCard(raw json.RawMessage) (Card, error) {
	var obj struct {
		Rank string `json:"rank"`
		Suit string `json:"suit"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Card{}, fmt.Errorf("card must be an object with rank and suit: %w", err)
	}
	card := Card{Rank: canonicalRank(obj.Rank), Suit: canonicalSuit(obj.Suit)}
	if _, err := card.Poker(); err != nil {
		return Card{}, err
	}
	return card, nil
}

func canonicalRank(name string) Rank {
	for r := range rankValue {
		if strings.EqualFold(string(r), name) {
			return r
		}
	}
	return Rank(name)
}

func canonicalSuit(name string) Suit {
	for s := range suitIndex {
		if strings.EqualFold(string(s), name) {
			return s
		}
	}
	return Suit(name)
}
