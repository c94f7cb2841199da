package models

import "fmt"

// Suit is one of the four French suits.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in canonical deck order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = [...]string{"HEARTS", "DIAMONDS", "CLUBS", "SPADES"}

func (s Suit) String() string {
	if s < Hearts || s > Spades {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Rank identifies a card face. Each rank carries a point value used for hand
// arithmetic and a separate precedence used only to break ties.
type Rank int

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in canonical deck order (ascending).
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

type rankInfo struct {
	name       string
	value      int
	precedence int
}

var rankTable = [...]rankInfo{
	Ace:   {"ACE", 1, 13},
	Two:   {"TWO", 2, 12},
	Three: {"THREE", 3, 11},
	Four:  {"FOUR", 4, 10},
	Five:  {"FIVE", 5, 9},
	Six:   {"SIX", 6, 8},
	Seven: {"SEVEN", 7, 7},
	Eight: {"EIGHT", 8, 6},
	Nine:  {"NINE", 9, 5},
	Ten:   {"TEN", 10, 4},
	Jack:  {"JACK", 10, 3},
	Queen: {"QUEEN", 10, 2},
	King:  {"KING", 10, 1},
}

func (r Rank) valid() bool { return r >= Ace && r <= King }

// Value is the rank's contribution to a hand value.
func (r Rank) Value() int {
	if !r.valid() {
		return 0
	}
	return rankTable[r].value
}

// Precedence orders ranks for tie-breaking: ACE is 13 (highest), KING is 1.
func (r Rank) Precedence() int {
	if !r.valid() {
		return 0
	}
	return rankTable[r].precedence
}

func (r Rank) String() string {
	if !r.valid() {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankTable[r].name
}

// Card is an immutable playing card. Two cards are equal when suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard returns the card of the given suit and rank.
func NewCard(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}

// Value is shorthand for c.Rank.Value().
func (c Card) Value() int { return c.Rank.Value() }

// Precedence is shorthand for c.Rank.Precedence().
func (c Card) Precedence() int { return c.Rank.Precedence() }

func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}
