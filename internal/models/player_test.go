package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceDealer deals from a fixed list of cards.
type sliceDealer struct {
	cards []Card
}

func (d *sliceDealer) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRankValuesAndPrecedence(t *testing.T) {
	assert.Equal(t, 1, Ace.Value())
	assert.Equal(t, 13, Ace.Precedence())
	assert.Equal(t, 10, Ten.Value())
	assert.Equal(t, 4, Ten.Precedence())
	for _, r := range []Rank{Jack, Queen, King} {
		assert.Equal(t, 10, r.Value(), r.String())
	}
	assert.Equal(t, 1, King.Precedence())

	// precedence strictly decreases from ACE to KING
	for i := 1; i < len(Ranks); i++ {
		assert.Greater(t, Ranks[i-1].Precedence(), Ranks[i].Precedence())
	}
}

func TestCardEquality(t *testing.T) {
	assert.Equal(t, NewCard(Spades, Ace), Card{Suit: Spades, Rank: Ace})
	assert.NotEqual(t, NewCard(Spades, Ace), NewCard(Hearts, Ace))
	assert.Equal(t, "QUEEN of CLUBS", NewCard(Clubs, Queen).String())
}

func TestHandValue(t *testing.T) {
	p := NewPlayer("mickey", "pw", "Mickey", "Mouse", date(1928, 11, 18))
	assert.Equal(t, 0, p.HandValue(), "empty hand is worth 0")

	p.DrawCard(&sliceDealer{cards: []Card{NewCard(Hearts, Ace)}})
	p.DrawCard(&sliceDealer{cards: []Card{NewCard(Clubs, King)}})
	p.DrawCard(&sliceDealer{cards: []Card{NewCard(Spades, King)}})
	assert.Equal(t, 21, p.HandValue())
	assert.Equal(t, 13, p.Hand().HighestPrecedence())
}

func TestDrawCardFillsFirstEmptySlot(t *testing.T) {
	p := NewPlayer("donald", "pw", "Donald", "Duck", date(1934, 6, 9))
	d := &sliceDealer{cards: []Card{NewCard(Hearts, Two), NewCard(Hearts, Three), NewCard(Hearts, Four), NewCard(Hearts, Five)}}

	for i := 0; i < 5; i++ {
		p.DrawCard(d)
	}
	require.True(t, p.Hand().Full())
	assert.Equal(t, []Card{NewCard(Hearts, Two), NewCard(Hearts, Three), NewCard(Hearts, Four)}, p.Hand().Cards())
	assert.Len(t, d.cards, 1, "a full hand must not consume from the dealer")
}

func TestDrawCardFromEmptyDealerLeavesSlotEmpty(t *testing.T) {
	p := NewPlayer("goofy", "pw", "Goofy", "Goof", date(1932, 5, 25))
	p.DrawCard(&sliceDealer{})
	assert.Equal(t, 0, p.Hand().Len())
	assert.Equal(t, 0, p.Hand().FirstEmpty())
}

func TestSetHandCapacityIgnoresNonPositive(t *testing.T) {
	p := NewPlayer("daisy", "pw", "Daisy", "Duck", date(1940, 1, 1))
	assert.Equal(t, DefaultHandCapacity, p.HandCapacity())

	p.SetHandCapacity(0)
	assert.Equal(t, DefaultHandCapacity, p.HandCapacity())
	p.SetHandCapacity(-4)
	assert.Equal(t, DefaultHandCapacity, p.HandCapacity())

	p.SetHandCapacity(5)
	assert.Equal(t, 5, p.HandCapacity())
	p.SetHandCapacity(-1)
	assert.Equal(t, 5, p.HandCapacity(), "invalid request keeps the previous capacity")
}

func TestZeroValuePlayerHasDefaultHand(t *testing.T) {
	var p Player
	assert.Equal(t, DefaultHandCapacity, p.HandCapacity())
}

func TestIsEligible(t *testing.T) {
	now := date(2024, 11, 3)
	tests := []struct {
		name string
		dob  time.Time
		want bool
	}{
		{"exactly eighteen today", date(2006, 11, 3), true},
		{"eighteen tomorrow", date(2006, 11, 4), false},
		{"well over", date(1928, 11, 18), true},
		{"child", date(2015, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer("x", "pw", "X", "Y", tt.dob)
			assert.Equal(t, tt.want, p.IsEligible(now))
		})
	}
}

func TestParseDateOfBirth(t *testing.T) {
	d, err := ParseDateOfBirth(" 1928-11-18 ")
	require.NoError(t, err)
	assert.Equal(t, date(1928, 11, 18), d)

	_, err = ParseDateOfBirth("11/18/1928")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCloneHasIndependentHand(t *testing.T) {
	p := NewPlayer("minnie", "pw", "Minnie", "Mouse", date(1928, 11, 18))
	p.DrawCard(&sliceDealer{cards: []Card{NewCard(Diamonds, Nine)}})

	c := p.Clone()
	c.DrawCard(&sliceDealer{cards: []Card{NewCard(Diamonds, Ten)}})

	assert.Equal(t, 9, p.HandValue())
	assert.Equal(t, 19, c.HandValue())
}

func TestPersistenceWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("write players", cause)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, Persistence("noop", nil))
}
