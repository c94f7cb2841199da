// Package deck implements the standard 52-card deck used by TopCard.
package deck

import (
	"math/rand/v2"

	"github.com/jason-s-yu/topcard/internal/models"
)

// Size is the number of cards in a full deck.
const Size = 52

// Deck is an ordered set of the 52 distinct cards plus a deal cursor.
// Dealing never repeats a card until the next Shuffle.
type Deck struct {
	cards  [Size]models.Card
	cursor int
	rng    *rand.Rand
}

var _ models.Dealer = (*Deck)(nil)

// New builds a deck in canonical order (suit-major, rank ascending) using the
// global random source for shuffling.
func New() *Deck {
	return NewWithRand(nil)
}

// NewWithRand builds a canonical deck that shuffles with r. A nil r uses the
// global random source.
func NewWithRand(r *rand.Rand) *Deck {
	d := &Deck{rng: r}
	i := 0
	for _, s := range models.Suits {
		for _, rk := range models.Ranks {
			d.cards[i] = models.NewCard(s, rk)
			i++
		}
	}
	return d
}

// Shuffle permutes all 52 cards uniformly at random (Fisher-Yates) and resets
// the cursor so the whole deck can be dealt again.
func (d *Deck) Shuffle() {
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if d.rng != nil {
		d.rng.Shuffle(Size, swap)
	} else {
		rand.Shuffle(Size, swap)
	}
	d.cursor = 0
}

// Deal returns the card at the cursor and advances it. ok is false once all
// 52 cards have been dealt.
func (d *Deck) Deal() (models.Card, bool) {
	if d.cursor >= Size {
		return models.Card{}, false
	}
	c := d.cards[d.cursor]
	d.cursor++
	return c, true
}

// Remaining is the number of cards not yet dealt.
func (d *Deck) Remaining() int {
	return Size - d.cursor
}

// IsEmpty reports whether every card has been dealt.
func (d *Deck) IsEmpty() bool {
	return d.cursor >= Size
}

// Cards returns the deck order, including already dealt cards.
func (d *Deck) Cards() []models.Card {
	out := make([]models.Card, Size)
	copy(out, d.cards[:])
	return out
}

// HandValue sums the values of the given cards.
func HandValue(cards ...models.Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}
