package models

// DefaultHandCapacity is the number of cards a TopCard hand holds.
const DefaultHandCapacity = 3

// Dealer hands out cards one at a time. ok is false once nothing is left.
type Dealer interface {
	Deal() (card Card, ok bool)
}

type slot struct {
	card   Card
	filled bool
}

// Hand is a fixed-capacity, ordered sequence of card slots. Each slot is either
// filled with a card or empty.
type Hand struct {
	slots []slot
}

// NewHand returns an empty hand with the given capacity. A non-positive
// capacity yields DefaultHandCapacity.
func NewHand(capacity int) Hand {
	if capacity <= 0 {
		capacity = DefaultHandCapacity
	}
	return Hand{slots: make([]slot, capacity)}
}

// Capacity is the number of slots in the hand.
func (h *Hand) Capacity() int {
	return len(h.slots)
}

// Slot returns the card in slot i and whether the slot is filled.
func (h *Hand) Slot(i int) (Card, bool) {
	if i < 0 || i >= len(h.slots) {
		return Card{}, false
	}
	return h.slots[i].card, h.slots[i].filled
}

// FirstEmpty returns the index of the first empty slot, or -1 when full.
func (h *Hand) FirstEmpty() int {
	for i, s := range h.slots {
		if !s.filled {
			return i
		}
	}
	return -1
}

// Full reports whether every slot holds a card.
func (h *Hand) Full() bool {
	return h.FirstEmpty() == -1
}

// Place puts c into the first empty slot. It returns false if the hand is full.
func (h *Hand) Place(c Card) bool {
	i := h.FirstEmpty()
	if i < 0 {
		return false
	}
	h.slots[i] = slot{card: c, filled: true}
	return true
}

// Cards returns the cards in filled slots, in slot order.
func (h *Hand) Cards() []Card {
	cards := make([]Card, 0, len(h.slots))
	for _, s := range h.slots {
		if s.filled {
			cards = append(cards, s.card)
		}
	}
	return cards
}

// Len is the number of filled slots.
func (h *Hand) Len() int {
	n := 0
	for _, s := range h.slots {
		if s.filled {
			n++
		}
	}
	return n
}

// Value sums the rank values of the filled slots; empty slots count 0.
func (h *Hand) Value() int {
	total := 0
	for _, s := range h.slots {
		if s.filled {
			total += s.card.Value()
		}
	}
	return total
}

// HighestPrecedence returns the precedence of the strongest card held, or 0
// for an empty hand.
func (h *Hand) HighestPrecedence() int {
	best := 0
	for _, s := range h.slots {
		if s.filled && s.card.Precedence() > best {
			best = s.card.Precedence()
		}
	}
	return best
}

// Clear empties every slot, keeping the capacity.
func (h *Hand) Clear() {
	for i := range h.slots {
		h.slots[i] = slot{}
	}
}
