package models

import (
	"fmt"
	"strings"
	"time"
)

// EligibleAge is the minimum age, in whole years, required to play.
const EligibleAge = 18

// DateLayout is the calendar-date layout used for dates of birth.
const DateLayout = "2006-01-02"

// Player is an account holder and, during a session, a seat at the table.
//
// Credential holds the plaintext password on its way into the store and the
// stored hash once the player has been read back.
type Player struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Credential  string    `json:"-"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Points      int       `json:"points"`
	IsAdmin     bool      `json:"isAdmin"`
	IsLoggedIn  bool      `json:"isLoggedIn"`

	hand Hand
}

// NewPlayer builds a player with zero points, no admin rights and an empty
// hand of DefaultHandCapacity slots.
func NewPlayer(username, credential, firstName, lastName string, dob time.Time) *Player {
	return &Player{
		Username:    username,
		Credential:  credential,
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: dob,
		hand:        NewHand(DefaultHandCapacity),
	}
}

// ParseDateOfBirth parses a YYYY-MM-DD date.
func ParseDateOfBirth(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Hand returns the player's hand. A zero-value Player gets a default hand on
// first use.
func (p *Player) Hand() *Hand {
	if p.hand.slots == nil {
		p.hand = NewHand(DefaultHandCapacity)
	}
	return &p.hand
}

// HandCapacity is the number of card slots the player holds.
func (p *Player) HandCapacity() int {
	return p.Hand().Capacity()
}

// SetHandCapacity resizes the hand to n empty slots. Non-positive values are
// ignored and the current capacity is kept.
func (p *Player) SetHandCapacity(n int) {
	if n <= 0 {
		return
	}
	p.hand = NewHand(n)
}

// ClearHand empties every slot of the hand.
func (p *Player) ClearHand() {
	p.Hand().Clear()
}

// DrawCard deals one card from d into the first empty slot. A full hand or an
// exhausted dealer leaves the hand unchanged.
func (p *Player) DrawCard(d Dealer) {
	h := p.Hand()
	if h.Full() {
		return
	}
	card, ok := d.Deal()
	if !ok {
		return
	}
	h.Place(card)
}

// HandValue sums the values of the cards currently held.
func (p *Player) HandValue() int {
	return p.Hand().Value()
}

// AddPoints adjusts the point balance by delta, which may be negative.
func (p *Player) AddPoints(delta int) {
	p.Points += delta
}

// Age returns the number of whole years between the date of birth and now.
func (p *Player) Age(now time.Time) int {
	dob := p.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// IsEligible reports whether the player is at least EligibleAge years old at
// now. A player turning 18 today is eligible.
func (p *Player) IsEligible(now time.Time) bool {
	return p.Age(now) >= EligibleAge
}

// Clone returns a copy of the player with an independent hand.
func (p *Player) Clone() *Player {
	c := *p
	c.hand = Hand{slots: append([]slot(nil), p.Hand().slots...)}
	return &c
}

func (p *Player) String() string {
	return fmt.Sprintf("Player{id=%d, username=%s, name=%s %s, dob=%s, points=%d, admin=%t, loggedIn=%t}",
		p.ID, p.Username, p.FirstName, p.LastName, p.DateOfBirth.Format(DateLayout), p.Points, p.IsAdmin, p.IsLoggedIn)
}
