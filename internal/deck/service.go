package deck

import (
	"math/rand/v2"

	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/sirupsen/logrus"
)

// Service is the card-handling facade used by front ends. It owns a single
// current deck.
type Service struct {
	deck   *Deck
	rng    *rand.Rand
	logger *logrus.Logger
}

// NewService returns a card service. rng may be nil to use the global source;
// logger may be nil.
func NewService(rng *rand.Rand, logger *logrus.Logger) *Service {
	return &Service{rng: rng, logger: logging.OrDiscard(logger)}
}

// CreateDeck replaces the current deck with a fresh, ordered one.
func (s *Service) CreateDeck() *Deck {
	s.deck = NewWithRand(s.rng)
	s.logger.Debug("created new deck")
	return s.deck
}

// CreateShuffledDeck replaces the current deck with a fresh, shuffled one.
func (s *Service) CreateShuffledDeck() *Deck {
	d := s.CreateDeck()
	d.Shuffle()
	s.logger.Debug("shuffled new deck")
	return d
}

// ShuffleDeck reshuffles the current deck, creating one if none exists.
func (s *Service) ShuffleDeck() {
	s.current().Shuffle()
	s.logger.Debug("deck shuffled")
}

// DrawCard deals the next card from the current deck.
func (s *Service) DrawCard() (models.Card, bool) {
	c, ok := s.current().Deal()
	if !ok {
		s.logger.Warn("deck is empty, no card drawn")
	}
	return c, ok
}

// RemainingCount is the number of undealt cards in the current deck.
func (s *Service) RemainingCount() int {
	return s.current().Remaining()
}

// IsEmpty reports whether the current deck has been fully dealt.
func (s *Service) IsEmpty() bool {
	return s.current().IsEmpty()
}

// HandValue sums the values of cards.
func (s *Service) HandValue(cards []models.Card) int {
	return HandValue(cards...)
}

func (s *Service) current() *Deck {
	if s.deck == nil {
		return s.CreateDeck()
	}
	return s.deck
}
