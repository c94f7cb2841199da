// Package game runs one TopCard session over a roster of players: dealing,
// betting settlement and winner determination. All game state lives in
// memory; persistence is delegated to a ProfileUpdater.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/topcard/internal/deck"
	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle stage of an Engine.
type State int

const (
	StateCreated State = iota
	StateDealt
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateDealt:
		return "DEALT"
	case StateSettled:
		return "SETTLED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNoStore is returned by profile updates when the engine has no store.
var ErrNoStore = errors.New("no player store configured")

// ProfileUpdater persists a player's profile and points.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, p *models.Player) error
}

// Presenter shows table state to a human.
type Presenter interface {
	ShowHands(players []*models.Player)
	DisplayWinners(winners []*models.Player)
}

// RoundRecorder keeps a history of settled rounds.
type RoundRecorder interface {
	PublishRound(ctx context.Context, record models.RoundRecord) error
}

// Config holds the engine's collaborators. Every field is optional.
type Config struct {
	Rules      TableRules
	Store      ProfileUpdater
	Presenter  Presenter
	Recorder   RoundRecorder
	Settlement SettlementPolicy
	// Cards supplies a fresh shuffled deck for every deal.
	Cards  *deck.Service
	Logger *logrus.Logger
	Now    func() time.Time
}

// Engine orchestrates a single game session.
type Engine struct {
	id      uuid.UUID
	players []*models.Player
	state   State
	round   int

	rules      TableRules
	store      ProfileUpdater
	presenter  Presenter
	recorder   RoundRecorder
	settlement SettlementPolicy
	cards      *deck.Service
	logger     *logrus.Logger
	now        func() time.Time
}

// NewEngine seats players in the given order; the first is the active
// bettor. A positive Rules.HandSize resizes every hand.
func NewEngine(players []*models.Player, cfg Config) *Engine {
	logger := logging.OrDiscard(cfg.Logger)
	e := &Engine{
		id:         uuid.New(),
		players:    players,
		state:      StateCreated,
		rules:      cfg.Rules,
		store:      cfg.Store,
		presenter:  cfg.Presenter,
		recorder:   cfg.Recorder,
		settlement: cfg.Settlement,
		cards:      cfg.Cards,
		logger:     logger,
		now:        cfg.Now,
	}
	if e.settlement == nil {
		e.settlement = DefaultSettlement{}
	}
	if e.cards == nil {
		e.cards = deck.NewService(nil, logger)
	}
	if e.now == nil {
		e.now = time.Now
	}
	for _, p := range players {
		p.SetHandCapacity(e.rules.HandSize)
	}
	return e
}

func (e *Engine) ID() uuid.UUID { return e.id }

func (e *Engine) State() State { return e.state }

// Round is the number of betting rounds settled so far.
func (e *Engine) Round() int { return e.round }

// Players returns the roster in seating order.
func (e *Engine) Players() []*models.Player {
	return append([]*models.Player(nil), e.players...)
}

func (e *Engine) log() *logrus.Entry {
	return e.logger.WithField("game", e.id)
}

// StartGame clears every hand, shuffles a fresh deck and deals one card per
// player per pass until every hand is full or the deck runs out. It may be
// called again to redeal.
func (e *Engine) StartGame() {
	for _, p := range e.players {
		p.ClearHand()
	}

	d := e.cards.CreateShuffledDeck()
	for dealt := true; dealt && !d.IsEmpty(); {
		dealt = false
		for _, p := range e.players {
			if p.Hand().Full() || d.IsEmpty() {
				continue
			}
			p.DrawCard(d)
			dealt = true
		}
	}

	e.state = StateDealt
	fields := logrus.Fields{"players": len(e.players), "remaining": d.Remaining()}
	if short := e.emptySlots(); short > 0 {
		fields["emptySlots"] = short
		e.log().WithFields(fields).Warn("deck exhausted before every hand was full")
		return
	}
	e.log().WithFields(fields).Info("cards dealt")
}

func (e *Engine) emptySlots() int {
	n := 0
	for _, p := range e.players {
		n += p.HandCapacity() - p.Hand().Len()
	}
	return n
}

// Hands returns each player's held cards in roster order. Empty slots are
// omitted.
func (e *Engine) Hands() [][]models.Card {
	hands := make([][]models.Card, len(e.players))
	for i, p := range e.players {
		hands[i] = p.Hand().Cards()
	}
	return hands
}

// ShowHands passes the roster to the presenter.
func (e *Engine) ShowHands() {
	if e.presenter != nil {
		e.presenter.ShowHands(e.Players())
	}
}

// ExecuteBettingRound has the first player wager points against the rest of
// the table and applies the settlement policy to every balance. Cards must
// have been dealt. The round is published to the recorder, if any; a
// recorder failure is logged and does not undo the settlement.
func (e *Engine) ExecuteBettingRound(ctx context.Context, points int) ([]*models.Player, error) {
	if e.state != StateDealt && e.state != StateSettled {
		return nil, models.ErrNotDealt
	}
	if points < 0 {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidBet, points)
	}
	if e.rules.MaxBet > 0 && points > e.rules.MaxBet {
		return nil, fmt.Errorf("%w: %d exceeds the table limit of %d", models.ErrInvalidBet, points, e.rules.MaxBet)
	}

	const bettor = 0
	deltas := e.settlement.Settle(e.players, bettor, points)
	for i, p := range e.players {
		if i < len(deltas) {
			p.AddPoints(deltas[i])
		}
	}
	e.state = StateSettled
	e.round++

	e.log().WithFields(logrus.Fields{"round": e.round, "wager": points, "deltas": deltas}).Info("betting round settled")
	e.record(ctx, bettor, points, deltas)
	return e.Players(), nil
}

func (e *Engine) record(ctx context.Context, bettor, points int, deltas []int) {
	if e.recorder == nil {
		return
	}

	rec := models.RoundRecord{
		GameID:     e.id,
		RoundIndex: e.round,
		Wager:      points,
		Deltas:     make(map[int]int, len(e.players)),
		Timestamp:  e.now().Unix(),
	}
	if bettor < len(e.players) {
		rec.BettorID = e.players[bettor].ID
	}
	for i, p := range e.players {
		rec.Hands = append(rec.Hands, models.HandRecord{
			PlayerID: p.ID,
			Username: p.Username,
			Cards:    p.Hand().Cards(),
			Value:    p.HandValue(),
		})
		if i < len(deltas) {
			rec.Deltas[p.ID] += deltas[i]
		}
	}
	for _, w := range e.DetermineWinner() {
		rec.Winners = append(rec.Winners, w.ID)
	}

	if err := e.recorder.PublishRound(ctx, rec); err != nil {
		e.log().WithError(err).Warn("failed to record round")
	}
}

// DetermineWinner returns the players with the highest hand value. Ties are
// broken by the highest single card precedence; players still tied are all
// returned.
func (e *Engine) DetermineWinner() []*models.Player {
	idx := make([]int, len(e.players))
	for i := range idx {
		idx[i] = i
	}
	var winners []*models.Player
	for _, i := range leaders(e.players, idx) {
		winners = append(winners, e.players[i])
	}
	return winners
}

// DisplayWinners passes winners to the presenter.
func (e *Engine) DisplayWinners(winners []*models.Player) {
	if e.presenter != nil {
		e.presenter.DisplayWinners(winners)
	}
}

// UpdateProfile persists p through the configured store.
func (e *Engine) UpdateProfile(ctx context.Context, p *models.Player) error {
	if e.store == nil {
		return ErrNoStore
	}
	return e.store.UpdateProfile(ctx, p)
}

// UpdateProfiles persists each of ps, or the whole roster when none are
// given. It stops at the first failure.
func (e *Engine) UpdateProfiles(ctx context.Context, ps ...*models.Player) error {
	if len(ps) == 0 {
		ps = e.players
	}
	for _, p := range ps {
		if err := e.UpdateProfile(ctx, p); err != nil {
			return fmt.Errorf("update player %d: %w", p.ID, err)
		}
	}
	return nil
}
