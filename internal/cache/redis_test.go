package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type HistorySuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	history *History
	ctx     context.Context
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func (s *HistorySuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.history = NewHistory(s.client, "", nil)
	s.ctx = context.Background()
}

func (s *HistorySuite) TearDownTest() {
	_ = s.client.Close()
	s.mini.Close()
}

func round(gameID uuid.UUID, index int) models.RoundRecord {
	return models.RoundRecord{
		GameID:     gameID,
		RoundIndex: index,
		BettorID:   1,
		Wager:      10,
		Hands: []models.HandRecord{
			{PlayerID: 1, Username: "mickey", Cards: []models.Card{models.NewCard(models.Hearts, models.King)}, Value: 10},
			{PlayerID: 2, Username: "minnie", Cards: []models.Card{models.NewCard(models.Spades, models.Two)}, Value: 2},
		},
		Winners:   []int{1},
		Deltas:    map[int]int{1: 10, 2: -10},
		Timestamp: 1700000000,
	}
}

func (s *HistorySuite) TestPublishUsesDefaultQueue() {
	s.Require().NoError(s.history.PublishRound(s.ctx, round(uuid.New(), 1)))

	items, err := s.mini.List(DefaultQueueName)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *HistorySuite) TestRecentRoundsRoundTrip() {
	id := uuid.New()
	for i := 1; i <= 5; i++ {
		s.Require().NoError(s.history.PublishRound(s.ctx, round(id, i)))
	}

	recent, err := s.history.RecentRounds(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(recent, 3)
	s.Equal(3, recent[0].RoundIndex)
	s.Equal(5, recent[2].RoundIndex)
	s.Equal(id, recent[2].GameID)
	s.Equal(map[int]int{1: 10, 2: -10}, recent[2].Deltas)
	s.Equal(models.NewCard(models.Hearts, models.King), recent[2].Hands[0].Cards[0])

	n, err := s.history.Len(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(5, n)
}

func (s *HistorySuite) TestRecentRoundsEdgeCases() {
	recent, err := s.history.RecentRounds(s.ctx, 0)
	s.NoError(err)
	s.Empty(recent)

	recent, err = s.history.RecentRounds(s.ctx, 10)
	s.NoError(err)
	s.Empty(recent)
}

func (s *HistorySuite) TestSkipsUndecodableRecords() {
	_, err := s.mini.Push("custom", "not json")
	s.Require().NoError(err)
	h := NewHistory(s.client, "custom", nil)
	s.Require().NoError(h.PublishRound(s.ctx, round(uuid.New(), 1)))

	recent, err := h.RecentRounds(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(recent, 1)
}

func (s *HistorySuite) TestConnect() {
	rdb, err := Connect(s.ctx, s.mini.Addr(), 0)
	s.Require().NoError(err)
	s.NoError(rdb.Close())

	addr := s.mini.Addr()
	s.mini.Close()
	_, err = Connect(s.ctx, addr, 0)
	s.Error(err)
	s.mini = miniredis.RunT(s.T())
}
