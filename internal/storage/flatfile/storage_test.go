package flatfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "data", "players.txt")
	st, err := New(s.path, nil)
	s.Require().NoError(err)
	s.storage = st
	s.ctx = context.Background()
}

func newRecord(id int, username string) *models.Player {
	p := models.NewPlayer(username, "$2a$04$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ01234", "First", "Last",
		time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC))
	p.ID = id
	return p
}

func (s *StorageSuite) TestNewCreatesFile() {
	_, err := os.Stat(s.path)
	s.NoError(err)

	players, err := s.storage.ListPlayers(s.ctx)
	s.NoError(err)
	s.Empty(players)

	maxID, err := s.storage.MaxPlayerID(s.ctx)
	s.NoError(err)
	s.Zero(maxID)
}

func (s *StorageSuite) TestInsertAndGet() {
	p := newRecord(1, "mickey")
	p.Points = 50
	p.IsAdmin = true
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, p))

	got, err := s.storage.GetPlayer(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("mickey", got.Username)
	s.Equal(p.Credential, got.Credential)
	s.Equal(50, got.Points)
	s.True(got.IsAdmin)
	s.Equal(p.DateOfBirth, got.DateOfBirth)

	got, err = s.storage.GetPlayerByUsername(s.ctx, "mickey")
	s.Require().NoError(err)
	s.Equal(1, got.ID)

	data, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Equal("1,mickey,"+p.Credential+",First,Last,1990-01-02,50,true\n", string(data))
}

func (s *StorageSuite) TestGetMissing() {
	_, err := s.storage.GetPlayer(s.ctx, 9)
	s.ErrorIs(err, models.ErrPlayerNotFound)
	_, err = s.storage.GetPlayerByUsername(s.ctx, "nobody")
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *StorageSuite) TestUpdateRewritesOnlyMatchingRecord() {
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, newRecord(1, "mickey")))
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, newRecord(2, "minnie")))

	upd := newRecord(2, "minnie")
	upd.Points = 75
	s.Require().NoError(s.storage.UpdatePlayer(s.ctx, upd))

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(0, players[0].Points)
	s.Equal(75, players[1].Points)

	s.ErrorIs(s.storage.UpdatePlayer(s.ctx, newRecord(3, "donald")), models.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDelete() {
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, newRecord(1, "mickey")))
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, newRecord(2, "minnie")))

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, 1))
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, 42), "absent id is a no-op")

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("minnie", players[0].Username)

	maxID, err := s.storage.MaxPlayerID(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, maxID)

	s.Require().NoError(s.storage.DeleteAllPlayers(s.ctx))
	players, err = s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *StorageSuite) TestToleratesWhitespaceAndBlankLines() {
	content := "  1 , mickey ,  hash1 ,Mickey,Mouse, 1928-11-18 , 10 , false  \n\n2 minnie hash2 Minnie Mouse 1928-11-18 0 true\n"
	s.Require().NoError(os.WriteFile(s.path, []byte(content), 0o644))

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("mickey", players[0].Username)
	s.Equal("hash1", players[0].Credential)
	s.Equal(10, players[0].Points)
	s.True(players[1].IsAdmin)
}

func (s *StorageSuite) TestMalformedRecordIsHardError() {
	content := "1,mickey,hash1,Mickey,Mouse,1928-11-18,10,false\n2,minnie,hash2,Minnie\n"
	s.Require().NoError(os.WriteFile(s.path, []byte(content), 0o644))

	_, err := s.storage.ListPlayers(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrPersistence)

	_, err = s.storage.GetPlayer(s.ctx, 1)
	s.ErrorIs(err, models.ErrPersistence)
}

func (s *StorageSuite) TestRejectsFieldsWithSeparators() {
	p := newRecord(1, "mickey")
	p.FirstName = "Mickey Jr"
	err := s.storage.InsertPlayer(s.ctx, p)
	s.ErrorIs(err, models.ErrValidation)

	p = newRecord(1, "mickey")
	p.LastName = ""
	s.ErrorIs(s.storage.InsertPlayer(s.ctx, p), models.ErrInvalidField)

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players, "rejected records must not be written")
}

func (s *StorageSuite) TestRewriteLeavesNoTempFiles() {
	s.Require().NoError(s.storage.InsertPlayer(s.ctx, newRecord(1, "mickey")))
	s.Require().NoError(s.storage.UpdatePlayer(s.ctx, newRecord(1, "mickey")))

	entries, err := os.ReadDir(filepath.Dir(s.path))
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *StorageSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.storage.ListPlayers(ctx)
	s.True(errors.Is(err, context.Canceled))
}

func TestReadFailureIsPersistenceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.txt")
	st, err := New(path, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = st.ListPlayers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.ErrorIs(t, err, os.ErrNotExist, "the original cause stays attached")
}
