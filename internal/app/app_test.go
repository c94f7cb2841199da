package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/jason-s-yu/topcard/internal/config"
	"github.com/jason-s-yu/topcard/internal/game"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/storage/flatfile"
	"github.com/jason-s-yu/topcard/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage:      config.StorageFile,
		PlayersFile:  filepath.Join(dir, "players.txt"),
		SQLitePath:   filepath.Join(dir, "topcard.db"),
		HashScheme:   auth.SchemeBcrypt,
		BcryptCost:   bcrypt.MinCost,
		HistoryQueue: "rounds",
	}
}

func TestNewStorageSelectsBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	st, err := NewStorage(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &flatfile.Storage{}, st)
	require.NoError(t, st.Close())

	cfg.Storage = config.StorageSQLite
	st, err = NewStorage(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Storage{}, st)
	require.NoError(t, st.Close())

	cfg.Storage = "mongo"
	_, err = NewStorage(ctx, cfg, nil)
	assert.Error(t, err)
}

func TestPlayRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	mini := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisAddr = mini.Addr()
	cfg.HandSize = 4

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.History)

	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.Players.AddPlayers(ctx,
		models.NewPlayer("Mickey", "pw", "Mickey", "Mouse", dob),
		models.NewPlayer("Minnie", "pw", "Minnie", "Mouse", dob),
	))
	roster, err := a.Players.GetAllPlayers(ctx)
	require.NoError(t, err)

	e := a.NewEngine(roster, nil, game.TableRules{})
	e.StartGame()
	for _, hand := range e.Hands() {
		assert.Len(t, hand, 4)
	}
	_, err = e.ExecuteBettingRound(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, e.UpdateProfiles(ctx))

	total := 0
	for _, p := range roster {
		points, err := a.Players.RetrievePoints(ctx, p.ID)
		require.NoError(t, err)
		total += points
	}
	assert.Zero(t, total, "two-player settlement is zero-sum")

	rounds, err := a.History.RecentRounds(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, e.ID(), rounds[0].GameID)
}

func TestNewWithoutRedis(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	assert.Nil(t, a.History)
	assert.NoError(t, a.Close())
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	cfg := testConfig(t)
	cfg.RedisAddr = addr
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
