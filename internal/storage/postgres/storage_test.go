package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStorage connects to TOPCARD_TEST_PG_URL and empties the players
// table. Tests are skipped when no database is configured.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	url := os.Getenv("TOPCARD_TEST_PG_URL")
	if url == "" {
		t.Skip("TOPCARD_TEST_PG_URL not set")
	}
	st, err := New(context.Background(), url, nil)
	require.NoError(t, err)
	require.NoError(t, st.DeleteAllPlayers(context.Background()))
	t.Cleanup(func() {
		_ = st.DeleteAllPlayers(context.Background())
		st.Close()
	})
	return st
}

func record(id int, username string) *models.Player {
	p := models.NewPlayer(username, "hash-"+username, "First", "Last", time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC))
	p.ID = id
	return p
}

func TestRoundTrip(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	p := record(1, "mickey")
	p.Points = 12
	require.NoError(t, st.InsertPlayer(ctx, p))
	require.NoError(t, st.InsertPlayer(ctx, record(2, "minnie")))

	got, err := st.GetPlayerByUsername(ctx, "mickey")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, 12, got.Points)
	assert.True(t, p.DateOfBirth.Equal(got.DateOfBirth))

	got.Points = 30
	require.NoError(t, st.UpdatePlayer(ctx, got))
	got, err = st.GetPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Points)

	maxID, err := st.MaxPlayerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, maxID)

	require.NoError(t, st.DeletePlayer(ctx, 1))
	players, err := st.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "minnie", players[0].Username)
}

func TestNotFound(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	_, err := st.GetPlayer(ctx, 404)
	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
	assert.ErrorIs(t, st.UpdatePlayer(ctx, record(404, "ghost")), models.ErrPlayerNotFound)
}
