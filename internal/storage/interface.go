package storage

import (
	"context"

	"github.com/jason-s-yu/topcard/internal/models"
)

// Storage is the durable record store for players. Implementations hold
// records exactly as given: id assignment, username normalisation and
// credential hashing happen above this layer.
//
// Lookups that find nothing return models.ErrPlayerNotFound. Underlying I/O
// failures are wrapped with models.Persistence.
type Storage interface {
	// ListPlayers returns every record in storage order.
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	// GetPlayer returns the first record with the given id.
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	// GetPlayerByUsername returns the first record whose username equals
	// username exactly.
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
	// MaxPlayerID returns the largest id in storage, or 0 when empty.
	MaxPlayerID(ctx context.Context) (int, error)

	// InsertPlayer appends a record.
	InsertPlayer(ctx context.Context, p *models.Player) error
	// UpdatePlayer replaces the record with p.ID.
	UpdatePlayer(ctx context.Context, p *models.Player) error
	// DeletePlayer removes the record with the given id; absent ids are a no-op.
	DeletePlayer(ctx context.Context, id int) error
	// DeleteAllPlayers removes every record.
	DeleteAllPlayers(ctx context.Context) error

	Close() error
}
