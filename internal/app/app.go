// Package app assembles the TopCard components from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/jason-s-yu/topcard/internal/cache"
	"github.com/jason-s-yu/topcard/internal/config"
	"github.com/jason-s-yu/topcard/internal/deck"
	"github.com/jason-s-yu/topcard/internal/game"
	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/players"
	"github.com/jason-s-yu/topcard/internal/storage"
	"github.com/jason-s-yu/topcard/internal/storage/flatfile"
	"github.com/jason-s-yu/topcard/internal/storage/postgres"
	"github.com/jason-s-yu/topcard/internal/storage/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ game.RoundRecorder = (*cache.History)(nil)

// App holds the wired services for one process.
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Store   storage.Storage
	Players *players.Service
	// History is nil when no Redis address is configured.
	History *cache.History

	rdb *redis.Client
	now func() time.Time
}

// New opens the configured storage backend and, if configured, the Redis
// round history.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)

	store, err := NewStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(cfg.HashScheme, cfg.BcryptCost)
	if err != nil {
		store.Close()
		return nil, err
	}
	var issuer *auth.Issuer
	if cfg.JWTPrivateKeyPath != "" {
		issuer, err = auth.NewIssuerFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TokenTTL, nil)
	} else {
		issuer, err = auth.NewIssuer(cfg.TokenTTL, nil)
	}
	if err != nil {
		store.Close()
		return nil, err
	}

	svc, err := players.NewService(store, players.Config{
		Hasher:      hasher,
		Issuer:      issuer,
		SignupBonus: cfg.SignupBonus,
		Logger:      logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Store: store, Players: svc, now: time.Now}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.rdb = rdb
		a.History = cache.NewHistory(rdb, cfg.HistoryQueue, logger)
	}

	logger.WithFields(logrus.Fields{
		"storage": cfg.Storage,
		"hash":    hasher.Scheme(),
		"history": a.History != nil,
	}).Debug("application initialised")
	return a, nil
}

// NewStorage returns the storage backend named by cfg.Storage.
func NewStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StorageFile, "":
		return flatfile.New(cfg.PlayersFile, logger)
	case config.StorageSQLite:
		return sqlite.New(cfg.SQLitePath, logger)
	case config.StoragePostgres:
		return postgres.New(ctx, cfg.PostgresURL, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// NewEngine seats players at a new table using the configured rules,
// presenter and round history.
func (a *App) NewEngine(roster []*models.Player, presenter game.Presenter, rules game.TableRules) *game.Engine {
	if rules.HandSize == 0 {
		rules.HandSize = a.Config.HandSize
	}
	cfg := game.Config{
		Rules:     rules,
		Store:     a.Players,
		Presenter: presenter,
		Cards:     deck.NewService(nil, a.Logger),
		Logger:    a.Logger,
		Now:       a.now,
	}
	if a.History != nil {
		cfg.Recorder = a.History
	}
	return game.NewEngine(roster, cfg)
}

// Close releases storage and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
