// Package postgres is a storage.Storage backed by a PostgreSQL pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/storage"
	"github.com/sirupsen/logrus"
)

const schema = `
	CREATE TABLE IF NOT EXISTS players (
		id            INTEGER PRIMARY KEY,
		username      TEXT    NOT NULL,
		credential    TEXT    NOT NULL,
		first_name    TEXT    NOT NULL,
		last_name     TEXT    NOT NULL,
		date_of_birth DATE    NOT NULL,
		points        INTEGER NOT NULL DEFAULT 0,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE
	)
`

const selectColumns = `
	SELECT id, username, credential, first_name, last_name, date_of_birth, points, is_admin
	FROM players
`

// Storage implements storage.Storage on a pgx connection pool.
type Storage struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New connects to the database at connStr, pings it and creates the players
// table if needed.
func New(ctx context.Context, connStr string, logger *logrus.Logger) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, models.Persistence("parse postgres config", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, models.Persistence("create postgres pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, models.Persistence("ping postgres", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, models.Persistence("migrate postgres", err)
	}

	logger = logging.OrDiscard(logger)
	logger.WithField("host", config.ConnConfig.Host).Info("connected to postgres")
	return &Storage{pool: pool, logger: logger}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, models.Persistence("list players", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, models.Persistence("list players", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Persistence("list players", err)
	}
	return players, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	return s.getOne(ctx, selectColumns+` WHERE id=$1`, id)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return s.getOne(ctx, selectColumns+` WHERE username=$1 ORDER BY id LIMIT 1`, username)
}

func (s *Storage) MaxPlayerID(ctx context.Context) (int, error) {
	var maxID int
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM players`).Scan(&maxID); err != nil {
		return 0, models.Persistence("read max player id", err)
	}
	return maxID, nil
}

func (s *Storage) InsertPlayer(ctx context.Context, p *models.Player) error {
	q := `
		INSERT INTO players (id, username, credential, first_name, last_name, date_of_birth, points, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			p.ID, p.Username, p.Credential, p.FirstName, p.LastName,
			p.DateOfBirth, p.Points, p.IsAdmin,
		)
		return err
	})
	if err != nil {
		return models.Persistence("insert player", err)
	}
	return nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, p *models.Player) error {
	q := `
		UPDATE players
		SET username=$2, credential=$3, first_name=$4, last_name=$5,
		    date_of_birth=$6, points=$7, is_admin=$8
		WHERE id=$1
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q,
			p.ID, p.Username, p.Credential, p.FirstName, p.LastName,
			p.DateOfBirth, p.Points, p.IsAdmin,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return models.ErrPlayerNotFound
		}
		return nil
	})
	if errors.Is(err, models.ErrPlayerNotFound) {
		return err
	}
	if err != nil {
		return models.Persistence("update player", err)
	}
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id int) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM players WHERE id=$1`, id)
		return err
	})
	if err != nil {
		return models.Persistence("delete player", err)
	}
	return nil
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM players`)
		return err
	})
	if err != nil {
		return models.Persistence("delete all players", err)
	}
	s.logger.Warn("all player records deleted")
	return nil
}

func (s *Storage) getOne(ctx context.Context, q string, args ...any) (*models.Player, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPlayerNotFound
	}
	if err != nil {
		return nil, models.Persistence("get player", err)
	}
	return p, nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var (
		id, points                                 int
		username, credential, firstName, lastName string
		dob                                        time.Time
		isAdmin                                    bool
	)
	if err := row.Scan(&id, &username, &credential, &firstName, &lastName, &dob, &points, &isAdmin); err != nil {
		return nil, err
	}
	if dob.IsZero() {
		return nil, fmt.Errorf("player %d: %w", id, models.ErrInvalidDate)
	}
	p := models.NewPlayer(username, credential, firstName, lastName,
		time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC))
	p.ID, p.Points, p.IsAdmin = id, points, isAdmin
	return p, nil
}
