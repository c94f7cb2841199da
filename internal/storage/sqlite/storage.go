// Package sqlite is a transactional storage.Storage backed by an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/storage"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS players (
	id            INTEGER PRIMARY KEY,
	username      TEXT    NOT NULL,
	credential    TEXT    NOT NULL,
	first_name    TEXT    NOT NULL,
	last_name     TEXT    NOT NULL,
	date_of_birth TEXT    NOT NULL,
	points        INTEGER NOT NULL DEFAULT 0,
	is_admin      INTEGER NOT NULL DEFAULT 0
)`

const selectColumns = `SELECT id, username, credential, first_name, last_name, date_of_birth, points, is_admin FROM players`

// Storage implements storage.Storage on SQLite.
type Storage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (or creates) the database at path and applies the schema.
func New(path string, logger *logrus.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, models.Persistence("open sqlite database", err)
	}
	// a single connection keeps :memory: databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, models.Persistence("enable WAL mode", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, models.Persistence("migrate sqlite database", err)
	}
	return &Storage{db: db, logger: logging.OrDiscard(logger)}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
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
	return s.getOne(ctx, selectColumns+` WHERE id = ?`, id)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return s.getOne(ctx, selectColumns+` WHERE username = ? ORDER BY id LIMIT 1`, username)
}

func (s *Storage) MaxPlayerID(ctx context.Context) (int, error) {
	var maxID int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM players`).Scan(&maxID); err != nil {
		return 0, models.Persistence("read max player id", err)
	}
	return maxID, nil
}

func (s *Storage) InsertPlayer(ctx context.Context, p *models.Player) error {
	return s.inTx(ctx, "insert player", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, username, credential, first_name, last_name, date_of_birth, points, is_admin)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Username, p.Credential, p.FirstName, p.LastName,
			p.DateOfBirth.Format(models.DateLayout), p.Points, p.IsAdmin,
		)
		return err
	})
}

func (s *Storage) UpdatePlayer(ctx context.Context, p *models.Player) error {
	var affected int64
	err := s.inTx(ctx, "update player", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE players SET username = ?, credential = ?, first_name = ?, last_name = ?,
			 date_of_birth = ?, points = ?, is_admin = ? WHERE id = ?`,
			p.Username, p.Credential, p.FirstName, p.LastName,
			p.DateOfBirth.Format(models.DateLayout), p.Points, p.IsAdmin, p.ID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id int) error {
	return s.inTx(ctx, "delete player", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
		return err
	})
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) error {
	return s.inTx(ctx, "delete all players", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM players`)
		return err
	})
}

func (s *Storage) getOne(ctx context.Context, query string, args ...any) (*models.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPlayerNotFound
	}
	if err != nil {
		return nil, models.Persistence("get player", err)
	}
	return p, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Storage) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Persistence(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return models.Persistence(op, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Persistence(op, err)
	}
	s.logger.WithField("op", op).Debug("sqlite transaction committed")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*models.Player, error) {
	var (
		p   models.Player
		dob string
	)
	if err := row.Scan(&p.ID, &p.Username, &p.Credential, &p.FirstName, &p.LastName, &dob, &p.Points, &p.IsAdmin); err != nil {
		return nil, err
	}
	d, err := models.ParseDateOfBirth(dob)
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", p.ID, err)
	}
	out := models.NewPlayer(p.Username, p.Credential, p.FirstName, p.LastName, d)
	out.ID, out.Points, out.IsAdmin = p.ID, p.Points, p.IsAdmin
	return out, nil
}
