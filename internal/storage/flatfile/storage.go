// Package flatfile stores player records in a line-oriented text file, one
// comma-delimited record per line.
//
// Every mutation other than an insert reads the whole file and rewrites it.
// Rewrites go to a temporary file in the same directory which is then renamed
// over the original, so a crash mid-write leaves the previous contents intact.
// There is no locking: concurrent writers can lose updates.
package flatfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/storage"
	"github.com/sirupsen/logrus"
)

// Storage is a file-backed implementation of storage.Storage.
type Storage struct {
	path   string
	logger *logrus.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens the record file at path, creating it (and its directory) if it
// does not exist.
func New(path string, logger *logrus.Logger) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, models.Persistence("create record directory", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, models.Persistence("open record file", err)
	}
	if err := f.Close(); err != nil {
		return nil, models.Persistence("open record file", err)
	}
	return &Storage{path: path, logger: logging.OrDiscard(logger)}, nil
}

// Close is a no-op; the file is only held open for the duration of a call.
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	lines, err := s.readLines(ctx)
	if err != nil {
		return nil, err
	}
	players := make([]*models.Player, 0, len(lines))
	for i, line := range lines {
		p, err := decodeRecord(line)
		if err != nil {
			return nil, models.Persistence(fmt.Sprintf("read %s record %d", s.path, i+1), err)
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	return s.find(ctx, func(p *models.Player) bool { return p.ID == id })
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return s.find(ctx, func(p *models.Player) bool { return p.Username == username })
}

func (s *Storage) MaxPlayerID(ctx context.Context) (int, error) {
	lines, err := s.readLines(ctx)
	if err != nil {
		return 0, err
	}
	maxID := 0
	for i, line := range lines {
		id, err := recordID(line)
		if err != nil {
			return 0, models.Persistence(fmt.Sprintf("read %s record %d", s.path, i+1), err)
		}
		maxID = max(maxID, id)
	}
	return maxID, nil
}

func (s *Storage) InsertPlayer(ctx context.Context, p *models.Player) error {
	line, err := encodeRecord(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return models.Persistence("append player record", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return models.Persistence("append player record", err)
	}
	if err := f.Close(); err != nil {
		return models.Persistence("append player record", err)
	}
	s.logger.WithFields(logrus.Fields{"id": p.ID, "file": s.path}).Debug("player record appended")
	return nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, p *models.Player) error {
	line, err := encodeRecord(p)
	if err != nil {
		return err
	}
	lines, err := s.readLines(ctx)
	if err != nil {
		return err
	}

	found := false
	for i, l := range lines {
		id, err := recordID(l)
		if err != nil {
			return models.Persistence(fmt.Sprintf("read %s record %d", s.path, i+1), err)
		}
		if id == p.ID && !found {
			lines[i] = line
			found = true
		}
	}
	if !found {
		return models.ErrPlayerNotFound
	}
	return s.writeLines(lines)
}

func (s *Storage) DeletePlayer(ctx context.Context, id int) error {
	lines, err := s.readLines(ctx)
	if err != nil {
		return err
	}

	kept := lines[:0]
	removed := 0
	for i, l := range lines {
		lid, err := recordID(l)
		if err != nil {
			return models.Persistence(fmt.Sprintf("read %s record %d", s.path, i+1), err)
		}
		if lid == id {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	if removed == 0 {
		return nil
	}
	return s.writeLines(kept)
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeLines(nil)
}

// find scans every record in order and returns the first match.
func (s *Storage) find(ctx context.Context, match func(*models.Player) bool) (*models.Player, error) {
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if match(p) {
			return p, nil
		}
	}
	return nil, models.ErrPlayerNotFound
}

// readLines returns every non-blank line of the record file.
func (s *Storage) readLines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, models.Persistence("read player records", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, models.Persistence("read player records", err)
	}
	return lines, nil
}

// writeLines replaces the record file with lines.
func (s *Storage) writeLines(lines []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return models.Persistence("write player records", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err = w.WriteString(line + "\n"); err != nil {
			return models.Persistence("write player records", err)
		}
	}
	if err = w.Flush(); err != nil {
		return models.Persistence("write player records", err)
	}
	if err = tmp.Sync(); err != nil {
		return models.Persistence("write player records", err)
	}
	if err = tmp.Close(); err != nil {
		return models.Persistence("write player records", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return models.Persistence("write player records", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return models.Persistence("replace player records", err)
	}
	s.logger.WithFields(logrus.Fields{"records": len(lines), "file": s.path}).Debug("player records rewritten")
	return nil
}
