// Package players is the player directory: it layers id assignment, username
// uniqueness, credential hashing and login on top of a storage.Storage.
package players

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/jason-s-yu/topcard/internal/storage"
	"github.com/sirupsen/logrus"
)

// Config holds the optional collaborators of a Service.
type Config struct {
	// Hasher hashes new credentials. Nil means bcrypt at the default cost.
	Hasher *auth.Hasher
	// Issuer signs session tokens on login. Nil disables tokens.
	Issuer *auth.Issuer
	// SignupBonus is credited to every newly added player.
	SignupBonus int
	Now         func() time.Time
	Logger      *logrus.Logger
}

// Service implements the player directory operations.
type Service struct {
	store       storage.Storage
	hasher      *auth.Hasher
	issuer      *auth.Issuer
	signupBonus int
	now         func() time.Time
	logger      *logrus.Logger
}

// NewService wraps store with the directory policy.
func NewService(store storage.Storage, cfg Config) (*Service, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		h, err := auth.NewHasher(auth.SchemeBcrypt, 0)
		if err != nil {
			return nil, err
		}
		hasher = h
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		hasher:      hasher,
		issuer:      cfg.Issuer,
		signupBonus: cfg.SignupBonus,
		now:         now,
		logger:      logging.OrDiscard(cfg.Logger),
	}, nil
}

// AddPlayer assigns p the next free id, lower-cases its username, hashes its
// credential and appends it. p is updated in place to match the stored record.
func (s *Service) AddPlayer(ctx context.Context, p *models.Player) error {
	username := strings.ToLower(p.Username)
	_, taken, err := found(s.store.GetPlayerByUsername(ctx, username))
	if err != nil {
		return err
	}
	if taken {
		s.logger.WithField("username", username).Warn("player already exists")
		return fmt.Errorf("%w: %s", models.ErrDuplicateUsername, username)
	}

	maxID, err := s.store.MaxPlayerID(ctx)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(p.Credential)
	if err != nil {
		return err
	}

	rec := p.Clone()
	rec.ID = maxID + 1
	rec.Username = username
	rec.Credential = hash
	rec.Points += s.signupBonus
	if err := s.store.InsertPlayer(ctx, rec); err != nil {
		return err
	}

	p.ID, p.Username, p.Credential, p.Points = rec.ID, rec.Username, rec.Credential, rec.Points
	s.logger.WithFields(logrus.Fields{"id": p.ID, "username": p.Username}).Info("player added")
	return nil
}

// AddPlayers adds each player in order. Players rejected by validation (such
// as a taken username) are skipped and reported in the returned error; any
// other failure stops the batch.
func (s *Service) AddPlayers(ctx context.Context, ps ...*models.Player) error {
	var skipped []error
	for _, p := range ps {
		err := s.AddPlayer(ctx, p)
		if err == nil {
			continue
		}
		if errors.Is(err, models.ErrValidation) {
			skipped = append(skipped, err)
			continue
		}
		return errors.Join(append(skipped, err)...)
	}
	return errors.Join(skipped...)
}

// GetByID returns the player with the given id; ok is false when there is none.
func (s *Service) GetByID(ctx context.Context, id int) (p *models.Player, ok bool, err error) {
	return found(s.store.GetPlayer(ctx, id))
}

// GetByUsername looks a player up by username, ignoring case.
func (s *Service) GetByUsername(ctx context.Context, username string) (p *models.Player, ok bool, err error) {
	return found(s.store.GetPlayerByUsername(ctx, strings.ToLower(username)))
}

// GetAllPlayers returns every stored player in storage order.
func (s *Service) GetAllPlayers(ctx context.Context) ([]*models.Player, error) {
	return s.store.ListPlayers(ctx)
}

// RemovePlayer deletes the player with the given id, if any.
func (s *Service) RemovePlayer(ctx context.Context, id int) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("id", id).Info("player removed")
	return nil
}

// UpdateProfile replaces the stored record carrying p.ID with p. The stored
// credential hash is kept when p carries that hash, an empty credential, or
// the plaintext it was made from; anything else is hashed as a new password.
func (s *Service) UpdateProfile(ctx context.Context, p *models.Player) error {
	stored, err := s.store.GetPlayer(ctx, p.ID)
	if err != nil {
		return err
	}

	rec := p.Clone()
	rec.Username = strings.ToLower(p.Username)
	if rec.Username != stored.Username {
		other, ok, err := found(s.store.GetPlayerByUsername(ctx, rec.Username))
		if err != nil {
			return err
		}
		if ok && other.ID != p.ID {
			return fmt.Errorf("%w: %s", models.ErrDuplicateUsername, rec.Username)
		}
	}

	switch {
	case p.Credential == "" || p.Credential == stored.Credential:
		rec.Credential = stored.Credential
	case s.hasher.Verify(p.Credential, stored.Credential):
		rec.Credential = stored.Credential
	default:
		hash, err := s.hasher.Hash(p.Credential)
		if err != nil {
			return err
		}
		rec.Credential = hash
		s.logger.WithField("id", p.ID).Info("player credential changed")
	}

	if err := s.store.UpdatePlayer(ctx, rec); err != nil {
		return err
	}
	p.Username, p.Credential = rec.Username, rec.Credential
	return nil
}

// UpdateProfiles updates each player in order, stopping at the first error.
func (s *Service) UpdateProfiles(ctx context.Context, ps ...*models.Player) error {
	for _, p := range ps {
		if err := s.UpdateProfile(ctx, p); err != nil {
			return fmt.Errorf("update player %d: %w", p.ID, err)
		}
	}
	return nil
}

// UpdateProfileFields changes the name and date of birth of a stored player.
func (s *Service) UpdateProfileFields(ctx context.Context, id int, firstName, lastName string, dob time.Time) error {
	return s.modify(ctx, id, func(p *models.Player) {
		p.FirstName = firstName
		p.LastName = lastName
		p.DateOfBirth = dob
	})
}

// ChangePoints adds delta (possibly negative) to a player's balance and
// returns the new balance.
func (s *Service) ChangePoints(ctx context.Context, id, delta int) (int, error) {
	var balance int
	err := s.modify(ctx, id, func(p *models.Player) {
		p.AddPoints(delta)
		balance = p.Points
	})
	return balance, err
}

// RetrievePoints returns a player's balance.
func (s *Service) RetrievePoints(ctx context.Context, id int) (int, error) {
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Points, nil
}

// MakeAdmin grants admin rights.
func (s *Service) MakeAdmin(ctx context.Context, id int) error {
	return s.modify(ctx, id, func(p *models.Player) { p.IsAdmin = true })
}

// IsAdmin reports whether the player is an admin. Unknown ids are not admins.
func (s *Service) IsAdmin(ctx context.Context, id int) (bool, error) {
	p, ok, err := s.GetByID(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return p.IsAdmin, nil
}

// VerifyCredential reports whether plain matches the stored hash.
func (s *Service) VerifyCredential(plain, hash string) bool {
	return s.hasher.Verify(plain, hash)
}

// IsEligible reports whether p is old enough to play today.
func (s *Service) IsEligible(p *models.Player) bool {
	return p.IsEligible(s.now())
}

// Login checks a username and password. On success it returns the player,
// marked as logged in, and a session token (empty when no issuer is set).
func (s *Service) Login(ctx context.Context, username, plain string) (*models.Player, string, error) {
	p, ok, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if !ok || !s.hasher.Verify(plain, p.Credential) {
		s.logger.WithField("username", username).Warn("failed login attempt")
		return nil, "", models.ErrInvalidCredentials
	}
	p.IsLoggedIn = true

	var token string
	if s.issuer != nil {
		token, err = s.issuer.CreateJWT(p.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create session token: %w", err)
		}
	}
	s.logger.WithFields(logrus.Fields{"id": p.ID, "username": p.Username}).Info("player logged in")
	return p, token, nil
}

// Authenticate validates a session token and returns the id of the player it
// was issued to.
func (s *Service) Authenticate(token string) (int, error) {
	if s.issuer == nil {
		return 0, models.ErrInvalidSession
	}
	id, err := s.issuer.AuthenticateJWT(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrInvalidSession, err)
	}
	return id, nil
}

// Reset deletes every player record.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.DeleteAllPlayers(ctx); err != nil {
		return err
	}
	s.logger.Warn("player directory reset")
	return nil
}

// modify applies fn to the stored record with the given id and writes it back.
func (s *Service) modify(ctx context.Context, id int, fn func(*models.Player)) error {
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	fn(p)
	return s.store.UpdatePlayer(ctx, p)
}

// found turns ErrNotFound into ok == false.
func found(p *models.Player, err error) (*models.Player, bool, error) {
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
