// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and verifies session tokens for logged-in players.
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// ttl is how long a token stays valid (0 => never expires).
	ttl time.Duration
	now func() time.Time
}

// ParseTokenTTL reads a TOKEN_EXPIRE_TIME style value: "", "0" or "never"
// mean tokens never expire; anything else is a Go duration.
func ParseTokenTTL(s string) (time.Duration, error) {
	if s == "" || s == "0" || s == "never" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

// NewIssuer generates a fresh ed25519 key pair.
func NewIssuer(ttl time.Duration, now func() time.Time) (*Issuer, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return newIssuer(privateKey, publicKey, ttl, now), nil
}

// NewIssuerFromPath reads ed25519 private/public keys from file.
func NewIssuerFromPath(privatePath, publicPath string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("key files are not raw ed25519 keys")
	}
	return newIssuer(ed25519.PrivateKey(privateKeyData), ed25519.PublicKey(publicKeyData), ttl, now), nil
}

// WriteKeyPair generates an ed25519 key pair and writes the raw keys to the
// given paths, in the form NewIssuerFromPath reads.
func WriteKeyPair(privatePath, publicPath string) error {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	if err := os.WriteFile(privatePath, privateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key file: %w", err)
	}
	if err := os.WriteFile(publicPath, publicKey, 0o644); err != nil {
		return fmt.Errorf("failed to write public key file: %w", err)
	}
	return nil
}

func newIssuer(priv ed25519.PrivateKey, pub ed25519.PublicKey, ttl time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{privateKey: priv, publicKey: pub, ttl: ttl, now: now}
}

// CreateJWT creates a signed JWT token with "sub" = playerID.
func (i *Issuer) CreateJWT(playerID int) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.Itoa(playerID),
		"iat": i.now().Unix(),
	}
	if i.ttl > 0 {
		claims["exp"] = i.now().Add(i.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(i.privateKey)
}

// AuthenticateJWT verifies a JWT string and returns the player id it was
// issued for.
func (i *Issuer) AuthenticateJWT(tokenString string) (int, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.publicKey, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return 0, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing sub in jwt")
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("invalid sub in jwt: %w", err)
	}
	return id, nil
}
