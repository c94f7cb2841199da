// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash indicates that the stored password hash is in an invalid format.
var ErrInvalidHash = errors.New("the encoded hash is not in the correct format")

// ErrIncompatibleVersion indicates that the Argon2 version is incompatible.
var ErrIncompatibleVersion = errors.New("incompatible version of argon2")

// Scheme names a password hashing algorithm.
type Scheme string

const (
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeArgon2id Scheme = "argon2id"
)

// Hasher creates salted, adaptive password hashes and checks plaintext
// passwords against them. Verification accepts hashes of either scheme, so a
// record store can switch schemes without invalidating old credentials.
type Hasher struct {
	scheme     Scheme
	bcryptCost int
	argon      *params
}

// params holds Argon2id hashing parameters.
type params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// defaultArgon2id is the Argon2id cost used for new hashes.
var defaultArgon2id = &params{
	memory:      64 * 1024,
	iterations:  5,
	parallelism: uint8(max(runtime.NumCPU()/2, 1)),
	saltLength:  16,
	keyLength:   32,
}

// NewHasher returns a hasher producing hashes of the given scheme. A bcrypt
// cost outside bcrypt's accepted range uses bcrypt.DefaultCost.
func NewHasher(scheme Scheme, bcryptCost int) (*Hasher, error) {
	switch scheme {
	case SchemeBcrypt, SchemeArgon2id:
	case "":
		scheme = SchemeBcrypt
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Hasher{scheme: scheme, bcryptCost: bcryptCost, argon: defaultArgon2id}, nil
}

// Scheme reports which algorithm new hashes use.
func (h *Hasher) Scheme() Scheme {
	return h.scheme
}

// Hash returns an encoded hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == SchemeArgon2id {
		return h.argon.hash(password)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches encodedHash. Malformed hashes never
// match.
func (h *Hasher) Verify(password, encodedHash string) bool {
	ok, err := Compare(password, encodedHash)
	return err == nil && ok
}

// Compare checks password against a bcrypt or Argon2id hash, choosing the
// algorithm from the hash prefix.
func Compare(password, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, "$argon2id$") {
		return compareArgon2id(password, encodedHash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
}

// hash derives an Argon2id key with a fresh salt and encodes it in the
// PHC string form: $argon2id$v=19$m=...,t=...,p=...$salt$key.
func (p *params) hash(password string) (string, error) {
	salt := make([]byte, p.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

// compareArgon2id rederives the key with the parameters and salt stored in
// encodedHash and compares in constant time.
func compareArgon2id(password, encodedHash string) (bool, error) {
	p, salt, key, err := parseArgon2id(encodedHash)
	if err != nil {
		return false, err
	}
	derived := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)
	return subtle.ConstantTimeCompare(key, derived) == 1, nil
}

func parseArgon2id(encodedHash string) (p *params, salt, key []byte, err error) {
	fields := strings.Split(encodedHash, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err = fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	p = &params{}
	if _, err = fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	dec := base64.RawStdEncoding.Strict()
	if salt, err = dec.DecodeString(fields[4]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	if key, err = dec.DecodeString(fields[5]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	p.saltLength = uint32(len(salt))
	p.keyLength = uint32(len(key))
	return p, salt, key, nil
}
