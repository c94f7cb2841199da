// Package config reads process settings from the environment. Values from a
// .env file in the working directory are loaded by the entry point through
// godotenv before Load is called.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the full set of runtime settings.
type Config struct {
	Storage     string
	PlayersFile string
	SQLitePath  string
	PostgresURL string

	HashScheme auth.Scheme
	BcryptCost int
	TokenTTL   time.Duration
	// Session signing keys; a fresh pair is generated per process when unset.
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	HandSize    int
	SignupBonus int

	LogLevel string
	Debug    bool

	// RedisAddr enables round history when set.
	RedisAddr    string
	RedisDB      int
	HistoryQueue string
}

// Load reads the environment, applying defaults for unset keys.
func Load() (*Config, error) {
	ttl, err := auth.ParseTokenTTL(os.Getenv("TOKEN_EXPIRE_TIME"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Storage:           strings.ToLower(getEnv("TOPCARD_STORAGE", StorageFile)),
		PlayersFile:       getEnv("TOPCARD_PLAYERS_FILE", "players.txt"),
		SQLitePath:        getEnv("TOPCARD_SQLITE_PATH", "topcard.db"),
		PostgresURL:       os.Getenv("TOPCARD_PG_URL"),
		HashScheme:        auth.Scheme(strings.ToLower(getEnv("TOPCARD_HASH_SCHEME", string(auth.SchemeBcrypt)))),
		BcryptCost:        getEnvInt("TOPCARD_BCRYPT_COST", 0),
		TokenTTL:          ttl,
		JWTPrivateKeyPath: os.Getenv("TOPCARD_JWT_PRIVATE_KEY"),
		JWTPublicKeyPath:  os.Getenv("TOPCARD_JWT_PUBLIC_KEY"),
		HandSize:          getEnvInt("TOPCARD_HAND_SIZE", 0),
		SignupBonus:       getEnvInt("TOPCARD_SIGNUP_BONUS", 0),
		LogLevel:          getEnv("TOPCARD_LOG_LEVEL", "info"),
		Debug:             getEnvBool("TOPCARD_DEBUG", false),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		HistoryQueue:      getEnv("TOPCARD_HISTORY_QUEUE", "topcard_rounds"),
	}
	return cfg, cfg.Validate()
}

// LoadFiles loads the named .env files (missing files are skipped) into the
// environment without overriding variables that are already set, then calls
// Load.
func LoadFiles(files ...string) (*Config, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}
	return Load()
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageFile:
		// argon2id hashes contain commas, which the record file uses as a separator
		if c.HashScheme == auth.SchemeArgon2id {
			errs = append(errs, errors.New("argon2id hashes cannot be stored in the flat record file; use bcrypt or another storage backend"))
		}
		if c.PlayersFile == "" {
			errs = append(errs, errors.New("TOPCARD_PLAYERS_FILE must not be empty"))
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("TOPCARD_SQLITE_PATH must not be empty"))
		}
	case StoragePostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("TOPCARD_PG_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage))
	}

	switch c.HashScheme {
	case auth.SchemeBcrypt, auth.SchemeArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown hash scheme %q", c.HashScheme))
	}
	if (c.JWTPrivateKeyPath == "") != (c.JWTPublicKeyPath == "") {
		errs = append(errs, errors.New("TOPCARD_JWT_PRIVATE_KEY and TOPCARD_JWT_PUBLIC_KEY must be set together"))
	}
	if c.HandSize < 0 {
		errs = append(errs, errors.New("TOPCARD_HAND_SIZE must be non-negative"))
	}
	return errors.Join(errs...)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
