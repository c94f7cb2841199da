package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TOPCARD_STORAGE", "TOPCARD_PLAYERS_FILE", "TOPCARD_SQLITE_PATH", "TOPCARD_PG_URL",
	"TOPCARD_HASH_SCHEME", "TOPCARD_BCRYPT_COST", "TOPCARD_HAND_SIZE", "TOPCARD_SIGNUP_BONUS",
	"TOPCARD_LOG_LEVEL", "TOPCARD_DEBUG", "REDIS_ADDR", "REDIS_DB", "TOPCARD_HISTORY_QUEUE",
	"TOKEN_EXPIRE_TIME", "TOPCARD_JWT_PRIVATE_KEY", "TOPCARD_JWT_PUBLIC_KEY",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, "players.txt", cfg.PlayersFile)
	assert.Equal(t, auth.SchemeBcrypt, cfg.HashScheme)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "topcard_rounds", cfg.HistoryQueue)
	assert.Zero(t, cfg.TokenTTL)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOPCARD_STORAGE", "SQLite")
	t.Setenv("TOPCARD_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("TOPCARD_HASH_SCHEME", "argon2id")
	t.Setenv("TOPCARD_HAND_SIZE", "5")
	t.Setenv("TOPCARD_SIGNUP_BONUS", "100")
	t.Setenv("TOPCARD_DEBUG", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TOKEN_EXPIRE_TIME", "90m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, auth.SchemeArgon2id, cfg.HashScheme)
	assert.Equal(t, 5, cfg.HandSize)
	assert.Equal(t, 100, cfg.SignupBonus)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOPCARD_SIGNUP_BONUS", "lots")
	t.Setenv("TOPCARD_DEBUG", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.SignupBonus)
	assert.False(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Setenv("TOPCARD_HASH_SCHEME", "argon2id")
	_, err := Load()
	assert.ErrorContains(t, err, "argon2id")

	t.Setenv("TOPCARD_HASH_SCHEME", "md5")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown hash scheme")

	t.Setenv("TOPCARD_HASH_SCHEME", "")
	t.Setenv("TOPCARD_STORAGE", "postgres")
	_, err = Load()
	assert.ErrorContains(t, err, "TOPCARD_PG_URL")

	t.Setenv("TOPCARD_STORAGE", "mongo")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown storage backend")

	t.Setenv("TOPCARD_STORAGE", "")
	t.Setenv("TOPCARD_JWT_PRIVATE_KEY", "/keys/private")
	_, err = Load()
	assert.ErrorContains(t, err, "set together")

	t.Setenv("TOPCARD_JWT_PRIVATE_KEY", "")
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("TOPCARD_SIGNUP_BONUS")
	os.Unsetenv("TOPCARD_PLAYERS_FILE")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOPCARD_SIGNUP_BONUS=25\nTOPCARD_PLAYERS_FILE=data/players.txt\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("TOPCARD_SIGNUP_BONUS")
		os.Unsetenv("TOPCARD_PLAYERS_FILE")
	})

	cfg, err := LoadFiles(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.SignupBonus)
	assert.Equal(t, "data/players.txt", cfg.PlayersFile)
}
