// Package testutil holds fixtures shared by the package tests: a throwaway
// SQLite database, an in-memory Redis and a cookie-carrying browser.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"ocpe/internal/common/security"
	"ocpe/internal/platform/config"
	"ocpe/internal/platform/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// SetupConfig installs a test configuration as config.AppConfig and signs
// tokens with a test key. The previous configuration is restored on cleanup.
func SetupConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		APIPort:                "0",
		JWTKey:                 []byte("test-secret"),
		SessionTTL:             time.Hour,
		RememberTTL:            30 * 24 * time.Hour,
		SessionKeyPrefix:       "test:",
		BcryptCost:             bcrypt.MinCost,
		DBDriver:               config.DriverSQLite,
		SQLitePath:             filepath.Join(t.TempDir(), "ocpe_test.db"),
		ProblemCreatedRedirect: "/login",
	}

	prev := config.AppConfig
	config.AppConfig = cfg
	security.InitJWT()
	t.Cleanup(func() {
		config.AppConfig = prev
		if prev != nil {
			security.InitJWT()
		}
	})
	return cfg
}

// SetupTestDB migrates a fresh SQLite database at cfg.SQLitePath.
func SetupTestDB(t *testing.T, cfg *config.Config) *sqlx.DB {
	t.Helper()

	if err := database.Migrate(cfg); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db, err := database.Open(config.DriverSQLite, database.DSN(cfg))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SetupRedis starts an in-memory Redis server and returns a client for it.
func SetupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}
