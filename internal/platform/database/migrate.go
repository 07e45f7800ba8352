package database

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"net/url"

	"ocpe/internal/platform/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// NewMigrator loads the embedded migrations for cfg's driver. The caller must
// Close it.
func NewMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	dir := "migrations/postgres"
	if cfg.DBDriver == config.DriverSQLite {
		dir = "migrations/sqlite"
	}

	src, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, MigrationURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration for cfg's driver.
func Migrate(cfg *config.Config) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Printf("INFO: schema at version %d (dirty=%t)", version, dirty)
	}
	return nil
}

// MigrationURL is the golang-migrate database URL for cfg.
func MigrationURL(cfg *config.Config) string {
	if cfg.DBDriver == config.DriverSQLite {
		return "sqlite://" + cfg.SQLitePath
	}
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.DBSslMode}}.Encode(),
	}
	return u.String()
}
