package database

import (
	"fmt"
	"log"
	"time"

	"ocpe/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

var DB *sqlx.DB

// Connect opens the configured database and stores it in DB.
func Connect() {
	var err error
	DB, err = Open(config.AppConfig.DBDriver, DSN(config.AppConfig))
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	fmt.Printf("Successfully connected to %s database!\n", config.AppConfig.DBDriver)
}

// DSN returns the connection string for cfg's driver.
func DSN(cfg *config.Config) string {
	if cfg.DBDriver == config.DriverSQLite {
		return cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	return cfg.DBConnStr
}

// Open connects with driver ("pgx" or "sqlite") and verifies the connection.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
