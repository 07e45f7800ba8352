// Command migrate applies or rolls back the embedded schema migrations against
// the database configured by the environment.
//
//	migrate up
//	migrate -steps 1 down
//	migrate version
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"ocpe/internal/platform/config"
	"ocpe/internal/platform/database"

	"github.com/golang-migrate/migrate/v4"
)

type command struct {
	action string
	steps  int
}

func parseArgs(args []string) (command, error) {
	var cmd command

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.IntVar(&cmd.steps, "steps", 0, "Number of migrations to apply or roll back (0 = all)")
	if err := fs.Parse(args); err != nil {
		return command{}, err
	}
	if cmd.steps < 0 {
		return command{}, errors.New("-steps must not be negative")
	}

	if fs.NArg() != 1 {
		return command{}, errors.New("expected exactly one of: up, down, version")
	}
	cmd.action = fs.Arg(0)
	switch cmd.action {
	case "up", "down", "version":
	default:
		return command{}, fmt.Errorf("unknown action %q", cmd.action)
	}
	return cmd, nil
}

func main() {
	cmd, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	config.Load()
	m, err := database.NewMigrator(config.AppConfig)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer m.Close()

	switch cmd.action {
	case "up":
		if cmd.steps > 0 {
			err = m.Steps(cmd.steps)
		} else {
			err = m.Up()
		}
	case "down":
		if cmd.steps > 0 {
			err = m.Steps(-cmd.steps)
		} else {
			err = m.Down()
		}
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate %s: %v", cmd.action, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("No migrations applied.")
	case err != nil:
		log.Fatalf("migrate version: %v", err)
	default:
		fmt.Printf("Schema version %d (dirty=%t)\n", version, dirty)
	}
}
