package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

const usage = "usage: migrate up | down [N] | version | force V"

type command struct {
	name string
	// down の段数 / force のバージョン
	n int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New(usage)
	}

	cmd := command{name: args[0], n: 1}
	switch cmd.name {
	case "up", "version":
		if len(args) > 1 {
			return command{}, errors.New(usage)
		}
	case "down", "force":
		if len(args) == 1 {
			if cmd.name == "force" {
				return command{}, errors.New(usage)
			}
			return cmd, nil
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || (cmd.name == "down" && n < 1) || n < 0 {
			return command{}, fmt.Errorf("invalid number %q: %s", args[1], usage)
		}
		cmd.n = n
	default:
		return command{}, fmt.Errorf("unknown command %q: %s", cmd.name, usage)
	}
	return cmd, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	_ = godotenv.Load()

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	source := os.Getenv("MIGRATIONS_PATH")
	if source == "" {
		source = "file://migrations"
	}

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch cmd.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-cmd.n)
	case "force":
		err = m.Force(cmd.n)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("no migrations applied yet")
			return nil
		}
		if verr != nil {
			return verr
		}
		logger.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date", slog.String("command", cmd.name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.name, err)
	}
	logger.Info("migration done", slog.String("command", cmd.name), slog.Int("n", cmd.n))
	return nil
}
