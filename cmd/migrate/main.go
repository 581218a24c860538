// migrate applies the embedded documents-table migrations; run with go run ./cmd/migrate.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"orgmembership/internal/config"
	"orgmembership/internal/db/migrate"
	"orgmembership/internal/platform/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up, down, or status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	if *direction == "status" {
		v, dirty, err := migrate.Version(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("migrate: version", "err", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return
	}
	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			// Already at target version; success.
			return
		}
		logger.Fatal("migrate", "err", err)
	}
	logger.Info("migrations applied", "direction", *direction)
}
