// ledgerdeskd serves the ledger HTTP API standalone, for pointing multiple
// ledgerdesk clients at one shared database.
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dkeller/ledgerdesk/internal/config"
	"github.com/dkeller/ledgerdesk/internal/database"
	"github.com/dkeller/ledgerdesk/internal/logging"
	"github.com/dkeller/ledgerdesk/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stderr, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)
	logger.Info("listening", "addr", cfg.Server.Listen, "db", cfg.Database.Path)
	if err := http.ListenAndServe(cfg.Server.Listen, srv.Router()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
