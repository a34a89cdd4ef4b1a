package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/config"
	"github.com/dkeller/ledgerdesk/internal/database"
	"github.com/dkeller/ledgerdesk/internal/logging"
	"github.com/dkeller/ledgerdesk/internal/query"
	"github.com/dkeller/ledgerdesk/internal/server"
	"github.com/dkeller/ledgerdesk/internal/service"
	"github.com/dkeller/ledgerdesk/internal/session"
	"github.com/dkeller/ledgerdesk/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the terminal owns stdout, so logs go to a file next to the database
	logw := openLogFile(cfg.Database.Path)
	logger := logging.New(logw, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	baseURL := strings.TrimSpace(cfg.Server.URL)
	if baseURL == "" {
		baseURL, err = startLocalService(cfg, logger)
		if err != nil {
			log.Fatalf("local service: %v", err)
		}
	}

	client := api.New(baseURL)

	changes := make(chan query.Key, 64)
	cache := query.New(query.Options{
		FreshFor:   cfg.Cache.FreshFor,
		Retries:    cfg.Cache.Retries,
		RetryDelay: cfg.Cache.RetryDelay,
		OnChange: func(k query.Key) {
			// drop rather than block if the view lags behind; the next
			// notification repaints everything anyway
			select {
			case changes <- k:
			default:
			}
		},
	})

	st := session.New()
	queries := service.NewQueries(cache, client)
	mutator := service.NewMutator(client, cache, logger)

	app := tui.New(ctx, cfg, queries, mutator, cache, st, changes)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

// startLocalService runs the bundled ledger service in-process and returns
// its API base URL.
func startLocalService(cfg config.Config, logger *slog.Logger) (string, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}

	srv := server.New(db, logger)
	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
	}
	go func() {
		if err := http.Serve(ln, srv.Router()); err != nil {
			logger.Error("local service stopped", "err", err)
		}
	}()
	return fmt.Sprintf("http://%s/api", ln.Addr()), nil
}

func openLogFile(dbPath string) io.Writer {
	path := filepath.Join(filepath.Dir(dbPath), "ledgerdesk.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
