// Package app assembles the wallet from configuration for the binaries.
package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/backend"
	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/config"
	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/service"
	"github.com/vi13x/sats-wallet/internal/storage"
)

type App struct {
	Deps service.Deps
	// Node is nil when the wallet talks to a remote daemon.
	Node *backend.LocalNode
	db   *storage.FileDB
}

// OpenNode opens the local node file, seeding a fresh one with the configured
// start balance.
func OpenNode(cfg *config.Config, log *zap.Logger) (*backend.LocalNode, *storage.FileDB, error) {
	db, err := storage.OpenFileDB(cfg.NodePath(), backend.SeedNode(domain.Sats(cfg.StartBalance)))
	if err != nil {
		return nil, nil, fmt.Errorf("open node: %w", err)
	}
	return backend.NewLocalNode(db, log), db, nil
}

// Open prepares the data directory and picks the backend: the HTTP daemon when
// a backend URL is configured, the local node file otherwise.
func Open(cfg *config.Config, clip clipboard.Clipboard, log *zap.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	if err := storage.EnsureRatesFile(cfg.RatesPath()); err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}
	settings, err := storage.OpenSettings(cfg.SettingsPath(), storage.Settings{
		Currency:          cfg.Fiat,
		InvoiceExpirySecs: cfg.InvoiceExpirySecs,
	})
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	a := &App{Deps: service.Deps{
		Clipboard: clip,
		Settings:  settings,
		RatesPath: cfg.RatesPath(),
		Log:       log,
	}}

	if cfg.BackendURL != "" {
		log.Info("using remote backend", zap.String("url", cfg.BackendURL))
		a.Deps.Backend = backend.NewClient(cfg.BackendURL, log)
		return a, nil
	}

	node, db, err := OpenNode(cfg, log)
	if err != nil {
		return nil, err
	}
	a.Node, a.db = node, db
	a.Deps.Backend = node
	a.Deps.NodeDB = db
	a.Deps.BackupsDir = cfg.BackupsDir()
	log.Info("using local node", zap.String("path", cfg.NodePath()), zap.String("node_id", node.NodeID()))
	return a, nil
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
