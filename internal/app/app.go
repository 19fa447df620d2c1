package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/probe"
	"github.com/shroominic/cashu-mint-status-board/internal/registry"
	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/sqlite"
)

// Setting keys.
const (
	SettingRefreshPolicy = "refresh_policy"
)

// App represents the application context
type App struct {
	Storage  storage.Storage
	Registry *registry.Registry
	Prober   *probe.Prober
	Board    *board.Board
	Loader   *Loader
	Config   *Config
}

// Config represents application configuration
type Config struct {
	DBPath       string
	UptimeWindow time.Duration
}

// New creates a new application instance
func New() (*App, error) {
	// Get default data directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "mintboard")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Initialize storage
	dbPath := filepath.Join(dataDir, "mintboard.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cfg := &Config{
		DBPath:       dbPath,
		UptimeWindow: 24 * time.Hour,
	}

	reg := registry.New()
	loader := NewLoader(store, cfg.UptimeWindow)

	probeCfg := probe.DefaultConfig()
	if v, err := store.GetSetting(context.Background(), SettingRefreshPolicy); err == nil {
		probeCfg.Policy = probe.ClearPolicy(v)
	}
	prober := probe.New(reg, &HealthRecorder{storage: store}, probeCfg)

	return &App{
		Storage:  store,
		Registry: reg,
		Prober:   prober,
		Board:    board.New(board.DefaultDataset, reg, prober, loader),
		Loader:   loader,
		Config:   cfg,
	}, nil
}

// Close closes the application and releases resources
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
