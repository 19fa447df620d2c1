package storage

import (
	"context"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Mint operations
	EnsureMint(ctx context.Context, url string) (*models.Mint, error)
	GetMint(ctx context.Context, id int64) (*models.Mint, error)
	GetMintByURL(ctx context.Context, url string) (*models.Mint, error)
	GetAllMints(ctx context.Context) ([]*models.Mint, error)

	// Health check history
	RecordHealthCheck(ctx context.Context, check *models.HealthCheck) error
	GetRecentHealthChecks(ctx context.Context, mintID int64, limit int) ([]*models.HealthCheck, error)
	GetLatestHealthCheck(ctx context.Context, mintID int64) (*models.HealthCheck, error)
	UptimeSince(ctx context.Context, mintID int64, since time.Time) (up, total int, err error)

	// Lightning snapshots
	RecordLightningSnapshot(ctx context.Context, snap *models.LightningSnapshot) error
	GetLatestLightningSnapshot(ctx context.Context, mintID int64) (*models.LightningSnapshot, error)

	// Activity counters (external auditor feed)
	UpsertMintStats(ctx context.Context, stats *models.MintStats) error
	GetMintStats(ctx context.Context, mintID int64) (*models.MintStats, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Close closes the storage connection
	Close() error
}
