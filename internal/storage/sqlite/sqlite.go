package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

// DB implements the Storage interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &DB{db: db}

	// Run migrations
	if err := runMigrations(storage); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// ─── Mint operations ────────────────────────────────────────────────────────

// EnsureMint returns the mint row for url, creating it if needed.
func (d *DB) EnsureMint(ctx context.Context, url string) (*models.Mint, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, pkgerrors.ErrMintURLEmpty
	}

	mint, err := d.GetMintByURL(ctx, url)
	if err == nil {
		return mint, nil
	}

	result, err := d.db.ExecContext(ctx, "INSERT INTO mints (url) VALUES (?)", url)
	if err != nil {
		// Lost a race with a concurrent insert; read it back.
		if mint, rerr := d.GetMintByURL(ctx, url); rerr == nil {
			return mint, nil
		}
		return nil, fmt.Errorf("failed to insert mint: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetMint(ctx, id)
}

func (d *DB) GetMint(ctx context.Context, id int64) (*models.Mint, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT id, url, created_at FROM mints WHERE id = ?", id)
	return scanMint(row)
}

func (d *DB) GetMintByURL(ctx context.Context, url string) (*models.Mint, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT id, url, created_at FROM mints WHERE url = ?", url)
	return scanMint(row)
}

func (d *DB) GetAllMints(ctx context.Context) ([]*models.Mint, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, url, created_at FROM mints ORDER BY url")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mints []*models.Mint
	for rows.Next() {
		var m models.Mint
		if err := rows.Scan(&m.ID, &m.URL, &m.CreatedAt); err != nil {
			return nil, err
		}
		mints = append(mints, &m)
	}
	return mints, rows.Err()
}

func scanMint(row *sql.Row) (*models.Mint, error) {
	var m models.Mint
	err := row.Scan(&m.ID, &m.URL, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.ErrMintNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ─── Health check history ───────────────────────────────────────────────────

func (d *DB) RecordHealthCheck(ctx context.Context, check *models.HealthCheck) error {
	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now().UTC()
	}
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO health_checks (mint_id, status, response_ms, checked_at)
		VALUES (?, ?, ?, ?)
	`, check.MintID, check.Status, check.ResponseMS, check.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to record health check: %w", err)
	}
	check.ID, _ = result.LastInsertId()
	return nil
}

func (d *DB) GetRecentHealthChecks(ctx context.Context, mintID int64, limit int) ([]*models.HealthCheck, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, mint_id, status, response_ms, checked_at
		FROM health_checks
		WHERE mint_id = ?
		ORDER BY checked_at DESC
		LIMIT ?
	`, mintID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*models.HealthCheck
	for rows.Next() {
		var hc models.HealthCheck
		if err := rows.Scan(&hc.ID, &hc.MintID, &hc.Status, &hc.ResponseMS, &hc.CheckedAt); err != nil {
			return nil, err
		}
		checks = append(checks, &hc)
	}
	return checks, rows.Err()
}

func (d *DB) GetLatestHealthCheck(ctx context.Context, mintID int64) (*models.HealthCheck, error) {
	var hc models.HealthCheck
	err := d.db.QueryRowContext(ctx, `
		SELECT id, mint_id, status, response_ms, checked_at
		FROM health_checks
		WHERE mint_id = ?
		ORDER BY checked_at DESC
		LIMIT 1
	`, mintID).Scan(&hc.ID, &hc.MintID, &hc.Status, &hc.ResponseMS, &hc.CheckedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hc, nil
}

func (d *DB) UptimeSince(ctx context.Context, mintID int64, since time.Time) (int, int, error) {
	var up, total int
	err := d.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(status), 0), COUNT(*)
		FROM health_checks
		WHERE mint_id = ? AND checked_at >= ?
	`, mintID, since).Scan(&up, &total)
	if err != nil {
		return 0, 0, err
	}
	return up, total, nil
}

// ─── Lightning snapshots ────────────────────────────────────────────────────

func (d *DB) RecordLightningSnapshot(ctx context.Context, snap *models.LightningSnapshot) error {
	if snap.CheckedAt.IsZero() {
		snap.CheckedAt = time.Now().UTC()
	}
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO lightning_snapshots
			(mint_id, invoice, payee_pubkey, node_name, node_capacity_sats, node_channel_count, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.MintID, snap.Invoice, snap.PayeePubkey, snap.NodeName,
		snap.NodeCapacitySats, snap.NodeChannelCount, snap.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to record lightning snapshot: %w", err)
	}
	snap.ID, _ = result.LastInsertId()
	return nil
}

func (d *DB) GetLatestLightningSnapshot(ctx context.Context, mintID int64) (*models.LightningSnapshot, error) {
	var snap models.LightningSnapshot
	err := d.db.QueryRowContext(ctx, `
		SELECT id, mint_id, invoice, payee_pubkey, node_name, node_capacity_sats, node_channel_count, checked_at
		FROM lightning_snapshots
		WHERE mint_id = ?
		ORDER BY checked_at DESC
		LIMIT 1
	`, mintID).Scan(&snap.ID, &snap.MintID, &snap.Invoice, &snap.PayeePubkey,
		&snap.NodeName, &snap.NodeCapacitySats, &snap.NodeChannelCount, &snap.CheckedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ─── Activity counters ──────────────────────────────────────────────────────

func (d *DB) UpsertMintStats(ctx context.Context, stats *models.MintStats) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO mint_stats (mint_id, mint_count, melt_count, error_count, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(mint_id) DO UPDATE SET
			mint_count = excluded.mint_count,
			melt_count = excluded.melt_count,
			error_count = excluded.error_count,
			updated_at = CURRENT_TIMESTAMP
	`, stats.MintID, stats.MintCount, stats.MeltCount, stats.ErrorCount)
	return err
}

func (d *DB) GetMintStats(ctx context.Context, mintID int64) (*models.MintStats, error) {
	var s models.MintStats
	err := d.db.QueryRowContext(ctx, `
		SELECT mint_id, mint_count, melt_count, error_count, updated_at
		FROM mint_stats
		WHERE mint_id = ?
	`, mintID).Scan(&s.MintID, &s.MintCount, &s.MeltCount, &s.ErrorCount, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ─── Settings operations ────────────────────────────────────────────────────

func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting not found: %s", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := d.db.ExecContext(ctx, query, key, value)
	return err
}
