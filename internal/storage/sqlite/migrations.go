package sqlite

const schema = `
-- Tracked mints
CREATE TABLE IF NOT EXISTS mints (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Liveness probe history
CREATE TABLE IF NOT EXISTS health_checks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mint_id INTEGER NOT NULL,
    status BOOLEAN NOT NULL,
    response_ms INTEGER,
    checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (mint_id) REFERENCES mints(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_health_checks_mint
    ON health_checks(mint_id, checked_at DESC);

-- Lightning node snapshots
CREATE TABLE IF NOT EXISTS lightning_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mint_id INTEGER NOT NULL,
    invoice TEXT,
    payee_pubkey TEXT,
    node_name TEXT,
    node_capacity_sats INTEGER,
    node_channel_count INTEGER,
    checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (mint_id) REFERENCES mints(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_lightning_snapshots_mint
    ON lightning_snapshots(mint_id, checked_at DESC);

-- Externally reported activity counters
CREATE TABLE IF NOT EXISTS mint_stats (
    mint_id INTEGER PRIMARY KEY,
    mint_count INTEGER NOT NULL DEFAULT 0,
    melt_count INTEGER NOT NULL DEFAULT 0,
    error_count INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (mint_id) REFERENCES mints(id) ON DELETE CASCADE
);

-- Application settings
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// runMigrations applies the schema. Statements are idempotent.
func runMigrations(d *DB) error {
	_, err := d.db.Exec(schema)
	return err
}
