package models

import "time"

// Mint represents a tracked mint endpoint
type Mint struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// MintStats holds externally reported activity counters for a mint.
// The auditor feed is the sole writer; the board only reads them.
type MintStats struct {
	MintID     int64     `json:"mint_id"`
	MintCount  int64     `json:"mint_count"`
	MeltCount  int64     `json:"melt_count"`
	ErrorCount int64     `json:"error_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}
