package models

import "time"

// HealthCheck represents a single liveness probe result
type HealthCheck struct {
	ID         int64     `json:"id"`
	MintID     int64     `json:"mint_id"`
	Status     bool      `json:"status"`
	ResponseMS *int      `json:"response_ms,omitempty"` // NULL if the probe failed
	CheckedAt  time.Time `json:"checked_at"`
}
