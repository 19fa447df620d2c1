package models

import "time"

// LightningSnapshot captures what we learned about a mint's lightning node
// during one enrichment pass. Any field may be NULL; enrichment degrades
// step by step (no invoice, no pubkey in the invoice, 1ml miss).
type LightningSnapshot struct {
	ID               int64     `json:"id"`
	MintID           int64     `json:"mint_id"`
	Invoice          *string   `json:"invoice,omitempty"`
	PayeePubkey      *string   `json:"payee_pubkey,omitempty"`
	NodeName         *string   `json:"node_name,omitempty"`
	NodeCapacitySats *int64    `json:"node_capacity_sats,omitempty"`
	NodeChannelCount *int      `json:"node_channel_count,omitempty"`
	CheckedAt        time.Time `json:"checked_at"`
}
