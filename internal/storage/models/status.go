package models

// LatencyUnknown is the sentinel recorded when a mint's round-trip time has
// not been measured (or the last probe failed).
const LatencyUnknown = 99999

// MintStatus is the in-memory board record for one mint. It is assembled
// from storage on each dataset refresh; the probe cache then keeps LatencyMS,
// Units and CurrencyCount fresh in place. Everything else is replaced
// wholesale on refresh.
type MintStatus struct {
	URL           string   `json:"url"`
	Name          string   `json:"name,omitempty"`
	IsUp          bool     `json:"up"`
	Uptime        float64  `json:"uptime"` // 24h success ratio, advisory only
	CapacitySats  int64    `json:"capacity_sats"`
	ChannelCount  int      `json:"channel_count"`
	CurrencyCount int      `json:"currency_count"`
	Units         []string `json:"units,omitempty"`
	LatencyMS     int      `json:"latency_ms"`
	MintCount     int64    `json:"mint_count"`
	MeltCount     int64    `json:"melt_count"`
	ErrorCount    int64    `json:"error_count"`
}

// NewMintStatus returns a record with every numeric field zeroed and latency
// at the unknown sentinel.
func NewMintStatus(url string) *MintStatus {
	return &MintStatus{URL: url, LatencyMS: LatencyUnknown}
}

// DisplayName returns the mint's name, falling back to its URL.
func (s *MintStatus) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// Clone returns a copy safe to hand outside the registry.
func (s *MintStatus) Clone() *MintStatus {
	c := *s
	if s.Units != nil {
		c.Units = append([]string(nil), s.Units...)
	}
	return &c
}
