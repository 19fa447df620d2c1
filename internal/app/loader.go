package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// Loader assembles the board record set from storage. Missing history,
// snapshots or counters leave the record at its zero defaults (latency at
// the sentinel); absent data is never an error.
type Loader struct {
	storage      storage.Storage
	uptimeWindow time.Duration
}

// NewLoader creates a Loader computing uptime over the given window.
func NewLoader(store storage.Storage, uptimeWindow time.Duration) *Loader {
	if uptimeWindow <= 0 {
		uptimeWindow = 24 * time.Hour
	}
	return &Loader{storage: store, uptimeWindow: uptimeWindow}
}

// LoadStatuses builds one record per tracked mint. Latency and units are
// left for the probe cache, which owns those fields.
func (l *Loader) LoadStatuses(ctx context.Context) ([]*models.MintStatus, error) {
	mints, err := l.storage.GetAllMints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mints: %w", err)
	}

	since := time.Now().Add(-l.uptimeWindow)
	statuses := make([]*models.MintStatus, 0, len(mints))

	for _, m := range mints {
		s := models.NewMintStatus(m.URL)

		if latest, err := l.storage.GetLatestHealthCheck(ctx, m.ID); err == nil && latest != nil {
			s.IsUp = latest.Status
		}
		if up, total, err := l.storage.UptimeSince(ctx, m.ID, since); err == nil && total > 0 {
			s.Uptime = float64(up) / float64(total)
		}
		if snap, err := l.storage.GetLatestLightningSnapshot(ctx, m.ID); err == nil && snap != nil {
			if snap.NodeName != nil {
				s.Name = *snap.NodeName
			}
			if snap.NodeCapacitySats != nil {
				s.CapacitySats = *snap.NodeCapacitySats
			}
			if snap.NodeChannelCount != nil {
				s.ChannelCount = *snap.NodeChannelCount
			}
		}
		if stats, err := l.storage.GetMintStats(ctx, m.ID); err == nil && stats != nil {
			s.MintCount = stats.MintCount
			s.MeltCount = stats.MeltCount
			s.ErrorCount = stats.ErrorCount
		}

		statuses = append(statuses, s)
	}
	return statuses, nil
}
