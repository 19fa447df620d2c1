package app

import (
	"context"

	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// HealthRecorder adapts storage to the prober's HealthRecorder interface.
type HealthRecorder struct {
	storage storage.Storage
}

// RecordProbe persists one liveness probe outcome. Probes for mints that are
// no longer registered are dropped silently.
func (r *HealthRecorder) RecordProbe(ctx context.Context, url string, up bool, responseMS *int) error {
	mint, err := r.storage.GetMintByURL(ctx, url)
	if err != nil {
		return nil
	}
	return r.storage.RecordHealthCheck(ctx, &models.HealthCheck{
		MintID:     mint.ID,
		Status:     up,
		ResponseMS: responseMS,
	})
}
