package rank

import (
	"math"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

const (
	// statusBias guarantees live mints outrank dead ones whenever the
	// status criterion is enabled, independent of the other weights.
	statusBias = 1e9

	// unknownLatencyPenalty stands in for the sentinel so an unmeasured
	// mint is penalized by a fixed amount, not by the sentinel itself.
	unknownLatencyPenalty = 1000
)

// Score computes the weighted composite score for one mint. It is a pure
// function of the record and the weights; inputs are assumed normalized
// (zero defaults, latency sentinel) by record construction.
func Score(s *models.MintStatus, w Weights) float64 {
	var score float64

	if w.Status && s.IsUp {
		score += statusBias
	}

	// Errors only discount activity, they never penalize on their own. A
	// mint with zero activity is not punished for having errors.
	activity := float64(s.MintCount)*w.Mints + float64(s.MeltCount)*w.Melts
	if activity > 0 {
		total := float64(s.MintCount + s.MeltCount + s.ErrorCount)
		var errorRate float64
		if total > 0 {
			errorRate = float64(s.ErrorCount) / total
		}
		modulation := 1 - errorRate*w.Errors/100
		if modulation < 0 {
			modulation = 0
		}
		score += activity * modulation
	}

	if s.CapacitySats > 0 {
		score += math.Log10(float64(s.CapacitySats)) * w.Capacity
	}

	score += float64(s.ChannelCount) * w.Channels

	if s.LatencyMS == models.LatencyUnknown {
		score -= unknownLatencyPenalty * w.Latency
	} else {
		score -= float64(s.LatencyMS) * w.Latency
	}

	score += float64(s.CurrencyCount) * w.Currency

	return score
}

// Latency display classes.
const (
	LatencyNone = "none"
	LatencyFast = "fast"
	LatencyOK   = "ok"
	LatencySlow = "slow"
)

// LatencyClass maps a measured latency to its display class.
func LatencyClass(ms int) string {
	switch {
	case ms == models.LatencyUnknown:
		return LatencyNone
	case ms <= 300:
		return LatencyFast
	case ms <= 1000:
		return LatencyOK
	default:
		return LatencySlow
	}
}
