package rank

import pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"

// Weights configures the composite score. Status is a toggle rather than a
// weight: when enabled, live mints always outrank dead ones.
type Weights struct {
	Status   bool    `json:"status"`
	Currency float64 `json:"currency"`
	Capacity float64 `json:"capacity"`
	Channels float64 `json:"channels"`
	Latency  float64 `json:"latency"`
	Mints    float64 `json:"mints"`
	Melts    float64 `json:"melts"`
	Errors   float64 `json:"errors"`
}

// Criterion names accepted at the event boundary.
const (
	CriterionStatus   = "status"
	CriterionCurrency = "currency"
	CriterionCapacity = "capacity"
	CriterionChannels = "channels"
	CriterionLatency  = "latency"
	CriterionMints    = "mints"
	CriterionMelts    = "melts"
	CriterionErrors   = "errors"
)

// DefaultWeights returns the fixed default configuration. Reset restores
// exactly these values.
func DefaultWeights() Weights {
	return Weights{
		Status:   true,
		Currency: 50,
		Capacity: 5000,
		Channels: 20,
		Latency:  5,
		Mints:    10,
		Melts:    10,
		Errors:   100,
	}
}

// Set assigns a numeric criterion by name. Values are taken as-is; range
// enforcement belongs to the caller's input control. The status toggle is
// boolean and has its own event, so it is rejected here.
func (w *Weights) Set(criterion string, value float64) error {
	switch criterion {
	case CriterionCurrency:
		w.Currency = value
	case CriterionCapacity:
		w.Capacity = value
	case CriterionChannels:
		w.Channels = value
	case CriterionLatency:
		w.Latency = value
	case CriterionMints:
		w.Mints = value
	case CriterionMelts:
		w.Melts = value
	case CriterionErrors:
		w.Errors = value
	default:
		return pkgerrors.ErrUnknownCriterion
	}
	return nil
}
