package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/shroominic/cashu-mint-status-board/internal/probe"
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/registry"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// DefaultDataset is the dataset identifier the board manages.
const DefaultDataset = "mints"

// Loader rebuilds the full record set from its backing source on a dataset
// refresh.
type Loader interface {
	LoadStatuses(ctx context.Context) ([]*models.MintStatus, error)
}

// Board owns the scoring weights and sort state, reduces incoming events,
// and re-ranks the registry snapshot whenever records or configuration
// change. Re-ranking happens once per event (and once per measure batch),
// never per individual probe.
type Board struct {
	mu      sync.Mutex
	dataset string
	weights rank.Weights
	state   rank.SortState

	registry *registry.Registry
	prober   *probe.Prober
	loader   Loader

	subscribers []func([]*models.MintStatus)
}

// New creates a board managing the given dataset with default weights and
// weighted/descending sort.
func New(dataset string, reg *registry.Registry, prober *probe.Prober, loader Loader) *Board {
	if dataset == "" {
		dataset = DefaultDataset
	}
	return &Board{
		dataset:  dataset,
		weights:  rank.DefaultWeights(),
		state:    rank.DefaultSortState(),
		registry: reg,
		prober:   prober,
		loader:   loader,
	}
}

// Subscribe registers a renderer callback invoked with the fresh ordering
// after every re-rank. Callbacks run on the applying goroutine.
func (b *Board) Subscribe(fn func([]*models.MintStatus)) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, fn)
	b.mu.Unlock()
}

// Apply reduces one event into board state. Errors (unknown column or
// criterion) leave the prior state untouched.
func (b *Board) Apply(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case WeightChanged:
		b.mu.Lock()
		err := b.weights.Set(e.Criterion, e.Value)
		if err == nil {
			b.state = rank.SortState{Mode: rank.ModeWeighted, Direction: rank.Desc}
		}
		b.mu.Unlock()
		if err != nil {
			return err
		}

	case StatusToggled:
		b.mu.Lock()
		b.weights.Status = e.Enabled
		b.state = rank.SortState{Mode: rank.ModeWeighted, Direction: rank.Desc}
		b.mu.Unlock()

	case ColumnClicked:
		b.mu.Lock()
		next, err := rank.Click(b.state, e.Column)
		if err == nil {
			b.state = next
		}
		b.mu.Unlock()
		if err != nil {
			return err
		}

	case ResetRequested:
		b.mu.Lock()
		b.weights = rank.DefaultWeights()
		b.state = rank.DefaultSortState()
		b.mu.Unlock()

	case DatasetRefreshed:
		if e.Dataset != b.dataset {
			return nil
		}
		statuses, err := b.loader.LoadStatuses(ctx)
		if err != nil {
			return fmt.Errorf("failed to reload dataset: %w", err)
		}
		b.registry.ReplaceAll(statuses)
		// Full refresh probes every mint without staggering.
		b.prober.MeasureAll(ctx, false)

	default:
		return fmt.Errorf("unhandled event type %T", ev)
	}

	b.publish()
	return nil
}

// RefreshProbes is the periodic tick: clear probe caches per policy,
// re-measure with staggered kickoffs, then re-rank once.
func (b *Board) RefreshProbes(ctx context.Context) {
	b.prober.Refresh(ctx)
	b.publish()
}

// Rankings returns the current ordering of the registry snapshot.
func (b *Board) Rankings() []*models.MintStatus {
	snap := b.registry.Snapshot()
	b.mu.Lock()
	state, weights := b.state, b.weights
	b.mu.Unlock()
	return rank.Sort(snap, state, weights)
}

// Weights returns the current weight configuration.
func (b *Board) Weights() rank.Weights {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weights
}

// SortState returns the current sort state.
func (b *Board) SortState() rank.SortState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) publish() {
	b.mu.Lock()
	subs := append(([]func([]*models.MintStatus))(nil), b.subscribers...)
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	ranked := b.Rankings()
	for _, fn := range subs {
		fn(ranked)
	}
}
