package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/discovery"
	"github.com/shroominic/cashu-mint-status-board/internal/lightning"
	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

// Config holds the periodic job intervals.
type Config struct {
	ProbeInterval     time.Duration // cache clear + staggered re-measure
	DiscoveryInterval time.Duration // nostr announcement sweep
	LightningInterval time.Duration // lightning node enrichment
}

// DefaultConfig returns the default intervals.
func DefaultConfig() Config {
	return Config{
		ProbeInterval:     15 * time.Second,
		DiscoveryInterval: 10 * time.Minute,
		LightningInterval: 15 * time.Minute,
	}
}

// Scheduler drives the periodic refresh cycles
type Scheduler struct {
	scheduler  gocron.Scheduler
	board      *board.Board
	storage    storage.Storage
	discoverer *discovery.Discoverer
	lightning  *lightning.Prober
	cfg        Config
	running    bool
}

// New creates a new refresh scheduler
func New(b *board.Board, store storage.Storage, disc *discovery.Discoverer, ln *lightning.Prober, cfg Config) (*Scheduler, error) {
	def := DefaultConfig()
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = def.ProbeInterval
	}
	if cfg.DiscoveryInterval <= 0 {
		cfg.DiscoveryInterval = def.DiscoveryInterval
	}
	if cfg.LightningInterval <= 0 {
		cfg.LightningInterval = def.LightningInterval
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:  scheduler,
		board:      b,
		storage:    store,
		discoverer: disc,
		lightning:  ln,
		cfg:        cfg,
	}, nil
}

// Start registers the periodic jobs and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	if s.running {
		return pkgerrors.ErrSchedulerRunning
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.ProbeInterval),
		gocron.NewTask(func() {
			s.board.RefreshProbes(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create probe job: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.DiscoveryInterval),
		gocron.NewTask(func() {
			s.discoverAndRefresh(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create discovery job: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.LightningInterval),
		gocron.NewTask(func() {
			s.enrichLightning(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create lightning job: %w", err)
	}

	s.scheduler.Start()
	s.running = true

	// Run the initial sweep immediately so the board is not empty until the
	// first tick.
	go func() {
		s.discoverAndRefresh(ctx)
		s.enrichLightning(ctx)
	}()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	if !s.running {
		return pkgerrors.ErrSchedulerNotRunning
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.running = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.running
}

// discoverAndRefresh sweeps the relays for announced mints, registers new
// ones and emits a dataset refresh.
func (s *Scheduler) discoverAndRefresh(ctx context.Context) {
	urls, err := s.discoverer.DiscoverMintURLs(ctx)
	if err != nil {
		log.Printf("Mint discovery failed: %v", err)
		return
	}

	added := 0
	for _, url := range urls {
		if _, err := s.storage.GetMintByURL(ctx, url); err == nil {
			continue
		}
		if _, err := s.storage.EnsureMint(ctx, url); err != nil {
			log.Printf("Failed to register mint %s: %v", url, err)
			continue
		}
		added++
	}
	log.Printf("Discovery: %d announced mints, %d new", len(urls), added)

	if err := s.board.Apply(ctx, board.DatasetRefreshed{Dataset: board.DefaultDataset}); err != nil {
		log.Printf("Dataset refresh failed: %v", err)
	}
}

// enrichLightning probes the lightning node behind every mint whose latest
// health check succeeded, as dead mints cannot answer a quote request.
func (s *Scheduler) enrichLightning(ctx context.Context) {
	mints, err := s.storage.GetAllMints(ctx)
	if err != nil {
		log.Printf("Failed to load mints for lightning enrichment: %v", err)
		return
	}

	for _, m := range mints {
		latest, err := s.storage.GetLatestHealthCheck(ctx, m.ID)
		if err != nil || latest == nil || !latest.Status {
			continue
		}
		res := s.lightning.Probe(ctx, m.URL)
		snap := res.Snapshot(m.ID)
		if err := s.storage.RecordLightningSnapshot(ctx, snap); err != nil {
			log.Printf("Failed to record lightning snapshot for %s: %v", m.URL, err)
		}
	}
}
