package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shroominic/cashu-mint-status-board/internal/registry"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

const (
	infoPath    = "/v1/info"
	keysetsPath = "/v1/keysets"
)

// ClearPolicy controls which cached results the periodic refresh drops.
type ClearPolicy string

const (
	// ClearAll re-verifies every mint ever probed, including ones no
	// longer on the board.
	ClearAll ClearPolicy = "all"
	// ClearVisible scopes the clear to the currently tracked mint set.
	ClearVisible ClearPolicy = "visible"
)

// HealthRecorder persists liveness probe outcomes. Recording is best-effort;
// a storage failure never fails the probe.
type HealthRecorder interface {
	RecordProbe(ctx context.Context, url string, up bool, responseMS *int) error
}

// Config holds probing parameters.
type Config struct {
	TTL     time.Duration
	Timeout time.Duration
	Stagger time.Duration
	Workers int64
	Policy  ClearPolicy
}

// DefaultConfig returns the fixed probing parameters.
func DefaultConfig() Config {
	return Config{
		TTL:     10 * time.Second,
		Timeout: 5 * time.Second,
		Stagger: 100 * time.Millisecond,
		Workers: 16,
		Policy:  ClearAll,
	}
}

// Prober issues liveness and capability probes against mints, with TTL
// caching and in-flight deduplication per probe kind, and writes results
// back into the registry.
type Prober struct {
	client   *http.Client
	registry *registry.Registry
	recorder HealthRecorder
	cfg      Config

	latency *cache[int]
	units   *cache[[]string]
}

// New creates a Prober. recorder may be nil.
func New(reg *registry.Registry, recorder HealthRecorder, cfg Config) *Prober {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Stagger <= 0 {
		cfg.Stagger = def.Stagger
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	return &Prober{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		registry: reg,
		recorder: recorder,
		cfg:      cfg,
		latency:  newCache[int](cfg.TTL),
		units:    newCache[[]string](cfg.TTL),
	}
}

// Latency returns the round-trip time to the mint's info endpoint in
// milliseconds. ok=false means unreachable, timed out or a non-2xx response;
// such results are not cached, so the next call retries immediately.
func (p *Prober) Latency(ctx context.Context, url string) (int, bool) {
	return p.latency.do(url, func() (int, error) {
		return p.probeLatency(url)
	})
}

// Units returns the deduplicated set of active units the mint advertises on
// its keysets endpoint. ok=false means unreachable or malformed.
func (p *Prober) Units(ctx context.Context, url string) ([]string, bool) {
	return p.units.do(url, func() ([]string, error) {
		return p.probeUnits(url)
	})
}

func (p *Prober) probeLatency(url string) (int, error) {
	// A probe in flight has no cancellation lever beyond its own timeout;
	// callers that lose interest simply stop waiting.
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(url)+infoPath, nil)
	if err != nil {
		return 0, &pkgerrors.ProbeError{URL: url, Kind: "latency", Err: err}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, &pkgerrors.ProbeError{URL: url, Kind: "latency", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &pkgerrors.ProbeError{
			URL: url, Kind: "latency",
			Err: fmt.Errorf("unexpected status %d: %w", resp.StatusCode, pkgerrors.ErrProbeFailed),
		}
	}
	return int(elapsed.Milliseconds()), nil
}

type keysetsResponse struct {
	Keysets []struct {
		Active bool   `json:"active"`
		Unit   string `json:"unit"`
	} `json:"keysets"`
}

func (p *Prober) probeUnits(url string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(url)+keysetsPath, nil)
	if err != nil {
		return nil, &pkgerrors.ProbeError{URL: url, Kind: "keysets", Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &pkgerrors.ProbeError{URL: url, Kind: "keysets", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &pkgerrors.ProbeError{
			URL: url, Kind: "keysets",
			Err: fmt.Errorf("unexpected status %d: %w", resp.StatusCode, pkgerrors.ErrProbeFailed),
		}
	}

	var body keysetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &pkgerrors.ProbeError{
			URL: url, Kind: "keysets",
			Err: fmt.Errorf("%w: %v", pkgerrors.ErrMalformedResponse, err),
		}
	}

	seen := make(map[string]bool)
	units := make([]string, 0, len(body.Keysets))
	for _, ks := range body.Keysets {
		if !ks.Active || ks.Unit == "" || seen[ks.Unit] {
			continue
		}
		seen[ks.Unit] = true
		units = append(units, ks.Unit)
	}
	sort.Strings(units)
	return units, nil
}

// MeasureAll probes every tracked mint, firing both probe kinds concurrently
// per mint. When staggered, kickoffs are spaced by the stagger delay to
// avoid bursting connections after a full refresh; completion order is
// unrelated to kickoff order. It returns once every fired probe has settled.
// Failures are isolated per mint and per kind.
func (p *Prober) MeasureAll(ctx context.Context, staggered bool) {
	urls := p.registry.URLs()
	sem := semaphore.NewWeighted(p.cfg.Workers)
	var wg sync.WaitGroup

	for i, url := range urls {
		if staggered && i > 0 {
			select {
			case <-time.After(p.cfg.Stagger):
			case <-ctx.Done():
				wg.Wait()
				return
			}
		}

		wg.Add(2)
		go func(u string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			p.measureLatency(ctx, u)
		}(url)
		go func(u string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			if units, ok := p.Units(ctx, u); ok {
				p.registry.SetUnits(u, units)
			}
		}(url)
	}

	wg.Wait()
}

func (p *Prober) measureLatency(ctx context.Context, url string) {
	ms, ok := p.Latency(ctx, url)
	p.registry.SetLatency(url, ms, ok)
	if p.recorder == nil {
		return
	}
	var responseMS *int
	if ok {
		responseMS = &ms
	}
	// Record to history (best-effort)
	p.recorder.RecordProbe(ctx, url, ok, responseMS)
}

// Refresh implements the periodic tick: drop cached results per the clear
// policy, then re-measure with staggered kickoffs.
func (p *Prober) Refresh(ctx context.Context) {
	p.ClearCaches()
	p.MeasureAll(ctx, true)
}

// ClearCaches drops cached probe results according to the configured policy.
// Probes already in flight keep running and may repopulate entries.
func (p *Prober) ClearCaches() {
	if p.cfg.Policy == ClearVisible {
		urls := p.registry.URLs()
		p.latency.clearOnly(urls)
		p.units.clearOnly(urls)
		return
	}
	p.latency.clear()
	p.units.clear()
}

func baseURL(url string) string {
	return strings.TrimRight(url, "/")
}
