package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/registry"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// fakeMint serves the two probed endpoints and counts hits per path.
type fakeMint struct {
	*httptest.Server
	infoHits    int32
	keysetsHits int32
}

func newFakeMint(t *testing.T, keysetsBody string, infoStatus int) *fakeMint {
	t.Helper()
	m := &fakeMint{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/info":
			atomic.AddInt32(&m.infoHits, 1)
			w.WriteHeader(infoStatus)
			w.Write([]byte(`{"name":"test mint"}`))
		case "/v1/keysets":
			atomic.AddInt32(&m.keysetsHits, 1)
			w.Write([]byte(keysetsBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

const keysetsOK = `{"keysets":[
	{"id":"a","active":true,"unit":"sat"},
	{"id":"b","active":true,"unit":"usd"},
	{"id":"c","active":true,"unit":"sat"},
	{"id":"d","active":false,"unit":"eur"}
]}`

func newTestProber(reg *registry.Registry, rec HealthRecorder) *Prober {
	return New(reg, rec, Config{
		TTL:     time.Minute,
		Timeout: 2 * time.Second,
		Stagger: time.Millisecond,
		Workers: 4,
	})
}

func TestLatencyProbe(t *testing.T) {
	mint := newFakeMint(t, keysetsOK, http.StatusOK)
	p := newTestProber(registry.New(), nil)

	ms, ok := p.Latency(context.Background(), mint.URL+"/")
	if !ok {
		t.Fatal("probe failed against a live server")
	}
	if ms < 0 {
		t.Errorf("latency = %d", ms)
	}

	// Second call inside the TTL is served from cache.
	p.Latency(context.Background(), mint.URL+"/")
	if n := atomic.LoadInt32(&mint.infoHits); n != 1 {
		t.Errorf("info hits = %d, want 1", n)
	}
}

func TestLatencyProbeNon2xx(t *testing.T) {
	mint := newFakeMint(t, keysetsOK, http.StatusBadGateway)
	p := newTestProber(registry.New(), nil)

	if _, ok := p.Latency(context.Background(), mint.URL); ok {
		t.Fatal("non-2xx reported ok")
	}
	// Failures are not cached: the next call hits the server again.
	p.Latency(context.Background(), mint.URL)
	if n := atomic.LoadInt32(&mint.infoHits); n != 2 {
		t.Errorf("info hits = %d, want 2", n)
	}
}

func TestLatencyProbeUnreachable(t *testing.T) {
	p := newTestProber(registry.New(), nil)
	if _, ok := p.Latency(context.Background(), "http://127.0.0.1:1"); ok {
		t.Fatal("unreachable host reported ok")
	}
}

func TestUnitsProbe(t *testing.T) {
	mint := newFakeMint(t, keysetsOK, http.StatusOK)
	p := newTestProber(registry.New(), nil)

	units, ok := p.Units(context.Background(), mint.URL)
	if !ok {
		t.Fatal("units probe failed")
	}
	// Inactive keysets excluded, duplicates collapsed, sorted.
	if want := []string{"sat", "usd"}; !reflect.DeepEqual(units, want) {
		t.Errorf("units = %v, want %v", units, want)
	}
}

func TestUnitsProbeMalformed(t *testing.T) {
	mint := newFakeMint(t, `{"keysets": "nope"`, http.StatusOK)
	p := newTestProber(registry.New(), nil)

	if _, ok := p.Units(context.Background(), mint.URL); ok {
		t.Fatal("malformed body reported ok")
	}
}

// recordingStore captures RecordProbe calls.
type recordingStore struct {
	mu      sync.Mutex
	records []recordedProbe
}

type recordedProbe struct {
	url string
	up  bool
	ms  *int
}

func (r *recordingStore) RecordProbe(ctx context.Context, url string, up bool, responseMS *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedProbe{url: url, up: up, ms: responseMS})
	return nil
}

func TestMeasureAll(t *testing.T) {
	live := newFakeMint(t, keysetsOK, http.StatusOK)
	deadURL := "http://127.0.0.1:1"

	reg := registry.New()
	reg.ReplaceAll([]*models.MintStatus{
		models.NewMintStatus(live.URL),
		models.NewMintStatus(deadURL),
	})

	rec := &recordingStore{}
	p := newTestProber(reg, rec)

	p.MeasureAll(context.Background(), true)

	up, _ := reg.Get(live.URL)
	if !up.IsUp || up.LatencyMS == models.LatencyUnknown {
		t.Errorf("live mint: up=%v latency=%d", up.IsUp, up.LatencyMS)
	}
	if want := []string{"sat", "usd"}; !reflect.DeepEqual(up.Units, want) {
		t.Errorf("live mint units = %v", up.Units)
	}

	// One dead mint never blocks the rest of the sweep.
	down, _ := reg.Get(deadURL)
	if down.IsUp || down.LatencyMS != models.LatencyUnknown {
		t.Errorf("dead mint: up=%v latency=%d", down.IsUp, down.LatencyMS)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.records) != 2 {
		t.Fatalf("recorded %d probes, want 2", len(rec.records))
	}
	for _, r := range rec.records {
		if r.up && r.ms == nil {
			t.Errorf("up record for %s missing latency", r.url)
		}
		if !r.up && r.ms != nil {
			t.Errorf("down record for %s carries latency", r.url)
		}
	}
}

func TestRefreshRespectsClearPolicy(t *testing.T) {
	mint := newFakeMint(t, keysetsOK, http.StatusOK)

	reg := registry.New()
	reg.ReplaceAll([]*models.MintStatus{models.NewMintStatus(mint.URL)})

	p := New(reg, nil, Config{
		TTL:     time.Minute,
		Timeout: 2 * time.Second,
		Stagger: time.Millisecond,
		Workers: 4,
		Policy:  ClearVisible,
	})

	// Prime a cache entry for a mint that later drops off the board.
	stale := newFakeMint(t, keysetsOK, http.StatusOK)
	p.Latency(context.Background(), stale.URL)

	p.Refresh(context.Background())

	// The visible mint was re-probed.
	if n := atomic.LoadInt32(&mint.infoHits); n != 1 {
		t.Errorf("visible mint info hits = %d, want 1", n)
	}
	// The off-board entry survived the visible-scoped clear.
	if _, ok := p.latency.get(stale.URL); !ok {
		t.Error("off-board cache entry dropped under ClearVisible")
	}

	p.cfg.Policy = ClearAll
	p.ClearCaches()
	if p.latency.len() != 0 {
		t.Errorf("latency cache len = %d after ClearAll", p.latency.len())
	}
}

func TestMeasureAllCancelledContext(t *testing.T) {
	mint := newFakeMint(t, keysetsOK, http.StatusOK)

	reg := registry.New()
	reg.ReplaceAll([]*models.MintStatus{
		models.NewMintStatus(mint.URL),
		models.NewMintStatus(mint.URL + "/other"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProber(reg, nil)
	done := make(chan struct{})
	go func() {
		p.MeasureAll(ctx, true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("MeasureAll did not return on a cancelled context")
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://mint.example.com", "https://mint.example.com"},
		{"https://mint.example.com/", "https://mint.example.com"},
		{"https://mint.example.com//", "https://mint.example.com"},
	}
	for _, tt := range tests {
		if got := baseURL(tt.in); got != tt.want {
			t.Errorf("baseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
