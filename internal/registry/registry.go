package registry

import (
	"sort"
	"sync"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// Registry holds the current board record for every mint, keyed by URL.
// The refresh path replaces the whole record set at once; the probe cache is
// the only writer of the latency and unit fields in between refreshes.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*models.MintStatus
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]*models.MintStatus)}
}

// ReplaceAll swaps in a new record set atomically. Records carrying a fresh
// probe result in the old set do not survive the swap; the next measure pass
// repopulates them from the probe caches.
func (r *Registry) ReplaceAll(statuses []*models.MintStatus) {
	next := make(map[string]*models.MintStatus, len(statuses))
	for _, s := range statuses {
		if s == nil || s.URL == "" {
			continue
		}
		next[s.URL] = s
	}
	r.mu.Lock()
	r.records = next
	r.mu.Unlock()
}

// SetLatency records a probe outcome for a mint. ok=false marks the latency
// unknown (sentinel) and the mint down.
func (r *Registry) SetLatency(url string, ms int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, found := r.records[url]
	if !found {
		return
	}
	if ok {
		s.LatencyMS = ms
		s.IsUp = true
	} else {
		s.LatencyMS = models.LatencyUnknown
		s.IsUp = false
	}
}

// SetUnits records the active unit set for a mint.
func (r *Registry) SetUnits(url string, units []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, found := r.records[url]
	if !found {
		return
	}
	s.Units = append([]string(nil), units...)
	s.CurrencyCount = len(units)
}

// Get returns a copy of one record.
func (r *Registry) Get(url string) (*models.MintStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, found := r.records[url]
	if !found {
		return nil, false
	}
	return s.Clone(), true
}

// Snapshot returns copies of all records in URL order. The ranking engine
// treats this as an unordered point-in-time view.
func (r *Registry) Snapshot() []*models.MintStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.MintStatus, 0, len(r.records))
	for _, s := range r.records {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// URLs returns the current set of mint URLs in stable order.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	urls := make([]string, 0, len(r.records))
	for u := range r.records {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Len returns the number of tracked mints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
