package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

// Mint announcements are nostr kind 38172 events carrying the mint URL in
// their "u" tag.
const mintAnnouncementKind = 38172

// DefaultRelays are the relays watched for mint announcements.
var DefaultRelays = []string{
	"wss://relay.damus.io",
	"wss://relay.snort.social",
	"wss://relay.nostr.band",
	"wss://relay.primal.net",
	"wss://nos.lol",
}

// Event is a nostr event as delivered by a relay.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
	Relay     string     `json:"relay,omitempty"`
}

// MintURL extracts the announced mint URL from the event's "u" tag.
func (e *Event) MintURL() string {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "u" {
			return strings.TrimSpace(tag[1])
		}
	}
	return ""
}

// Config holds discovery parameters.
type Config struct {
	Relays      []string
	IdleTimeout time.Duration // stop once no relay delivered an event for this long
	MaxDuration time.Duration // hard cap on a discovery pass
}

// DefaultConfig returns the discovery defaults.
func DefaultConfig() Config {
	return Config{
		Relays:      DefaultRelays,
		IdleTimeout: time.Second,
		MaxDuration: 30 * time.Second,
	}
}

// Discoverer streams mint announcements from nostr relays.
type Discoverer struct {
	dialer *websocket.Dialer
	cfg    Config
}

// New creates a Discoverer.
func New(cfg Config) *Discoverer {
	def := DefaultConfig()
	if len(cfg.Relays) == 0 {
		cfg.Relays = def.Relays
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = def.MaxDuration
	}
	return &Discoverer{
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		cfg:    cfg,
	}
}

// DiscoverMintURLs subscribes to every configured relay, deduplicates events
// by id across relays, stops once all relays went idle (or the hard cap
// hits), and returns the sorted unique set of announced mint URLs. Relay
// failures are logged and skipped; only a fully empty relay set is an error.
func (d *Discoverer) DiscoverMintURLs(ctx context.Context) ([]string, error) {
	if len(d.cfg.Relays) == 0 {
		return nil, pkgerrors.ErrNoRelays
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.MaxDuration)
	defer cancel()

	events := make(chan *Event, 64)
	dedup := &eventDedup{seen: make(map[string]bool)}

	var wg sync.WaitGroup
	for _, relay := range d.cfg.Relays {
		wg.Add(1)
		go func(relay string) {
			defer wg.Done()
			if err := d.streamRelay(ctx, relay, dedup, events); err != nil && ctx.Err() == nil {
				log.Printf("discovery: %v", err)
			}
		}(relay)
	}

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	urls := make(map[string]bool)
	idle := time.NewTimer(d.cfg.IdleTimeout)
	defer idle.Stop()

collect:
	for {
		select {
		case ev := <-events:
			if u := ev.MintURL(); u != "" {
				urls[u] = true
			}
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(d.cfg.IdleTimeout)
		case <-idle.C:
			break collect
		case <-workersDone:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	cancel()
	<-workersDone

	// A worker may have buffered events between the last receive and the
	// loop exit; with every sender gone, collect what is left.
drain:
	for {
		select {
		case ev := <-events:
			if u := ev.MintURL(); u != "" {
				urls[u] = true
			}
		default:
			break drain
		}
	}

	out := make([]string, 0, len(urls))
	for u := range urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// streamRelay subscribes to one relay and forwards deduplicated events until
// the context ends or the relay closes the connection.
func (d *Discoverer) streamRelay(ctx context.Context, relay string, dedup *eventDedup, out chan<- *Event) error {
	conn, _, err := d.dialer.DialContext(ctx, relay, nil)
	if err != nil {
		return &pkgerrors.RelayError{Relay: relay, Err: err}
	}
	defer conn.Close()

	// Unblock ReadMessage when the collector is done.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	subID := fmt.Sprintf("sub_%d", time.Now().UnixMilli())
	req := []interface{}{
		"REQ", subID,
		map[string]interface{}{"kinds": []int{mintAnnouncementKind}},
	}
	if err := conn.WriteJSON(req); err != nil {
		return &pkgerrors.RelayError{Relay: relay, Err: err}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &pkgerrors.RelayError{Relay: relay, Err: err}
		}
		ev, ok := parseEventMessage(message)
		if !ok || !dedup.first(ev.ID) {
			continue
		}
		ev.Relay = relay
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// parseEventMessage decodes a relay frame and returns the event when the
// frame is ["EVENT", <sub>, {...}]. Anything else (EOSE, NOTICE, junk) is
// skipped.
func parseEventMessage(message []byte) (*Event, bool) {
	var frame []json.RawMessage
	if err := json.Unmarshal(message, &frame); err != nil || len(frame) < 3 {
		return nil, false
	}
	var kind string
	if err := json.Unmarshal(frame[0], &kind); err != nil || kind != "EVENT" {
		return nil, false
	}
	var ev Event
	if err := json.Unmarshal(frame[2], &ev); err != nil || ev.ID == "" {
		return nil, false
	}
	return &ev, true
}

// eventDedup tracks event ids seen across relays.
type eventDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

// first reports whether id is new and marks it seen.
func (d *eventDedup) first(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false
	}
	d.seen[id] = true
	return true
}
