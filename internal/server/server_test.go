package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/app"
	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/probe"
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/registry"
	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*Server, *board.Board, *registry.Registry, storage.Storage) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := registry.New()
	p := probe.New(reg, nil, probe.Config{
		TTL:     time.Minute,
		Timeout: time.Second,
		Stagger: time.Millisecond,
		Workers: 4,
	})
	b := board.New(board.DefaultDataset, reg, p, app.NewLoader(store, 24*time.Hour))
	return New(b, store), b, reg, store
}

func request(t *testing.T, srv *Server, method, path string, payload interface{}) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp := request(t, srv, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestBoardRows(t *testing.T) {
	srv, _, reg, _ := newTestServer(t)

	a := models.NewMintStatus("http://127.0.0.1:1/a")
	a.Name = "Alpha"
	a.IsUp = true
	a.LatencyMS = 200
	c := models.NewMintStatus("http://127.0.0.1:1/c")
	reg.ReplaceAll([]*models.MintStatus{c, a})

	resp := request(t, srv, http.MethodGet, "/v1/board", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Rows    []BoardRow     `json:"rows"`
		Weights rank.Weights   `json:"weights"`
		Sort    rank.SortState `json:"sort"`
	}
	decode(t, resp, &body)

	if len(body.Rows) != 2 {
		t.Fatalf("rows = %d", len(body.Rows))
	}
	// The live mint ranks first under the default weights.
	if body.Rows[0].Name != "Alpha" || !body.Rows[0].Up {
		t.Errorf("first row = %+v", body.Rows[0])
	}
	if body.Rows[0].LatencyClass != rank.LatencyFast {
		t.Errorf("latency class = %s", body.Rows[0].LatencyClass)
	}
	if body.Rows[1].LatencyClass != rank.LatencyNone {
		t.Errorf("unknown latency class = %s", body.Rows[1].LatencyClass)
	}
	if body.Weights != rank.DefaultWeights() {
		t.Errorf("weights = %+v", body.Weights)
	}
	if body.Sort != rank.DefaultSortState() {
		t.Errorf("sort = %+v", body.Sort)
	}
}

func TestChangeWeight(t *testing.T) {
	srv, b, _, _ := newTestServer(t)

	resp := request(t, srv, http.MethodPost, "/v1/board/weights",
		map[string]interface{}{"criterion": "latency", "value": 42})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if got := b.Weights().Latency; got != 42 {
		t.Errorf("Latency = %f", got)
	}

	// The status criterion is a toggle and needs 'enabled'.
	resp = request(t, srv, http.MethodPost, "/v1/board/weights",
		map[string]interface{}{"criterion": "status", "value": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status toggle without enabled = %d", resp.StatusCode)
	}
	resp.Body.Close()

	enabled := false
	resp = request(t, srv, http.MethodPost, "/v1/board/weights",
		map[string]interface{}{"criterion": "status", "enabled": &enabled})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status toggle = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if b.Weights().Status {
		t.Error("status still enabled")
	}

	resp = request(t, srv, http.MethodPost, "/v1/board/weights",
		map[string]interface{}{"criterion": "bogus", "value": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown criterion = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClickColumn(t *testing.T) {
	srv, b, _, _ := newTestServer(t)

	resp := request(t, srv, http.MethodPost, "/v1/board/sort",
		map[string]string{"column": "latency"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if got := b.SortState(); got.Column != rank.ColLatency || got.Direction != rank.Asc {
		t.Errorf("state = %+v", got)
	}

	resp = request(t, srv, http.MethodPost, "/v1/board/sort",
		map[string]string{"column": "bogus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown column = %d", resp.StatusCode)
	}
	resp.Body.Close()
	// Prior state survives a rejected click.
	if got := b.SortState(); got.Column != rank.ColLatency {
		t.Errorf("state after rejection = %+v", got)
	}
}

func TestReset(t *testing.T) {
	srv, b, _, _ := newTestServer(t)

	request(t, srv, http.MethodPost, "/v1/board/weights",
		map[string]interface{}{"criterion": "channels", "value": 99}).Body.Close()
	request(t, srv, http.MethodPost, "/v1/board/sort",
		map[string]string{"column": "errors"}).Body.Close()

	resp := request(t, srv, http.MethodPost, "/v1/board/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	if b.Weights() != rank.DefaultWeights() || b.SortState() != rank.DefaultSortState() {
		t.Errorf("reset left weights=%+v sort=%+v", b.Weights(), b.SortState())
	}
}

func TestRegisterMint(t *testing.T) {
	srv, _, _, store := newTestServer(t)

	resp := request(t, srv, http.MethodPost, "/v1/mints",
		map[string]string{"url": "http://127.0.0.1:1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var mint models.Mint
	decode(t, resp, &mint)
	if mint.ID == 0 || mint.URL != "http://127.0.0.1:1" {
		t.Errorf("mint = %+v", mint)
	}

	if _, err := store.GetMintByURL(context.Background(), "http://127.0.0.1:1"); err != nil {
		t.Errorf("mint not persisted: %v", err)
	}

	resp = request(t, srv, http.MethodPost, "/v1/mints", map[string]string{"url": " "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank url = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateStats(t *testing.T) {
	srv, _, _, store := newTestServer(t)

	mint, err := store.EnsureMint(context.Background(), "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("EnsureMint: %v", err)
	}

	resp := request(t, srv, http.MethodPut, "/v1/mints/stats",
		map[string]interface{}{"url": "http://127.0.0.1:1", "mints": 100, "melts": 50, "errors": 2})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	stats, err := store.GetMintStats(context.Background(), mint.ID)
	if err != nil || stats == nil {
		t.Fatalf("GetMintStats: %v, %v", stats, err)
	}
	if stats.MintCount != 100 || stats.MeltCount != 50 || stats.ErrorCount != 2 {
		t.Errorf("stats = %+v", stats)
	}

	resp = request(t, srv, http.MethodPut, "/v1/mints/stats",
		map[string]interface{}{"url": "http://unknown.invalid", "mints": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown mint = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRefreshDatasetLogsFailure(t *testing.T) {
	srv, _, _, store := newTestServer(t)

	// A dead store makes the reload fail; the async refresh must say so
	// instead of dropping the error.
	store.Close()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	srv.refreshDataset()

	if !bytes.Contains(buf.Bytes(), []byte("Dataset refresh failed")) {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestDashboardPages(t *testing.T) {
	srv, _, reg, _ := newTestServer(t)

	s := models.NewMintStatus("http://127.0.0.1:1")
	s.Name = "Alpha"
	s.IsUp = true
	reg.ReplaceAll([]*models.MintStatus{s})

	for _, path := range []string{"/", "/dashboard"} {
		resp := request(t, srv, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d", path, resp.StatusCode)
		}
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if !bytes.Contains(buf.Bytes(), []byte("Alpha")) {
			t.Errorf("GET %s missing the mint row", path)
		}
	}
}

