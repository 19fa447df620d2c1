package lightning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

const (
	quotePath       = "/v1/mint/quote/bolt11"
	nodeMetadataURL = "https://1ml.com/node/%s/json"
)

// ProbeResult holds what one enrichment pass learned about a mint's
// lightning node. Fields stay nil when the corresponding step failed.
type ProbeResult struct {
	Invoice          *string
	PayeePubkey      *string
	NodeName         *string
	NodeCapacitySats *int64
	NodeChannelCount *int
}

// Snapshot converts the result into a persistable snapshot for the mint.
func (r *ProbeResult) Snapshot(mintID int64) *models.LightningSnapshot {
	return &models.LightningSnapshot{
		MintID:           mintID,
		Invoice:          r.Invoice,
		PayeePubkey:      r.PayeePubkey,
		NodeName:         r.NodeName,
		NodeCapacitySats: r.NodeCapacitySats,
		NodeChannelCount: r.NodeChannelCount,
	}
}

// Prober enriches mints with lightning node metadata: request a small mint
// quote, read the payee out of the invoice, and look the node up on 1ml.
type Prober struct {
	client *http.Client
}

// New creates a Prober. Lightning endpoints are slow; the original uses a
// 15 second budget.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe never fails outright; every step degrades to nil fields.
func (p *Prober) Probe(ctx context.Context, mintURL string) *ProbeResult {
	res := &ProbeResult{}

	invoice, ok := p.fetchInvoice(ctx, mintURL)
	if !ok {
		return res
	}
	res.Invoice = &invoice

	pubkey, ok := payeeFromInvoice(invoice)
	if !ok {
		return res
	}
	res.PayeePubkey = &pubkey

	p.fillNodeMetadata(ctx, pubkey, res)
	return res
}

type quoteRequest struct {
	Unit   string `json:"unit"`
	Amount int    `json:"amount"`
}

type quoteResponse struct {
	Request string `json:"request"`
	Bolt11  string `json:"bolt11"`
}

// fetchInvoice requests a 100 sat mint quote, trying https before http.
func (p *Prober) fetchInvoice(ctx context.Context, mintURL string) (string, bool) {
	host := strings.TrimRight(mintURL, "/")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	payload, _ := json.Marshal(quoteRequest{Unit: "sat", Amount: 100})

	for _, scheme := range []string{"https", "http"} {
		endpoint := fmt.Sprintf("%s://%s%s", scheme, host, quotePath)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			continue
		}
		var quote quoteResponse
		err = json.NewDecoder(resp.Body).Decode(&quote)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || err != nil {
			continue
		}
		if quote.Request != "" {
			return quote.Request, true
		}
		if quote.Bolt11 != "" {
			return quote.Bolt11, true
		}
	}
	return "", false
}

type nodeMetadata struct {
	Alias        string          `json:"alias"`
	Capacity     json.RawMessage `json:"capacity"`
	ChannelCount json.RawMessage `json:"channelcount"`
}

// flexInt parses a JSON field 1ml serves either as a number or as a digit
// string.
func flexInt(raw json.RawMessage) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *Prober) fillNodeMetadata(ctx context.Context, pubkey string, res *ProbeResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(nodeMetadataURL, pubkey), nil)
	if err != nil {
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	var meta nodeMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return
	}
	if meta.Alias != "" {
		alias := meta.Alias
		res.NodeName = &alias
	}
	if capacity, ok := flexInt(meta.Capacity); ok {
		res.NodeCapacitySats = &capacity
	}
	if channels, ok := flexInt(meta.ChannelCount); ok {
		count := int(channels)
		res.NodeChannelCount = &count
	}
}
