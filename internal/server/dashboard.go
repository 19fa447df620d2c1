package server

import (
	"fmt"
	"html"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

const sparklineChecks = 50

// dashboard renders the ranked table body. The page re-fetches it every 10
// seconds.
func (s *Server) dashboard(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(s.renderTbody(c))
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Type("html")

	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><meta charset=utf-8>` +
		`<meta name=viewport content="width=device-width, initial-scale=1">` +
		`<title>Cashu Mint Status</title>` +
		`<style>` + pageStyles + `</style>` +
		`<script src="https://unpkg.com/htmx.org@2.0.2"></script>` +
		`</head><body>` +
		`<header><h1>Cashu Mint Status Board <span class=muted>(refreshes every 10s)</span></h1></header>` +
		`<main><div hx-get="/dashboard" hx-trigger="load, every 10s" hx-target="#dashboard" hx-swap="outerHTML">` +
		`<table class=card><thead><tr>` +
		`<th>Mint</th><th>Status</th><th>Uptime (24h)</th><th>Last 50</th>` +
		`<th>Units</th><th>LN Capacity</th><th>Channels</th><th>Latency</th><th>Score</th>` +
		`</tr></thead>`)
	b.WriteString(s.renderTbody(c))
	b.WriteString(`</table></div></main>` +
		`<footer>Ranked by weighted score; probe caches refresh every 15s.</footer>` +
		`</body></html>`)
	return c.SendString(b.String())
}

func (s *Server) renderTbody(c *fiber.Ctx) string {
	weights := s.board.Weights()
	ranked := s.board.Rankings()

	var b strings.Builder
	b.WriteString(`<tbody id=dashboard>`)
	for _, st := range ranked {
		row := toRow(st, weights)
		fmt.Fprintf(&b, `<tr><td class=mono>%s</td><td>%s</td><td>%.0f%%</td><td><div class=spark>%s</div></td>`+
			`<td>%s</td><td>%s</td><td>%d</td><td class="mono lat-%s">%s</td><td class=mono>%.0f</td></tr>`,
			html.EscapeString(st.DisplayName()),
			statusCell(st.IsUp),
			st.Uptime*100,
			s.renderSparkline(c, st.URL),
			html.EscapeString(strings.Join(st.Units, ", ")),
			capacityCell(st.CapacitySats),
			st.ChannelCount,
			row.LatencyClass,
			latencyCell(st.LatencyMS),
			row.Score,
		)
	}
	b.WriteString(`</tbody>`)
	return b.String()
}

// renderSparkline draws the mint's last 50 checks as colored cells, newest
// first, padding missing history with the down color.
func (s *Server) renderSparkline(c *fiber.Ctx, url string) string {
	statuses := make([]bool, 0, sparklineChecks)
	if mint, err := s.storage.GetMintByURL(c.Context(), url); err == nil {
		if checks, err := s.storage.GetRecentHealthChecks(c.Context(), mint.ID, sparklineChecks); err == nil {
			for _, hc := range checks {
				statuses = append(statuses, hc.Status)
			}
		}
	}

	var b strings.Builder
	for i := 0; i < sparklineChecks; i++ {
		color := "#ef4444"
		if i < len(statuses) && statuses[i] {
			color = "#16a34a"
		}
		fmt.Fprintf(&b, `<span class="cell" style="background:%s"></span>`, color)
	}
	return b.String()
}

func statusCell(up bool) string {
	if up {
		return `<span class=up>up</span>`
	}
	return `<span class=down>down</span>`
}

func capacityCell(sats int64) string {
	if sats <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d sats", sats)
}

func latencyCell(ms int) string {
	if ms == models.LatencyUnknown {
		return "-"
	}
	return fmt.Sprintf("%d ms", ms)
}

const pageStyles = `
:root{color-scheme:light dark}
*{box-sizing:border-box}
body{margin:0;font-family:ui-sans-serif,system-ui,sans-serif;line-height:1.4;background:#0b0b0c;color:#e5e7eb}
header{padding:20px 16px;max-width:1200px;margin:0 auto}
h1{margin:0;font-size:22px;font-weight:600}
main{padding:0 16px 40px;max-width:1200px;margin:0 auto}
.card{width:100%;border-collapse:separate;border-spacing:0;background:#111214;border:1px solid #1f2937;border-radius:12px;overflow:hidden}
th,td{padding:12px 14px;border-bottom:1px solid #1f2937;text-align:left;font-size:14px}
thead th{position:sticky;top:0;background:#0f1113;z-index:1}
tbody tr:last-child td{border-bottom:none}
.spark{display:grid;grid-template-columns:repeat(50, minmax(2px, 1fr));gap:2px}
.cell{display:block;aspect-ratio:1/1;border-radius:2px}
.mono{font-family:ui-monospace,Menlo,Consolas,monospace;font-size:12px}
.muted{color:#9ca3af}
.up{color:#16a34a;font-weight:600}
.down{color:#ef4444;font-weight:600}
.lat-fast{color:#16a34a}
.lat-ok{color:#eab308}
.lat-slow{color:#ef4444}
footer{max-width:1200px;margin:10px auto 0;padding:0 16px;color:#9ca3af;font-size:12px}
`
