package server

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/storage"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

// Server exposes the board over HTTP: ranked rows for renderers, and the
// weight/sort/reset event boundary.
type Server struct {
	app     *fiber.App
	board   *board.Board
	storage storage.Storage
}

// New creates the HTTP server and registers all routes.
func New(b *board.Board, store storage.Storage) *Server {
	s := &Server{
		app:     fiber.New(fiber.Config{AppName: "mintboard"}),
		board:   b,
		storage: store,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)
	s.app.Get("/", s.index)
	s.app.Get("/dashboard", s.dashboard)

	v1 := s.app.Group("/v1")
	v1.Get("/board", s.boardRows)
	v1.Post("/board/weights", s.changeWeight)
	v1.Post("/board/sort", s.clickColumn)
	v1.Post("/board/reset", s.reset)
	v1.Post("/mints", s.registerMint)
	v1.Put("/mints/stats", s.updateStats)
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// BoardRow is one ranked row as handed to renderers.
type BoardRow struct {
	URL           string   `json:"url"`
	Name          string   `json:"name,omitempty"`
	Up            bool     `json:"up"`
	Uptime        float64  `json:"uptime"`
	CapacitySats  int64    `json:"capacity_sats"`
	ChannelCount  int      `json:"channel_count"`
	CurrencyCount int      `json:"currency_count"`
	Units         []string `json:"units,omitempty"`
	LatencyMS     int      `json:"latency_ms"`
	LatencyClass  string   `json:"latency_class"`
	MintCount     int64    `json:"mint_count"`
	MeltCount     int64    `json:"melt_count"`
	ErrorCount    int64    `json:"error_count"`
	Score         float64  `json:"score"`
}

func (s *Server) rows() []BoardRow {
	weights := s.board.Weights()
	ranked := s.board.Rankings()
	rows := make([]BoardRow, len(ranked))
	for i, st := range ranked {
		rows[i] = toRow(st, weights)
	}
	return rows
}

func toRow(st *models.MintStatus, w rank.Weights) BoardRow {
	return BoardRow{
		URL:           st.URL,
		Name:          st.Name,
		Up:            st.IsUp,
		Uptime:        st.Uptime,
		CapacitySats:  st.CapacitySats,
		ChannelCount:  st.ChannelCount,
		CurrencyCount: st.CurrencyCount,
		Units:         st.Units,
		LatencyMS:     st.LatencyMS,
		LatencyClass:  rank.LatencyClass(st.LatencyMS),
		MintCount:     st.MintCount,
		MeltCount:     st.MeltCount,
		ErrorCount:    st.ErrorCount,
		Score:         rank.Score(st, w),
	}
}

func (s *Server) boardRows(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"rows":    s.rows(),
		"weights": s.board.Weights(),
		"sort":    s.board.SortState(),
	})
}

type weightRequest struct {
	Criterion string  `json:"criterion"`
	Value     float64 `json:"value"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

func (s *Server) changeWeight(c *fiber.Ctx) error {
	var req weightRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	var ev board.Event
	if req.Criterion == rank.CriterionStatus {
		if req.Enabled == nil {
			return fiber.NewError(fiber.StatusBadRequest, "status criterion requires 'enabled'")
		}
		ev = board.StatusToggled{Enabled: *req.Enabled}
	} else {
		ev = board.WeightChanged{Criterion: req.Criterion, Value: req.Value}
	}

	if err := s.board.Apply(c.Context(), ev); err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownCriterion) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"weights": s.board.Weights(), "sort": s.board.SortState()})
}

type sortRequest struct {
	Column string `json:"column"`
}

func (s *Server) clickColumn(c *fiber.Ctx) error {
	var req sortRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if err := s.board.Apply(c.Context(), board.ColumnClicked{Column: req.Column}); err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownColumn) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"sort": s.board.SortState()})
}

func (s *Server) reset(c *fiber.Ctx) error {
	if err := s.board.Apply(c.Context(), board.ResetRequested{}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"weights": s.board.Weights(), "sort": s.board.SortState()})
}

type mintRequest struct {
	URL string `json:"url"`
}

func (s *Server) registerMint(c *fiber.Ctx) error {
	var req mintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	mint, err := s.storage.EnsureMint(c.Context(), req.URL)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrMintURLEmpty) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	// The record set changed; refresh outside the request so registration
	// does not wait for a full probe batch.
	go s.refreshDataset()

	return c.Status(fiber.StatusCreated).JSON(mint)
}

type statsRequest struct {
	URL    string `json:"url"`
	Mints  int64  `json:"mints"`
	Melts  int64  `json:"melts"`
	Errors int64  `json:"errors"`
}

// updateStats is the external auditor feed for activity counters.
func (s *Server) updateStats(c *fiber.Ctx) error {
	var req statsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	mint, err := s.storage.GetMintByURL(c.Context(), req.URL)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "mint not found")
	}
	err = s.storage.UpsertMintStats(c.Context(), &models.MintStats{
		MintID:     mint.ID,
		MintCount:  req.Mints,
		MeltCount:  req.Melts,
		ErrorCount: req.Errors,
	})
	if err != nil {
		return err
	}

	go s.refreshDataset()

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) refreshDataset() {
	ev := board.DatasetRefreshed{Dataset: board.DefaultDataset}
	if err := s.board.Apply(context.Background(), ev); err != nil {
		log.Printf("Dataset refresh failed: %v", err)
	}
}
