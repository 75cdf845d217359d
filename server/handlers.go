package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rustyeddy/optsim/chart"
	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/gbm"
	"github.com/rustyeddy/optsim/market"
	"github.com/rustyeddy/optsim/option"
)

// TickerNotFound is shown when a ticker lookup fails.
const TickerNotFound = "Ticker information not found"

type priceRequest struct {
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Years      float64 `json:"years"`
	Rate       float64 `json:"rate"`
	Volatility float64 `json:"volatility"`
	Kind       string  `json:"kind"`
	Symbol     string  `json:"symbol,omitempty"`
}

type priceResponse struct {
	RunID          string          `json:"run_id"`
	Premium        float64         `json:"premium"`
	PremiumDisplay string          `json:"premium_display"`
	Market         market.State    `json:"market"`
	Contract       option.Contract `json:"contract"`
	Quote          *market.Quote   `json:"quote,omitempty"`
}

type simulateRequest struct {
	Spot         float64 `json:"spot" form:"spot"`
	Years        float64 `json:"years" form:"years"`
	Rate         float64 `json:"rate" form:"rate"`
	Volatility   float64 `json:"volatility" form:"volatility"`
	Symbol       string  `json:"symbol,omitempty" form:"symbol"`
	NumPaths     *int    `json:"num_paths,omitempty" form:"num_paths"`
	StepsPerYear *int    `json:"steps_per_year,omitempty" form:"steps_per_year"`
	Seed         *uint64 `json:"seed,omitempty" form:"seed"`
	Strike       float64 `json:"strike,omitempty" form:"strike"`
}

type simulateResponse struct {
	RunID  string        `json:"run_id"`
	Seed   uint64        `json:"seed"`
	Rows   int           `json:"rows"`
	Paths  int           `json:"paths"`
	Market market.State  `json:"market"`
	Quote  *market.Quote `json:"quote,omitempty"`
	Stats  gbm.Stats     `json:"stats"`
	Grid   [][]float64   `json:"grid"`
}

type rowMessage struct {
	Step   int       `json:"step"`
	Prices []float64 `json:"prices"`
}

type errorResponse struct {
	RunID  string `json:"run_id"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// simulation is a validated simulate request ready to run.
type simulation struct {
	market market.State
	quote  *market.Quote
	cfg    gbm.Config
	seed   uint64
	years  float64
}

func (s *Server) handlePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err))
		return
	}

	kind, err := option.ParseKind(req.Kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	m, q, err := market.Resolve(c.Request.Context(), s.opts.Provider, req.Symbol,
		market.State{Spot: req.Spot, Rate: req.Rate, Volatility: req.Volatility})
	if err != nil {
		s.fail(c, err)
		return
	}

	contract := option.Contract{Strike: req.Strike, Years: req.Years, Kind: kind}
	premium, err := option.Price(m, contract)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, priceResponse{
		RunID:          runID(c),
		Premium:        premium,
		PremiumDisplay: option.FormatPremium(premium),
		Market:         m,
		Contract:       contract,
		Quote:          q,
	})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err))
		return
	}

	ctx, cancel := s.simulateContext(c.Request.Context())
	defer cancel()

	sim, err := s.prepare(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := gbm.Simulate(ctx, sim.market, sim.years, sim.cfg, gbm.NewRand(sim.seed))
	if err != nil {
		s.fail(c, err)
		return
	}

	s.log.Debug("simulated", "run_id", runID(c), "rows", e.NumRows(), "paths", e.NumPaths(), "seed", sim.seed)
	c.JSON(http.StatusOK, simulateResponse{
		RunID:  runID(c),
		Seed:   sim.seed,
		Rows:   e.NumRows(),
		Paths:  e.NumPaths(),
		Market: sim.market,
		Quote:  sim.quote,
		Stats:  e.Stats(),
		Grid:   e.Rows(),
	})
}

func (s *Server) handleChart(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err))
		return
	}

	if !(req.Strike > 0) || math.IsInf(req.Strike, 1) {
		s.fail(c, fmt.Errorf("%w: strike must be positive, got %v", errs.ErrInvalidArgument, req.Strike))
		return
	}

	format := c.DefaultQuery("format", "png")
	contentType := map[string]string{"png": "image/png", "svg": "image/svg+xml"}[format]
	if contentType == "" {
		s.fail(c, fmt.Errorf("%w: unsupported chart format %q", errs.ErrInvalidArgument, format))
		return
	}

	ctx, cancel := s.simulateContext(c.Request.Context())
	defer cancel()

	sim, err := s.prepare(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := gbm.Simulate(ctx, sim.market, sim.years, sim.cfg, gbm.NewRand(sim.seed))
	if err != nil {
		s.fail(c, err)
		return
	}

	p, err := chart.Render(e, req.Strike, chart.Options{})
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.Write(&buf, p, format, chart.Options{}); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Seed", fmt.Sprint(sim.seed))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleQuote(c *gin.Context) {
	symbol := c.Param("symbol")
	_, q, err := market.Resolve(c.Request.Context(), s.opts.Provider, symbol, market.State{})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// handleStream sends one websocket message per simulated row so clients
// can draw paths as they are generated.
func (s *Server) handleStream(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err))
		return
	}

	ctx, cancel := s.simulateContext(c.Request.Context())
	defer cancel()

	sim, err := s.prepare(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows, err := gbm.Stream(ctx, sim.market, sim.years, sim.cfg, gbm.NewRand(sim.seed))
	if err != nil {
		s.fail(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "run_id", runID(c), "error", err)
		return
	}
	defer conn.Close()

	for step, prices := range rows {
		if err := conn.WriteJSON(rowMessage{Step: step, Prices: prices}); err != nil {
			s.log.Warn("stream write failed", "run_id", runID(c), "step", step, "error", err)
			return
		}
	}

	code, reason := websocket.CloseNormalClosure, "done"
	if err := ctx.Err(); err != nil {
		code, reason = websocket.CloseTryAgainLater, err.Error()
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

func (s *Server) prepare(ctx context.Context, req simulateRequest) (simulation, error) {
	cfg := s.opts.Simulation
	if req.NumPaths != nil {
		cfg.NumPaths = *req.NumPaths
	}
	if req.StepsPerYear != nil {
		cfg.StepsPerYear = *req.StepsPerYear
	}
	if s.opts.MaxPaths > 0 && cfg.NumPaths > s.opts.MaxPaths {
		return simulation{}, fmt.Errorf("%w: num_paths %d exceeds limit of %d", errs.ErrInvalidArgument, cfg.NumPaths, s.opts.MaxPaths)
	}

	m, q, err := market.Resolve(ctx, s.opts.Provider, req.Symbol,
		market.State{Spot: req.Spot, Rate: req.Rate, Volatility: req.Volatility})
	if err != nil {
		return simulation{}, err
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	return simulation{market: m, quote: q, cfg: cfg, seed: seed, years: req.Years}, nil
}

func (s *Server) simulateContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.SimulateTimeout > 0 {
		return context.WithTimeout(parent, s.opts.SimulateTimeout)
	}
	return context.WithCancel(parent)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{RunID: runID(c), Error: err.Error()}
	if errors.Is(err, errs.ErrUpstreamUnavailable) {
		resp.Error, resp.Detail = TickerNotFound, err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "run_id", runID(c), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrDegenerateInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
