// Package server exposes the pricer and the path simulator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/optsim/config"
	"github.com/rustyeddy/optsim/gbm"
	"github.com/rustyeddy/optsim/market"
)

const shutdownTimeout = 5 * time.Second

// Options wires a Server. Provider may be nil, in which case ticker
// lookups fail as unavailable.
type Options struct {
	Addr            string
	SimulateTimeout time.Duration
	MaxPaths        int
	Simulation      gbm.Config
	Provider        market.Provider
	Logger          *slog.Logger
}

// OptionsFromConfig maps the file configuration onto Options.
func OptionsFromConfig(cfg *config.Config, p market.Provider, log *slog.Logger) (Options, error) {
	timeout, err := cfg.Server.ParseSimulateTimeout()
	if err != nil {
		return Options{}, fmt.Errorf("simulate timeout: %w", err)
	}
	return Options{
		Addr:            cfg.Server.Addr,
		SimulateTimeout: timeout,
		MaxPaths:        cfg.Server.MaxPaths,
		Simulation:      cfg.Simulation.GBM(),
		Provider:        p,
		Logger:          log,
	}, nil
}

type Server struct {
	opts     Options
	log      *slog.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Simulation.StepsPerYear == 0 {
		opts.Simulation.StepsPerYear = gbm.DefaultStepsPerYear
	}

	s := &Server{
		opts: opts,
		log:  opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	s.RegisterRoutes(r.Group("/api/v1"))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.engine = r

	return s
}

func (s *Server) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/price", s.handlePrice)
	g.POST("/simulate", s.handleSimulate)
	g.POST("/chart", s.handleChart)
	g.GET("/quote/:symbol", s.handleQuote)
	g.GET("/stream", s.handleStream)
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("HTTP server starting", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
