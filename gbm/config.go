// Package gbm simulates discretized Geometric Brownian Motion price paths.
package gbm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
)

const (
	// DefaultStepsPerYear follows the trading-day convention.
	DefaultStepsPerYear = 252

	// DefaultMaxCells caps rows*paths for a single request.
	DefaultMaxCells = 50_000_000

	// minParallelPaths is the narrowest row that is split across workers.
	minParallelPaths = 4096
)

// Config controls the shape of a simulation.
type Config struct {
	NumPaths     int `json:"num_paths" yaml:"num_paths"`
	StepsPerYear int `json:"steps_per_year" yaml:"steps_per_year"`
	MaxCells     int `json:"max_cells,omitempty" yaml:"max_cells,omitempty"`
	Workers      int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// DefaultConfig is 20 paths with daily steps.
func DefaultConfig() Config {
	return Config{
		NumPaths:     20,
		StepsPerYear: DefaultStepsPerYear,
		MaxCells:     DefaultMaxCells,
		Workers:      1,
	}
}

// Validate checks the config on its own; ceilings are checked per request.
func (c Config) Validate() error {
	if c.NumPaths <= 0 {
		return fmt.Errorf("%w: num_paths must be positive, got %d", errs.ErrInvalidArgument, c.NumPaths)
	}
	if c.StepsPerYear <= 0 {
		return fmt.Errorf("%w: steps_per_year must be positive, got %d", errs.ErrInvalidArgument, c.StepsPerYear)
	}
	if c.MaxCells < 0 {
		return fmt.Errorf("%w: max_cells must not be negative, got %d", errs.ErrInvalidArgument, c.MaxCells)
	}
	return nil
}

// NumSteps is floor(years * stepsPerYear).
func NumSteps(years float64, stepsPerYear int) int {
	return int(math.Floor(years * float64(stepsPerYear)))
}

// NewRand returns a seeded PCG generator for Simulate and Stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// plan is a validated request with the per-step constants folded in.
type plan struct {
	spot      float64
	steps     int
	paths     int
	dt        float64
	drift     float64
	diffusion float64
	workers   int
}

func newPlan(m market.State, years float64, cfg Config) (plan, error) {
	if err := m.Validate(); err != nil {
		return plan{}, err
	}
	if math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 {
		return plan{}, fmt.Errorf("%w: time to expiry must be positive, got %v", errs.ErrInvalidArgument, years)
	}
	if err := cfg.Validate(); err != nil {
		return plan{}, err
	}

	maxCells := cfg.MaxCells
	if maxCells == 0 {
		maxCells = DefaultMaxCells
	}
	// Checked in float64 so absurd horizons cannot overflow the int math.
	rows := math.Floor(years*float64(cfg.StepsPerYear)) + 1
	if rows*float64(cfg.NumPaths) > float64(maxCells) {
		return plan{}, fmt.Errorf("%w: %w: ensemble of %.0f rows x %d paths exceeds limit of %d cells",
			errs.ErrInvalidArgument, errs.ErrDegenerateInput, rows, cfg.NumPaths, maxCells)
	}
	steps := NumSteps(years, cfg.StepsPerYear)

	dt := 1 / float64(cfg.StepsPerYear)
	return plan{
		spot:      m.Spot,
		steps:     steps,
		paths:     cfg.NumPaths,
		dt:        dt,
		drift:     (m.Rate - 0.5*m.Volatility*m.Volatility) * dt,
		diffusion: m.Volatility * math.Sqrt(dt),
		workers:   max(cfg.Workers, 1),
	}, nil
}
