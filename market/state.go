package market

import (
	"fmt"
	"math"

	"github.com/rustyeddy/optsim/errs"
)

// State is the market side of a pricing or simulation request.
// Volatility is the annualized standard deviation of log returns.
type State struct {
	Spot       float64 `json:"spot" yaml:"spot"`
	Rate       float64 `json:"rate" yaml:"rate"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
}

// Validate checks spot > 0, volatility >= 0 and that every field is finite.
func (s State) Validate() error {
	if !finite(s.Spot) || !finite(s.Rate) || !finite(s.Volatility) {
		return fmt.Errorf("%w: market state must be finite (spot=%v rate=%v volatility=%v)",
			errs.ErrInvalidArgument, s.Spot, s.Rate, s.Volatility)
	}
	if s.Spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %v", errs.ErrInvalidArgument, s.Spot)
	}
	if s.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %v", errs.ErrInvalidArgument, s.Volatility)
	}
	return nil
}

// Degenerate reports whether the state has no diffusion term.
func (s State) Degenerate() bool {
	return s.Volatility == 0
}

// Discount returns exp(-rate*years).
func (s State) Discount(years float64) float64 {
	return math.Exp(-s.Rate * years)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
