package option

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/optsim/errs"
)

// Estimate is a Monte Carlo price with its standard error.
type Estimate struct {
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err"`
	Paths  int     `json:"paths"`
}

// EstimateFromTerminal prices the contract as the discounted mean payoff
// over simulated terminal prices.
func EstimateFromTerminal(terminal []float64, rate float64, c Contract) (Estimate, error) {
	if err := c.Validate(); err != nil {
		return Estimate{}, err
	}
	if len(terminal) == 0 {
		return Estimate{}, fmt.Errorf("%w: no terminal prices", errs.ErrInvalidArgument)
	}

	df := math.Exp(-rate * c.Years)
	payoffs := make([]float64, len(terminal))
	for i, s := range terminal {
		payoffs[i] = df * c.Payoff(s)
	}

	est := Estimate{Paths: len(payoffs)}
	if len(payoffs) == 1 {
		est.Price = payoffs[0]
		return est, nil
	}
	mean, sd := stat.MeanStdDev(payoffs, nil)
	est.Price = mean
	est.StdErr = sd / math.Sqrt(float64(len(payoffs)))
	return est, nil
}
