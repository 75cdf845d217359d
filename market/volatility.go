package market

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/optsim/errs"
)

// TradingDaysPerYear is the annualization factor for daily data.
const TradingDaysPerYear = 252

// Returns computes simple period returns c[i]/c[i-1] - 1.
func Returns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 closes, got %d", errs.ErrInvalidArgument, len(closes))
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || !finite(prev) || cur <= 0 || !finite(cur) {
			return nil, fmt.Errorf("%w: close %d is not a positive price", errs.ErrInvalidArgument, i)
		}
		out = append(out, cur/prev-1)
	}
	return out, nil
}

// HistoricalVolatility returns the population standard deviation of simple
// returns scaled by sqrt(periodsPerYear).
func HistoricalVolatility(closes []float64, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("%w: periods per year must be positive, got %d", errs.ErrInvalidArgument, periodsPerYear)
	}
	rets, err := Returns(closes)
	if err != nil {
		return 0, err
	}
	_, variance := stat.PopMeanVariance(rets, nil)
	return math.Sqrt(variance) * math.Sqrt(float64(periodsPerYear)), nil
}
