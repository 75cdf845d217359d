package option

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/optsim/market"
)

// roundoff bounds the negative values the closed form can return from
// cancellation; anything in (-roundoff*scale, 0) is reported as 0.
const roundoff = 1e-12

// Price returns the Black-Scholes present value of the contract.
//
// When volatility over the horizon is zero, including a positive rate
// that underflows σ√T, there is no diffusion and the price is the
// discounted intrinsic value, so d1/d2 are never evaluated.
func Price(m market.State, c Contract) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if m.Degenerate() || m.Volatility*math.Sqrt(c.Years) == 0 {
		return Intrinsic(m, c), nil
	}

	d1, d2 := D1D2(m, c)
	df := m.Discount(c.Years)
	phi := distuv.UnitNormal.CDF

	var p float64
	switch c.Kind {
	case Call:
		p = m.Spot*phi(d1) - c.Strike*df*phi(d2)
	case Put:
		p = c.Strike*df*phi(-d2) - m.Spot*phi(-d1)
	}
	return clampZero(p, math.Max(m.Spot, c.Strike)), nil
}

// D1D2 computes the standardized moneyness terms. σ√T must be > 0.
func D1D2(m market.State, c Contract) (float64, float64) {
	sqrtT := math.Sqrt(c.Years)
	volT := m.Volatility * sqrtT
	d1 := (math.Log(m.Spot/c.Strike) + (m.Rate+0.5*m.Volatility*m.Volatility)*c.Years) / volT
	return d1, d1 - volT
}

// Intrinsic is the value with no volatility: the payoff against the
// discounted strike.
func Intrinsic(m market.State, c Contract) float64 {
	fwd := ParityGap(m, c)
	if c.Kind == Put {
		return math.Max(-fwd, 0)
	}
	return math.Max(fwd, 0)
}

// ParityGap is S - K*exp(-rT), the value of call minus put.
func ParityGap(m market.State, c Contract) float64 {
	return m.Spot - c.Strike*m.Discount(c.Years)
}

func clampZero(p, scale float64) float64 {
	if p < 0 && p > -roundoff*scale {
		return 0
	}
	return p
}
