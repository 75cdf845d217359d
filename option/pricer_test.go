package option

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
)

func TestPriceReferenceCases(t *testing.T) {
	tests := []struct {
		name   string
		state  market.State
		strike float64
		years  float64
		call   float64
		put    float64
	}{
		{
			name:   "app defaults",
			state:  market.State{Spot: 700, Rate: 0.015, Volatility: 0.02},
			strike: 725, years: 2,
			call: 6.259976811508977,
			put:  9.832988634177298,
		},
		{
			name:   "textbook atm",
			state:  market.State{Spot: 100, Rate: 0.05, Volatility: 0.2},
			strike: 100, years: 1,
			call: 10.450583572185565,
			put:  5.573526022256971,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := Price(tt.state, Contract{Strike: tt.strike, Years: tt.years, Kind: Call})
			require.NoError(t, err)
			assert.InDelta(t, tt.call, call, 1e-9)

			put, err := Price(tt.state, Contract{Strike: tt.strike, Years: tt.years, Kind: Put})
			require.NoError(t, err)
			assert.InDelta(t, tt.put, put, 1e-9)
		})
	}
}

func TestPutCallParity(t *testing.T) {
	spots := []float64{50, 95, 100, 105, 700, 2500}
	strikes := []float64{60, 100, 725, 2000}
	vols := []float64{0.01, 0.2, 0.8, 1.9}
	rates := []float64{0, 0.001, 0.015, 0.1}
	years := []float64{0.1, 1, 2, 10}

	for _, s := range spots {
		for _, k := range strikes {
			for _, v := range vols {
				for _, r := range rates {
					for _, y := range years {
						m := market.State{Spot: s, Rate: r, Volatility: v}
						call, err := Price(m, Contract{Strike: k, Years: y, Kind: Call})
						require.NoError(t, err)
						put, err := Price(m, Contract{Strike: k, Years: y, Kind: Put})
						require.NoError(t, err)

						gap := ParityGap(m, Contract{Strike: k, Years: y})
						tol := 1e-9 * math.Max(s, k)
						assert.InDelta(t, gap, call-put, tol, "S=%v K=%v v=%v r=%v T=%v", s, k, v, r, y)
						assert.GreaterOrEqual(t, call, 0.0)
						assert.GreaterOrEqual(t, put, 0.0)
					}
				}
			}
		}
	}
}

func TestPriceZeroVolatilityIsIntrinsic(t *testing.T) {
	m := market.State{Spot: 800, Rate: 0.015, Volatility: 0}
	c := Contract{Strike: 725, Years: 2, Kind: Call}

	call, err := Price(m, c)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(call))
	assert.InDelta(t, 800-725*math.Exp(-0.03), call, 1e-12)

	c.Kind = Put
	put, err := Price(m, c)
	require.NoError(t, err)
	assert.Equal(t, 0.0, put)

	m.Spot = 700
	put, err = Price(m, c)
	require.NoError(t, err)
	assert.InDelta(t, 725*math.Exp(-0.03)-700, put, 1e-12)
}

func TestPriceConvergesToIntrinsic(t *testing.T) {
	for _, spot := range []float64{650, 700, 704, 800} {
		m := market.State{Spot: spot, Rate: 0.015, Volatility: 1e-6}
		c := Contract{Strike: 725, Years: 2, Kind: Call}

		got, err := Price(m, c)
		require.NoError(t, err)

		want := math.Max(spot-725*math.Exp(-0.03), 0)
		assert.InDelta(t, want, got, 1e-6, "spot=%v", spot)
	}
}

func TestPriceUnderflowingVolatilityIsIntrinsic(t *testing.T) {
	// σ√T underflows to zero, so d1 would be 0/0 at the money.
	m := market.State{Spot: 100, Rate: 0, Volatility: 5e-324}
	for _, kind := range []Kind{Call, Put} {
		got, err := Price(m, Contract{Strike: 100, Years: 0.25, Kind: kind})
		require.NoError(t, err)
		assert.False(t, math.IsNaN(got), "kind=%s", kind)
		assert.Equal(t, 0.0, got, "kind=%s", kind)
	}

	got, err := Price(market.State{Spot: 110, Volatility: 5e-324}, Contract{Strike: 100, Years: 0.25, Kind: Call})
	require.NoError(t, err)
	assert.InDelta(t, 10, got, 1e-12)
}

func TestPriceInvalid(t *testing.T) {
	good := market.State{Spot: 100, Rate: 0.01, Volatility: 0.2}
	tests := []struct {
		name     string
		state    market.State
		contract Contract
	}{
		{"straddle", good, Contract{Strike: 100, Years: 1, Kind: Kind("straddle")}},
		{"empty kind", good, Contract{Strike: 100, Years: 1}},
		{"zero strike", good, Contract{Strike: 0, Years: 1, Kind: Call}},
		{"zero years", good, Contract{Strike: 100, Years: 0, Kind: Call}},
		{"negative years", good, Contract{Strike: 100, Years: -1, Kind: Put}},
		{"zero spot", market.State{Volatility: 0.2}, Contract{Strike: 100, Years: 1, Kind: Call}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Price(tt.state, tt.contract)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidArgument)
			assert.Equal(t, 0.0, p)
		})
	}
}

func TestPriceStraddleNamesKind(t *testing.T) {
	_, err := Price(market.State{Spot: 700, Rate: 0.015, Volatility: 0.02},
		Contract{Strike: 725, Years: 2, Kind: "straddle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "straddle")
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" CALL ")
	require.NoError(t, err)
	assert.Equal(t, Call, k)

	k, err = ParseKind("put")
	require.NoError(t, err)
	assert.Equal(t, Put, k)

	_, err = ParseKind("straddle")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestFormatPremium(t *testing.T) {
	assert.Equal(t, "6.26", FormatPremium(6.259976811508977))
	assert.Equal(t, "0.00", FormatPremium(0))
	assert.Equal(t, "10.45", FormatPremium(10.450583572185565))
}
