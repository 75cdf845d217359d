package gbm

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
)

// Simulate generates cfg.NumPaths GBM paths from m.Spot over years.
//
// The result has floor(years*StepsPerYear)+1 rows; row 0 is the spot for
// every path. The context is checked between rows and a cancelled run
// returns no ensemble.
func Simulate(ctx context.Context, m market.State, years float64, cfg Config, rng *rand.Rand) (*Ensemble, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", errs.ErrInvalidArgument)
	}
	p, err := newPlan(m, years, cfg)
	if err != nil {
		return nil, err
	}

	e := newEnsemble(p)
	first := e.row(0)
	for i := range first {
		first[i] = p.spot
	}

	st := newStepper(p, rng)
	for t := 1; t <= p.steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := st.step(ctx, e.row(t-1), e.row(t)); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Stream validates the request and returns an iterator over rows.
//
// Each yielded row is a fresh slice owned by the caller, and only the
// previous row is kept, so memory does not grow with the horizon.
// Iteration stops early when ctx is done; check ctx.Err() afterwards.
// The iterator is single use because it consumes rng: ranging over it
// again yields nothing. Call Stream with a fresh source to repeat a run.
func Stream(ctx context.Context, m market.State, years float64, cfg Config, rng *rand.Rand) (iter.Seq2[int, []float64], error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", errs.ErrInvalidArgument)
	}
	p, err := newPlan(m, years, cfg)
	if err != nil {
		return nil, err
	}

	used := false
	return func(yield func(int, []float64) bool) {
		if used {
			return
		}
		used = true

		prev := make([]float64, p.paths)
		for i := range prev {
			prev[i] = p.spot
		}
		if !yield(0, append([]float64(nil), prev...)) {
			return
		}

		st := newStepper(p, rng)
		for t := 1; t <= p.steps; t++ {
			if ctx.Err() != nil {
				return
			}
			next := make([]float64, p.paths)
			if err := st.step(ctx, prev, next); err != nil {
				return
			}
			if !yield(t, append([]float64(nil), next...)) {
				return
			}
			prev = next
		}
	}, nil
}
