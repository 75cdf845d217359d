package gbm

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// stepper advances a row of prices by one time step. The normals for a
// row are always drawn in path order from rng, so the output for a seed
// does not depend on the worker count.
type stepper struct {
	plan
	rng *rand.Rand
	z   []float64
}

func newStepper(p plan, rng *rand.Rand) *stepper {
	return &stepper{plan: p, rng: rng, z: make([]float64, p.paths)}
}

func (s *stepper) step(ctx context.Context, prev, next []float64) error {
	for i := range s.z {
		s.z[i] = s.rng.NormFloat64()
	}

	if s.workers <= 1 || s.paths < minParallelPaths {
		s.apply(prev, next, 0, s.paths)
		return nil
	}

	chunk := (s.paths + s.workers - 1) / s.workers
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for lo := 0; lo < s.paths; lo += chunk {
		hi := min(lo+chunk, s.paths)
		g.Go(func() error {
			s.apply(prev, next, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

func (s *stepper) apply(prev, next []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		next[i] = prev[i] * math.Exp(s.drift+s.diffusion*s.z[i])
	}
}
