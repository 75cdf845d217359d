package gbm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Ensemble is a (steps+1) x paths grid of simulated prices stored row
// major. It is not modified after Simulate returns; accessors hand out
// copies.
type Ensemble struct {
	steps  int
	paths  int
	dt     float64
	prices []float64
}

func newEnsemble(p plan) *Ensemble {
	return &Ensemble{
		steps:  p.steps,
		paths:  p.paths,
		dt:     p.dt,
		prices: make([]float64, (p.steps+1)*p.paths),
	}
}

func (e *Ensemble) row(t int) []float64 {
	return e.prices[t*e.paths : (t+1)*e.paths]
}

// NumSteps is the number of simulated steps; the grid has NumSteps()+1 rows.
func (e *Ensemble) NumSteps() int { return e.steps }

// NumRows is NumSteps()+1.
func (e *Ensemble) NumRows() int { return e.steps + 1 }

// NumPaths is the number of columns.
func (e *Ensemble) NumPaths() int { return e.paths }

// Dt is the step length in years.
func (e *Ensemble) Dt() float64 { return e.dt }

// At returns the price of path j at step t.
func (e *Ensemble) At(t, j int) float64 {
	return e.prices[t*e.paths+j]
}

// Row returns a copy of the prices of every path at step t.
func (e *Ensemble) Row(t int) []float64 {
	return append([]float64(nil), e.row(t)...)
}

// Path returns a copy of one trajectory, step 0 first.
func (e *Ensemble) Path(j int) []float64 {
	out := make([]float64, e.NumRows())
	for t := range out {
		out[t] = e.At(t, j)
	}
	return out
}

// Rows returns the full grid as a fresh [][]float64, one slice per step.
func (e *Ensemble) Rows() [][]float64 {
	out := make([][]float64, e.NumRows())
	for t := range out {
		out[t] = e.Row(t)
	}
	return out
}

// Terminal returns the last row.
func (e *Ensemble) Terminal() []float64 {
	return e.Row(e.steps)
}

// Stats summarizes the terminal prices.
type Stats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Stats returns the mean, range and population standard deviation of
// the terminal prices.
func (e *Ensemble) Stats() Stats {
	last := e.row(e.steps)
	mean, variance := stat.PopMeanVariance(last, nil)
	return Stats{
		Mean:   mean,
		Min:    floats.Min(last),
		Max:    floats.Max(last),
		StdDev: math.Sqrt(variance),
	}
}
