// Package chart draws simulated price paths with a horizontal line at
// the strike.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/gbm"
)

var (
	pathColor   = color.Gray{Y: 150}
	strikeColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// Options controls the figure. Zero values pick the defaults.
type Options struct {
	Title    string
	Width    vg.Length
	Height   vg.Length
	MaxPaths int // 0 draws every path
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Simulated price paths"
	}
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 5 * vg.Inch
	}
	return o
}

// Render builds a plot with one gray line per path, x being the step
// index, and a line across at strike.
func Render(e *gbm.Ensemble, strike float64, opts Options) (*plot.Plot, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no ensemble to plot", errs.ErrInvalidArgument)
	}
	if strike <= 0 || math.IsNaN(strike) || math.IsInf(strike, 0) {
		return nil, fmt.Errorf("%w: strike must be positive, got %v", errs.ErrInvalidArgument, strike)
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Price"

	paths := e.NumPaths()
	if opts.MaxPaths > 0 && opts.MaxPaths < paths {
		paths = opts.MaxPaths
	}
	for j := 0; j < paths; j++ {
		l, err := plotter.NewLine(pathXYs(e, j))
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", j, err)
		}
		l.LineStyle.Color = pathColor
		l.LineStyle.Width = vg.Points(0.6)
		p.Add(l)
	}

	k := plotter.NewFunction(func(float64) float64 { return strike })
	k.Color = strikeColor
	k.Width = vg.Points(1.5)
	p.Add(k)
	p.Legend.Add(fmt.Sprintf("strike %.2f", strike), k)

	// Functions do not report a data range, so make room for the strike.
	p.Y.Min = math.Min(p.Y.Min, strike)
	p.Y.Max = math.Max(p.Y.Max, strike)
	return p, nil
}

func pathXYs(e *gbm.Ensemble, j int) plotter.XYs {
	pts := make(plotter.XYs, e.NumRows())
	for t := range pts {
		pts[t].X = float64(t)
		pts[t].Y = e.At(t, j)
	}
	return pts
}

// Write encodes the plot in format ("png", "svg", "pdf", ...).
func Write(w io.Writer, p *plot.Plot, format string, opts Options) error {
	opts = opts.withDefaults()
	wt, err := p.WriterTo(opts.Width, opts.Height, strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the plot to path, picking the format from the extension.
func Save(path string, p *plot.Plot, opts Options) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("%w: chart path %q has no extension", errs.ErrInvalidArgument, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := Write(f, p, format, opts); err != nil {
		f.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}
