package main

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/thmm/cmodel"
)

// matrixGrid is a plotter.GridXYZ for a square matrix. The diagonal
// is plotted as zero, the first row is on the top.
type matrixGrid struct {
	a mat.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.a.Dims()
	return c, r
}

func (g matrixGrid) Z(c, r int) float64 {
	if c == r {
		return 0
	}
	return g.a.At(r, c)
}

func (g matrixGrid) X(c int) float64 {
	return float64(c)
}

func (g matrixGrid) Y(r int) float64 {
	n, _ := g.a.Dims()
	return float64(n - 1 - r)
}

// plotMatrix draws a heat map of the generator, or of the transition
// probabilities if t > 0.
func plotMatrix(fn string, m *cmodel.THMM, t, size float64) error {
	var (
		a     mat.Matrix
		title string
		err   error
	)
	if t > 0 {
		a, err = m.Exp(nil, t)
		title = fmt.Sprintf("P(%g), %s, %d classes", t, m.Name(), m.Space().Classes())
	} else {
		a, _, err = m.Q()
		title = fmt.Sprintf("Q, %s, %d classes", m.Name(), m.Space().Classes())
	}
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "to"
	p.Y.Label.Text = "from"
	p.HideAxes()

	h := plotter.NewHeatMap(matrixGrid{a}, palette.Heat(12, 1))
	p.Add(h)

	l := vg.Length(size) * vg.Centimeter
	if err := p.Save(l, l, fn); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	log.Noticef("Saved heat map to %s", fn)
	return nil
}
