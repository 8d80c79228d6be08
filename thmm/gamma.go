package main

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/thmm/dist"
)

// writeGamma prints the class rates of the discrete gamma
// distribution with mean one, and plots them against the cumulative
// probability if fn is not empty.
func writeGamma(w io.Writer, alpha float64, k int, useMedian bool, fn string) error {
	if alpha <= 0 || k < 1 {
		return fmt.Errorf("alpha should be positive and at least one class is required, got alpha=%v, k=%d", alpha, k)
	}
	r := dist.DiscreteGamma(alpha, alpha, k, useMedian, nil, nil)
	s := make([]string, k)
	for i, v := range r {
		s[i] = formatFloat(v)
	}
	if _, err := fmt.Fprintln(w, strings.Join(s, "\t")); err != nil {
		return err
	}
	if fn == "" {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Discrete gamma, alpha=%g", alpha)
	p.X.Label.Text = "rate"
	p.Y.Label.Text = "cumulative probability"

	pts := make(plotter.XYs, k)
	x := 0.0
	for i, v := range r {
		pts[i].X = v
		pts[i].Y = x
		x += 1. / float64(k)
	}

	if err := plotutil.AddLinePoints(p, "rates", pts); err != nil {
		return err
	}

	if err := p.Save(4*vg.Inch, 4*vg.Inch, fn); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	log.Noticef("Saved gamma plot to %s", fn)
	return nil
}
