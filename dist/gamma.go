// Package dist implements the discrete gamma distribution used for
// rates of the hidden classes.
package dist

/*
The chi-square quantile follows PAML (AS91, Best & Roberts 1975),
with the special functions taken from mathext.
*/

import (
	"math"

	"github.com/gonum/mathext"
)

// ln2 is log(2) as used by AS91.
const ln2 = .6931471805

// QuantileChi2 returns z so that Prob{x<z}=prob where x is Chi2
// distributed with df=v. Returns -1 if v <= 0; prob is clipped to
// [1e-6, 1-1e-6].
func QuantileChi2(prob, v float64) float64 {
	const (
		e     = .5e-6
		small = 1e-6
	)
	p := prob

	if p < small {
		return 0
	}
	if p > 1-small {
		return 9999
	}
	if v <= 0 {
		return -1
	}

	g, _ := math.Lgamma(v / 2)
	xx := v / 2
	c := xx - 1

	var ch float64
	switch {
	case v < -1.24*math.Log(p):
		// small number of degrees of freedom
		ch = math.Pow(p*xx*math.Exp(g+xx*ln2), 1/xx)
		if ch-e < 0 {
			return ch
		}
	case v <= .32:
		ch = 0.4
		a := math.Log(1 - p)
		for {
			q := ch
			p1 := 1 + ch*(4.67+ch)
			p2 := ch * (6.73 + ch*(6.66+ch))
			t := -0.5 + (4.67+2*ch)/p1 - (6.73+ch*(13.32+3*ch))/p2
			ch -= (1 - math.Exp(a+g+.5*ch+c*ln2)*p2/p1) / t
			if math.Abs(q/ch-1) <= .01 {
				break
			}
		}
	default:
		x := QuantileNormal(p)
		p1 := 0.222222 / v
		ch = v * math.Pow(x*math.Sqrt(p1)+1-p1, 3)
		if ch > 2.2*v+6 {
			ch = -2 * (math.Log(1-p) - c*math.Log(.5*ch) + g)
		}
	}

	// seven term Taylor series refinement
	for {
		q := ch
		p1 := .5 * ch
		t := IncompleteGamma(p1, xx)
		if t < 0 {
			panic("IncompleteGamma<0")
		}
		p2 := p - t
		t = p2 * math.Exp(xx*ln2+g+p1-c*math.Log(ch))
		b := t / ch
		a := 0.5*t - b*c

		s1 := (210 + a*(140+a*(105+a*(84+a*(70+60*a))))) / 420
		s2 := (420 + a*(735+a*(966+a*(1141+1278*a)))) / 2520
		s3 := (210 + a*(462+a*(707+932*a))) / 2520
		s4 := (252 + a*(672+1182*a) + c*(294+a*(889+1740*a))) / 5040
		s5 := (84 + 264*a + c*(175+606*a)) / 2520
		s6 := (120 + c*(346+127*c)) / 5040
		ch += t * (1 + 0.5*t*s1 - b*c*(s1-b*(s2-b*(s3-b*(s4-b*(s5-b*s6))))))
		if math.Abs(q/ch-1) <= e {
			return ch
		}
	}
}

// QuantileGamma returns quantile for gamma distribution.
func QuantileGamma(prob, alpha, beta float64) float64 {
	return QuantileChi2(prob, 2*alpha) / (2 * beta)
}

// QuantileNormal returns quantile for normal distribution.
func QuantileNormal(prob float64) float64 {
	return mathext.NormalQuantile(prob)
}

// IncompleteGamma returns the incomplete gamma ratio I(x,alpha) where
// x is the upper limit of the integration and alpha is the shape
// parameter.
func IncompleteGamma(x, alpha float64) float64 {
	return mathext.GammaInc(alpha, x)
}

// DiscreteGamma returns K categories of G(alpha, beta) with equal
// proportions. Every category is represented by its mean, or by its
// median if useMedian is set (medians are rescaled to keep the mean
// alpha/beta). tmp and res are used as storage if not nil.
func DiscreteGamma(alpha, beta float64, K int, useMedian bool, tmp, res []float64) []float64 {
	mean := alpha / beta

	if res == nil {
		res = make([]float64, K)
	}
	if K == 1 {
		res[0] = mean
		return res
	}
	if tmp == nil {
		tmp = make([]float64, K)
	}

	if useMedian {
		t := 0.0
		for i := 0; i < K; i++ {
			res[i] = QuantileGamma((float64(i)*2+1)/(2*float64(K)), alpha, beta)
			t += res[i]
		}
		for i := 0; i < K; i++ {
			res[i] *= mean * float64(K) / t
		}
		return res
	}

	// cutting points, then the incomplete gamma ratio of alpha+1
	// gives the mean within each interval
	for i := 0; i < K-1; i++ {
		cut := QuantileGamma((float64(i)+1)/float64(K), alpha, beta)
		tmp[i] = IncompleteGamma(cut*beta, alpha+1)
	}
	res[0] = tmp[0] * mean * float64(K)
	for i := 1; i < K-1; i++ {
		res[i] = (tmp[i] - tmp[i-1]) * mean * float64(K)
	}
	res[K-1] = (1 - tmp[K-2]) * mean * float64(K)

	return res
}
