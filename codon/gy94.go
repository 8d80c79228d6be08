// Package codon provides codon frequencies and the codon model of a
// single hidden class.
package codon

import (
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/thmm/bio"
)

// GY94 is the Goldman & Yang codon model scaled by a class rate. It
// provides exchangeabilities, i.e. rates before multiplication by the
// frequencies.
//
// Setters only store the values, the cached matrix is dropped by
// OnRatesChanged.
type GY94 struct {
	cf                 Frequency
	kappa, omega, rate float64

	q     *mat.Dense
	qdone bool

	scale     float64
	scaledone bool
}

// NewGY94 creates a new GY94 model with rate 1.
func NewGY94(cf Frequency, kappa, omega float64) *GY94 {
	n := cf.GCode.NCodon
	return &GY94{
		cf:    cf,
		kappa: kappa,
		omega: omega,
		rate:  1,
		q:     mat.NewDense(n, n, nil),
	}
}

// StateCount returns the number of sense codons.
func (m *GY94) StateCount() int {
	return m.cf.GCode.NCodon
}

// SetKappa sets the transition/transversion ratio.
func (m *GY94) SetKappa(kappa float64) {
	m.kappa = kappa
}

// SetOmega sets the nonsynonymous/synonymous ratio.
func (m *GY94) SetOmega(omega float64) {
	m.omega = omega
}

// SetRate sets the class rate multiplier.
func (m *GY94) SetRate(rate float64) {
	m.rate = rate
}

// GetParameters returns the model parameter values.
func (m *GY94) GetParameters() (kappa, omega, rate float64) {
	return m.kappa, m.omega, m.rate
}

// OnRatesChanged drops the cached matrix.
func (m *GY94) OnRatesChanged() {
	m.qdone = false
	m.scaledone = false
}

// OnFrequenciesChanged drops the cached scale.
func (m *GY94) OnFrequenciesChanged() {
	m.scaledone = false
}

// UnnormalizedOffDiagonal returns the symmetric exchangeability
// matrix. Codons differing in more than one position have zero rate.
func (m *GY94) UnnormalizedOffDiagonal() mat.Matrix {
	if !m.qdone {
		m.update()
	}
	return m.q
}

// Scale returns the expected number of substitutions per unit of time
// of the class on its own, sum_i sum_j!=i freq[i]*s[i][j]*freq[j].
func (m *GY94) Scale() float64 {
	if !m.scaledone {
		q := m.UnnormalizedOffDiagonal()
		m.scale = expectedRate(q, m.cf.Freq)
		m.scaledone = true
	}
	return m.scale
}

// update fills the exchangeability matrix.
func (m *GY94) update() {
	gcode := m.cf.GCode
	for i1 := 0; i1 < gcode.NCodon; i1++ {
		m.q.Set(i1, i1, 0)
		for i2 := i1 + 1; i2 < gcode.NCodon; i2++ {
			c1 := gcode.NumCodon[i1]
			c2 := gcode.NumCodon[i2]
			dist, transitions := codonDistance(c1, c2)

			r := 0.0
			if dist == 1 {
				r = m.rate
				if transitions == 1 {
					r *= m.kappa
				}
				if !gcode.IsSynonymous(c1, c2) {
					r *= m.omega
				}
			}
			m.q.Set(i1, i2, r)
			m.q.Set(i2, i1, r)
		}
	}
	m.qdone = true
}

// codonDistance computes distance and number of transitions.
func codonDistance(c1, c2 string) (dist, transitions int) {
	for i := 0; i < len(c1); i++ {
		s1 := c1[i]
		s2 := c2[i]
		if s1 != s2 {
			dist++
			if bio.IsTransition(s1, s2) {
				transitions++
			}
		}
	}
	return
}

// expectedRate computes sum_i sum_j!=i freq[i]*q[i][j]*freq[j].
func expectedRate(q mat.Matrix, freq []float64) (scale float64) {
	for i := range freq {
		for j := range freq {
			if i != j {
				scale += freq[i] * q.At(i, j) * freq[j]
			}
		}
	}
	return
}
