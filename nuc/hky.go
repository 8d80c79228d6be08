// Package nuc provides the nucleotide model of a single hidden class.
package nuc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/thmm/bio"
)

// NState is the number of nucleotides.
const NState = len(bio.Alphabet)

// HKY is the Hasegawa, Kishino & Yano model scaled by a class rate.
// Like codon.GY94 it returns exchangeabilities and keeps them until
// OnRatesChanged is called.
type HKY struct {
	kappa, rate float64
	q           *mat.Dense
	qdone       bool
}

// NewHKY creates a new HKY model with rate 1.
func NewHKY(kappa float64) *HKY {
	return &HKY{
		kappa: kappa,
		rate:  1,
		q:     mat.NewDense(NState, NState, nil),
	}
}

// StateCount returns the number of nucleotides.
func (m *HKY) StateCount() int {
	return NState
}

// SetKappa sets the transition/transversion ratio.
func (m *HKY) SetKappa(kappa float64) {
	m.kappa = kappa
}

// SetRate sets the class rate multiplier.
func (m *HKY) SetRate(rate float64) {
	m.rate = rate
}

// OnRatesChanged drops the cached matrix.
func (m *HKY) OnRatesChanged() {
	m.qdone = false
}

// OnFrequenciesChanged does nothing, HKY exchangeabilities don't
// depend on the frequencies.
func (m *HKY) OnFrequenciesChanged() {}

// UnnormalizedOffDiagonal returns the exchangeability matrix.
func (m *HKY) UnnormalizedOffDiagonal() mat.Matrix {
	if !m.qdone {
		for i := 0; i < NState; i++ {
			for j := 0; j < NState; j++ {
				r := 0.0
				if i != j {
					r = m.rate
					if bio.IsTransition(bio.Alphabet[i], bio.Alphabet[j]) {
						r *= m.kappa
					}
				}
				m.q.Set(i, j, r)
			}
		}
		m.qdone = true
	}
	return m.q
}

// ParseFrequency parses comma separated nucleotide frequencies in the
// TCAG order and normalizes them.
func ParseFrequency(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != NState {
		return nil, fmt.Errorf("expected %d nucleotide frequencies, got %d", NState, len(fields))
	}
	freq := make([]float64, NState)
	sum := 0.0
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, errors.New("negative nucleotide frequency")
		}
		freq[i] = v
		sum += v
	}
	if sum <= 0 {
		return nil, errors.New("all nucleotide frequencies are zero")
	}
	for i := range freq {
		freq[i] /= sum
	}
	return freq, nil
}
