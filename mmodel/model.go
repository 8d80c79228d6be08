package mmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SubstitutionModel is a model of a single hidden class.
type SubstitutionModel interface {
	// StateCount returns the number of base states M.
	StateCount() int
	// UnnormalizedOffDiagonal returns an M×M matrix of rates between
	// base states before frequency weighting. Only the upper
	// triangle (i<j) is read.
	UnnormalizedOffDiagonal() mat.Matrix
	// OnFrequenciesChanged is called when the frequencies the model
	// depends on have changed.
	OnFrequenciesChanged()
	// OnRatesChanged is called when the rates the model depends on
	// have changed.
	OnRatesChanged()
}

// FrequencyModel supplies stationary frequencies of all the states.
type FrequencyModel interface {
	Frequencies() []float64
}

// Frequencies is a frequency vector over the whole hidden space.
type Frequencies []float64

// Frequencies implements FrequencyModel.
func (f Frequencies) Frequencies() []float64 {
	return f
}

// HiddenFrequencies builds the frequencies of a hidden space from
// base state frequencies and class proportions:
// freq[(h,i)] = props[h]*base[i]. If props is nil, equal proportions
// are used.
func HiddenFrequencies(base []float64, props []float64, nclass int) Frequencies {
	f := make(Frequencies, len(base)*nclass)
	for h := 0; h < nclass; h++ {
		p := 1 / float64(nclass)
		if props != nil {
			p = props[h]
		}
		for i, b := range base {
			f[h*len(base)+i] = p * b
		}
	}
	return f
}

// checkFrequencies tests that the frequencies form a distribution and
// every state frequency is above MinFrequency.
func checkFrequencies(freq []float64) error {
	sum := 0.0
	for i, f := range freq {
		if math.IsNaN(f) || f <= MinFrequency {
			return &DomainError{Index: i, Value: f, Msg: "frequency is too small"}
		}
		sum += f
	}
	if math.Abs(sum-1) > MinFrequencyDiff {
		return &DomainError{Index: -1, Value: sum, Msg: "frequencies don't sum to 1"}
	}
	return nil
}
