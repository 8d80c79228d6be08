package cmodel

import (
	"bitbucket.org/Davydov/thmm/param"
)

// Summary describes the model state.
type Summary struct {
	Model      string                `json:"model"`
	Classes    int                   `json:"classes"`
	States     int                   `json:"states"`
	Parameters param.FloatParameters `json:"parameters"`
	ClassRates []float64             `json:"classRates"`
	// ClassScales is only set for the codon model.
	ClassScales []float64 `json:"classScales,omitempty"`
	Scale       float64   `json:"scale"`
	Normalized  bool      `json:"normalized"`
	Prior       float64   `json:"logPrior"`
}

// Summary returns the current model summary.
func (m *THMM) Summary() (*Summary, error) {
	_, scale, err := m.Q()
	if err != nil {
		return nil, err
	}
	scales, err := m.ClassScales()
	if err != nil {
		return nil, err
	}
	return &Summary{
		Model:       m.name,
		Classes:     m.nclass,
		States:      m.Space().StateCount(),
		Parameters:  m.parameters,
		ClassRates:  m.ClassRates(),
		ClassScales: scales,
		Scale:       scale,
		Normalized:  m.normalize,
		Prior:       m.parameters.Prior(),
	}, nil
}
