// Package cmodel implements the temporal hidden Markov model (THMM):
// a Markov-modulated substitution model where every hidden class is a
// rate-scaled copy of a codon or a nucleotide model.
package cmodel

import (
	"errors"
	"fmt"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/thmm/bio"
	"bitbucket.org/Davydov/thmm/codon"
	"bitbucket.org/Davydov/thmm/ctmc"
	"bitbucket.org/Davydov/thmm/dist"
	"bitbucket.org/Davydov/thmm/mmodel"
	"bitbucket.org/Davydov/thmm/nuc"
	"bitbucket.org/Davydov/thmm/param"
)

// log is a global logging variable.
var log = logging.MustGetLogger("cmodel")

// ErrParameterRange is returned when a parameter is out of bounds.
var ErrParameterRange = errors.New("parameter out of range")

// classModel is a model of a hidden class which can be scaled.
type classModel interface {
	mmodel.SubstitutionModel
	SetRate(float64)
	SetKappa(float64)
}

// THMM is a temporal hidden Markov model. Hidden classes have
// discrete gamma rates with equal proportions, all the classes share
// kappa (and omega for codons). A THMM is not safe for concurrent
// use; use Copy to get an independent model.
type THMM struct {
	name   string
	nclass int
	// cf is set for the codon model
	cf *codon.Frequency

	// base state frequencies and the hidden frequencies
	base []float64
	freq mmodel.Frequencies

	models []classModel

	kappa, omega, alpha float64
	switching           []float64
	gammas              []float64
	gtmp                []float64
	normalize           bool

	asm *mmodel.Assembler
	gen *ctmc.Generator
	em  *ctmc.EMatrix

	parameters param.FloatParameters

	qdone     bool
	gammadone bool
}

// NewCodonTHMM creates a THMM with nclass GY94 classes. The codon
// frequencies are copied.
func NewCodonTHMM(cf codon.Frequency, nclass int, normalize bool) (*THMM, error) {
	if cf.GCode == nil {
		return nil, errors.New("no genetic code")
	}
	cf = codon.Frequency{
		Freq:  append([]float64(nil), cf.Freq...),
		GCode: cf.GCode,
	}
	models := make([]classModel, nclass)
	for h := range models {
		models[h] = codon.NewGY94(cf, 1, 1)
	}
	return newTHMM("gy94", cf.Freq, models, &cf, normalize)
}

// NewNucleotideTHMM creates a THMM with nclass HKY classes. The
// frequencies are copied.
func NewNucleotideTHMM(freq []float64, nclass int, normalize bool) (*THMM, error) {
	models := make([]classModel, nclass)
	for h := range models {
		models[h] = nuc.NewHKY(1)
	}
	return newTHMM("hky", append([]float64(nil), freq...), models, nil, normalize)
}

func newTHMM(name string, base []float64, models []classModel, cf *codon.Frequency, normalize bool) (*THMM, error) {
	nclass := len(models)
	if nclass < 1 {
		return nil, fmt.Errorf("%s: number of classes should be positive, got %d", name, nclass)
	}
	space, err := mmodel.NewSpace(nclass, models[0].StateCount())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(base) != space.StatesPerClass() {
		return nil, fmt.Errorf("%s: %d frequencies for %d states", name, len(base), space.StatesPerClass())
	}

	m := &THMM{
		name:      name,
		nclass:    nclass,
		cf:        cf,
		base:      base,
		freq:      mmodel.HiddenFrequencies(base, nil, nclass),
		models:    models,
		kappa:     1,
		omega:     1,
		alpha:     1,
		switching: make([]float64, space.SwitchingCount()),
		gammas:    make([]float64, nclass),
		gtmp:      make([]float64, nclass),
		normalize: normalize,
		gen:       ctmc.NewGenerator(space.StateCount()),
	}
	for i := range m.switching {
		m.switching[i] = 0.1
	}

	subs := make([]mmodel.SubstitutionModel, nclass)
	for h, cm := range models {
		subs[h] = cm
	}
	m.asm, err = mmodel.NewAssembler(space, subs, m.switching, m.freq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m.em = ctmc.NewEMatrix(m.freq)

	m.setupParameters()
	log.Infof("%s model with %d classes (%d states)", name, nclass, space.StateCount())
	return m, nil
}

// setupParameters creates all the model parameters.
func (m *THMM) setupParameters() {
	m.parameters = nil
	fpg := param.BasicFloatParameterGenerator

	kappa := fpg(&m.kappa, "kappa")
	kappa.SetOnChange(func() {
		m.qdone = false
	})
	kappa.SetPriorFunc(param.UniformPrior(0, 20, false, true))
	kappa.SetMin(1e-2)
	kappa.SetMax(100)
	m.parameters.Append(kappa)

	if m.cf != nil {
		omega := fpg(&m.omega, "omega")
		omega.SetOnChange(func() {
			m.qdone = false
		})
		omega.SetPriorFunc(param.GammaPrior(1, 2, false))
		omega.SetMin(1e-4)
		omega.SetMax(1000)
		m.parameters.Append(omega)
	}

	if m.nclass > 1 {
		alpha := fpg(&m.alpha, "alpha")
		alpha.SetOnChange(func() {
			m.gammadone = false
			m.qdone = false
		})
		alpha.SetPriorFunc(param.GammaPrior(1, 2, false))
		alpha.SetMin(1e-2)
		alpha.SetMax(1000)
		m.parameters.Append(alpha)
	}

	k := 0
	for g := 0; g < m.nclass; g++ {
		for h := g + 1; h < m.nclass; h++ {
			sw := fpg(&m.switching[k], SwitchingName(g, h))
			sw.SetOnChange(func() {
				m.qdone = false
			})
			sw.SetPriorFunc(param.ExponentialPrior(1, true))
			sw.SetMin(0)
			sw.SetMax(1000)
			m.parameters.Append(sw)
			k++
		}
	}
}

// SwitchingName returns the name of the parameter for switching from
// class g to class h.
func SwitchingName(g, h int) string {
	return fmt.Sprintf("sw_%d_%d", g, h)
}

// Name returns the model name.
func (m *THMM) Name() string {
	return m.name
}

// Space returns the hidden state space.
func (m *THMM) Space() mmodel.Space {
	return m.asm.Space()
}

// Parameters returns the model parameters. Changing a parameter value
// marks the matrices for recomputation.
func (m *THMM) Parameters() param.FloatParameters {
	return m.parameters
}

// Frequencies returns the frequencies of the hidden states.
func (m *THMM) Frequencies() []float64 {
	return m.freq
}

// SetFrequencies changes the base state frequencies. Hidden state
// frequencies are updated in place and the class models are
// notified.
func (m *THMM) SetFrequencies(base []float64) error {
	if len(base) != len(m.base) {
		return fmt.Errorf("%d frequencies for %d states", len(base), len(m.base))
	}
	copy(m.base, base)
	n := len(m.base)
	for h := 0; h < m.nclass; h++ {
		for i, f := range m.base {
			m.freq[h*n+i] = f / float64(m.nclass)
		}
	}
	m.asm.OnFrequenciesChanged()
	m.qdone = false
	return nil
}

// ClassRates returns the rate multipliers of the hidden classes.
func (m *THMM) ClassRates() []float64 {
	m.updateGamma()
	return append([]float64(nil), m.gammas...)
}

// updateGamma recomputes the class rates.
func (m *THMM) updateGamma() {
	if m.gammadone {
		return
	}
	if m.nclass > 1 {
		dist.DiscreteGamma(m.alpha, m.alpha, m.nclass, false, m.gtmp, m.gammas)
	} else {
		m.gammas[0] = 1
	}
	m.gammadone = true
}

// update pushes the parameter values to the class models and
// rebuilds the generator.
func (m *THMM) update() error {
	if m.qdone {
		return nil
	}
	if !m.parameters.InRange() {
		return fmt.Errorf("%w: %v", ErrParameterRange, m.parameters.Values(nil))
	}
	m.updateGamma()
	for h, cm := range m.models {
		cm.SetRate(m.gammas[h])
		cm.SetKappa(m.kappa)
		if gy, ok := cm.(*codon.GY94); ok {
			gy.SetOmega(m.omega)
		}
	}
	m.asm.OnRatesChanged()
	if log.IsEnabledFor(logging.DEBUG) {
		for h, cm := range m.models {
			if gy, ok := cm.(*codon.GY94); ok {
				kappa, omega, rate := gy.GetParameters()
				log.Debugf("class %d: kappa=%v, omega=%v, rate=%v, scale=%v", h, kappa, omega, rate, gy.Scale())
			}
		}
	}

	rates, err := m.asm.Rates()
	if err != nil {
		return fmt.Errorf("assembling rates: %w", err)
	}
	q, scale, err := m.gen.Build(rates, m.freq, m.normalize)
	if err != nil {
		return fmt.Errorf("building generator: %w", err)
	}
	m.em.Set(q, scale)
	m.qdone = true
	log.Debugf("x=%v, scale=%v", m.parameters.Values(nil), scale)
	return nil
}

// Rates returns the packed relative rates.
func (m *THMM) Rates() (mmodel.RateVector, error) {
	if err := m.update(); err != nil {
		return mmodel.RateVector{}, err
	}
	return m.asm.Rates()
}

// Q returns the generator matrix and its scale (expected rate before
// normalization). The matrix is overwritten after parameter changes.
func (m *THMM) Q() (*mat.Dense, float64, error) {
	if err := m.update(); err != nil {
		return nil, 0, err
	}
	return m.em.Q, m.em.Scale, nil
}

// Exp computes e^Qt and writes it to dst, which is allocated if nil.
func (m *THMM) Exp(dst *mat.Dense, t float64) (*mat.Dense, error) {
	if err := m.update(); err != nil {
		return nil, err
	}
	return m.em.Exp(dst, t)
}

// Copy makes an independent copy of the model preserving the
// parameter values.
func (m *THMM) Copy() *THMM {
	var (
		c   *THMM
		err error
	)
	if m.cf != nil {
		c, err = NewCodonTHMM(*m.cf, m.nclass, m.normalize)
	} else {
		c, err = NewNucleotideTHMM(m.base, m.nclass, m.normalize)
	}
	if err != nil {
		// m was created by the same constructor
		panic(err)
	}
	if err := c.parameters.SetValues(m.parameters.Values(nil)); err != nil {
		panic(err)
	}
	return c
}

// ClassScales returns the expected rate of every codon class on its
// own, or nil for the nucleotide model.
func (m *THMM) ClassScales() ([]float64, error) {
	if m.cf == nil {
		return nil, nil
	}
	if err := m.update(); err != nil {
		return nil, err
	}
	scales := make([]float64, m.nclass)
	for h, cm := range m.models {
		scales[h] = cm.(*codon.GY94).Scale()
	}
	return scales, nil
}

// StateNames returns labels of the hidden states, "h:codon" or
// "h:nucleotide".
func (m *THMM) StateNames() []string {
	space := m.Space()
	names := make([]string, space.StateCount())
	for k := range names {
		h, i := space.Split(k)
		var base string
		if m.cf != nil {
			base = m.cf.GCode.NumCodon[i]
		} else {
			base = string(bio.Alphabet[i])
		}
		names[k] = fmt.Sprintf("%d:%s", h, base)
	}
	return names
}
