// Package param provides model parameters: float values with bounds,
// priors and change notifications.
package param

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

const (
	// Bounds used by Randomize for unbounded parameters.
	MIN = -10
	MAX = +10
)

// FloatParameter is a model parameter.
type FloatParameter interface {
	Name() string
	Get() float64
	// Set changes the value and calls the on-change function if
	// the value is different.
	Set(float64)
	SetMin(float64)
	SetMax(float64)
	GetMin() float64
	GetMax() float64
	SetOnChange(func())
	SetPriorFunc(func(float64) float64)
	// Prior returns log prior of the current value.
	Prior() float64
	InRange() bool
	ValueInRange(float64) bool
	String() string
}

// FloatParameterGenerator creates a parameter wrapping a value.
type FloatParameterGenerator func(*float64, string) FloatParameter

// FloatParameters is an ordered set of parameters.
type FloatParameters []FloatParameter

// Append adds a parameter.
func (p *FloatParameters) Append(par FloatParameter) {
	*p = append(*p, par)
}

// Names returns parameter names. is is used as storage if not nil.
func (p *FloatParameters) Names(is []string) (s []string) {
	if is == nil {
		s = make([]string, len(*p))
	} else {
		s = is
	}
	for i, par := range *p {
		s[i] = par.Name()
	}
	return
}

// Values returns parameter values. iv is used as storage if not nil.
func (p *FloatParameters) Values(iv []float64) (v []float64) {
	if iv == nil {
		v = make([]float64, len(*p))
	} else {
		v = iv
	}
	for i, par := range *p {
		v[i] = par.Get()
	}
	return
}

// ByName returns a parameter by its name or nil.
func (p *FloatParameters) ByName(name string) FloatParameter {
	for _, par := range *p {
		if par.Name() == name {
			return par
		}
	}
	return nil
}

// ValuesInRange tests if all the values are within the parameter
// bounds.
func (p *FloatParameters) ValuesInRange(vals []float64) bool {
	if len(vals) != len(*p) {
		panic("Incorrect number of parameters")
	}
	for i, par := range *p {
		if !par.ValueInRange(vals[i]) {
			return false
		}
	}
	return true
}

// SetValues sets all the parameter values.
func (p *FloatParameters) SetValues(v []float64) error {
	if len(v) != len(*p) {
		return fmt.Errorf("incorrect number of parameters: %d, expected %d", len(v), len(*p))
	}
	for i, par := range *p {
		par.Set(v[i])
	}
	return nil
}

// Map returns parameter values by name.
func (p *FloatParameters) Map() map[string]float64 {
	m := make(map[string]float64, len(*p))
	for _, par := range *p {
		m[par.Name()] = par.Get()
	}
	return m
}

// SetMap sets parameter values by name. Every name should be known,
// parameters missing from m are not changed.
func (p *FloatParameters) SetMap(m map[string]float64) error {
	for name := range m {
		if p.ByName(name) == nil {
			return fmt.Errorf("unknown parameter: %s", name)
		}
	}
	for _, par := range *p {
		if v, ok := m[par.Name()]; ok {
			par.Set(v)
		}
	}
	return nil
}

// ReadLine sets values from a whitespace separated line of floats.
func (p *FloatParameters) ReadLine(l string) error {
	v, err := ReadFloats(l)
	if err != nil {
		return err
	}
	return p.SetValues(v)
}

// Randomize sets every parameter to a uniform random value within
// its bounds (cut to [MIN, MAX]).
func (p *FloatParameters) Randomize() {
	for _, par := range *p {
		min := math.Max(MIN, par.GetMin())
		max := math.Min(MAX, par.GetMax())
		d := max - min
		par.Set(min + rand.Float64()*d)
	}
}

// InRange tests that all the parameters are within their bounds.
func (p *FloatParameters) InRange() bool {
	for _, par := range *p {
		if !par.InRange() {
			return false
		}
	}
	return true
}

// Prior returns the sum of log priors.
func (p *FloatParameters) Prior() (s float64) {
	for _, par := range *p {
		s += par.Prior()
	}
	return
}

// NamesString returns tab separated names.
func (p *FloatParameters) NamesString() (s string) {
	for i, par := range *p {
		if i != 0 {
			s += "\t"
		}
		s += par.Name()
	}
	return
}

// ValuesString returns tab separated values.
func (p *FloatParameters) ValuesString() (s string) {
	for i, par := range *p {
		if i != 0 {
			s += "\t"
		}
		s += par.String()
	}
	return
}

// BasicFloatParameter is a FloatParameter wrapping a float64
// variable.
type BasicFloatParameter struct {
	*float64
	name      string
	priorFunc func(float64) float64
	min       float64
	max       float64
	onChange  func()
}

// NewBasicFloatParameter creates a new parameter. By default it is
// unbounded with a flat prior.
func NewBasicFloatParameter(par *float64, name string) *BasicFloatParameter {
	return &BasicFloatParameter{
		float64:   par,
		name:      name,
		priorFunc: func(float64) float64 { return 0 },
		min:       math.Inf(-1),
		max:       math.Inf(+1),
	}
}

// BasicFloatParameterGenerator is a FloatParameterGenerator for
// BasicFloatParameter.
func BasicFloatParameterGenerator(par *float64, name string) FloatParameter {
	return NewBasicFloatParameter(par, name)
}

func (p *BasicFloatParameter) SetMin(min float64) {
	p.min = min
}

func (p *BasicFloatParameter) SetMax(max float64) {
	p.max = max
}

func (p *BasicFloatParameter) SetPriorFunc(f func(float64) float64) {
	p.priorFunc = f
}

func (p *BasicFloatParameter) SetOnChange(f func()) {
	p.onChange = f
}

func (p *BasicFloatParameter) Get() float64 {
	return *p.float64
}

func (p *BasicFloatParameter) Set(v float64) {
	if *p.float64 == v {
		// do nothing if value has not changed
		return
	}
	*p.float64 = v
	if p.onChange != nil {
		p.onChange()
	}
}

func (p *BasicFloatParameter) GetMin() float64 {
	return p.min
}

func (p *BasicFloatParameter) GetMax() float64 {
	return p.max
}

func (p *BasicFloatParameter) ValueInRange(v float64) bool {
	return v >= p.min && v <= p.max
}

func (p *BasicFloatParameter) InRange() bool {
	return p.ValueInRange(*p.float64)
}

func (p *BasicFloatParameter) Name() string {
	return p.name
}

func (p *BasicFloatParameter) Prior() float64 {
	return p.priorFunc(*p.float64)
}

func (p *BasicFloatParameter) String() string {
	return strconv.FormatFloat(*p.float64, 'f', 6, 64)
}

// ErrNoParameters is returned when reading values into an empty
// parameter set.
var ErrNoParameters = errors.New("no parameters")
