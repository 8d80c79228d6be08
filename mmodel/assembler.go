/*
Package mmodel assembles rate matrices of Markov-modulated
substitution models.

A Markov-modulated model has H hidden classes, every class evolves
under its own substitution model of M base states, and the process
switches between the classes. The off-diagonal rates of the H*M state
generator are stored in a packed vector with one element for every
pair of states i<j (see PackedIndex).

Switching rates are only given in one direction (class g to class
h, g<h). The reverse rate is whatever the host's frequency weighted
completion of the symmetric vector implies: Q[x][y] = r*pi[y] and
Q[y][x] = r*pi[x], which makes the process reversible.
*/
package mmodel

import (
	"reflect"

	"github.com/op/go-logging"
)

// log is a global logging variable.
var log = logging.MustGetLogger("mmodel")

const (
	// MinFrequency is the smallest frequency a switching rate can
	// be divided by.
	MinFrequency = 1e-10
	// MinFrequencyDiff is the tolerance for frequencies to sum to 1.
	MinFrequencyDiff = 1e-10
)

// Assembler builds the packed relative rate vector of a
// Markov-modulated model from the models of the hidden classes and the
// switching rates. An Assembler is not safe for concurrent use.
type Assembler struct {
	space  Space
	models []SubstitutionModel
	// switching rates for class pairs g<h, g is the outer loop
	switching []float64
	freq      FrequencyModel

	// rates is the last complete vector, next is the buffer for the
	// following recompute
	rates []float64
	next  []float64
	dirty bool
}

// NewAssembler creates a new Assembler. models[h] is the model of
// hidden class h. The switching slice is not copied: the caller may
// change its values and call OnRatesChanged. It must have an element
// for every pair of classes g<h ordered by g and then by h.
func NewAssembler(space Space, models []SubstitutionModel, switching []float64, freq FrequencyModel) (*Assembler, error) {
	if space.Classes() < 1 || space.StatesPerClass() < 1 {
		return nil, configErrorf("empty state space")
	}
	if len(models) != space.Classes() {
		return nil, configErrorf("%d hidden classes, but %d models", space.Classes(), len(models))
	}
	for h, m := range models {
		if m == nil {
			return nil, configErrorf("no model for hidden class %d", h)
		}
		if m.StateCount() != space.StatesPerClass() {
			return nil, configErrorf("model of class %d has %d states, expected %d",
				h, m.StateCount(), space.StatesPerClass())
		}
		for g := 0; g < h; g++ {
			if sameModel(models[g], m) {
				return nil, configErrorf("hidden classes %d and %d share the same model", g, h)
			}
		}
	}
	if len(switching) != space.SwitchingCount() {
		return nil, configErrorf("%d switching rates, expected %d", len(switching), space.SwitchingCount())
	}
	if freq == nil {
		return nil, configErrorf("no frequency model")
	}
	if n := len(freq.Frequencies()); n != space.StateCount() {
		return nil, configErrorf("%d frequencies for %d states", n, space.StateCount())
	}

	n := PackedLen(space.StateCount())
	a := &Assembler{
		space:     space,
		models:    append([]SubstitutionModel(nil), models...),
		switching: switching,
		freq:      freq,
		rates:     make([]float64, n),
		next:      make([]float64, n),
		dirty:     true,
	}
	return a, nil
}

// sameModel returns true if a and b are the same model instance.
func sameModel(a, b SubstitutionModel) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Space returns the state space.
func (a *Assembler) Space() Space {
	return a.space
}

// Dirty returns true if the inputs have changed since the last
// successful recompute.
func (a *Assembler) Dirty() bool {
	return a.dirty
}

// OnFrequenciesChanged notifies every class model (in the class
// order) that the frequencies have changed.
func (a *Assembler) OnFrequenciesChanged() {
	for _, m := range a.models {
		m.OnFrequenciesChanged()
	}
	a.dirty = true
}

// OnRatesChanged notifies every class model (in the class order) that
// the rates have changed. It should be called after the switching
// rates are modified as well.
func (a *Assembler) OnRatesChanged() {
	for _, m := range a.models {
		m.OnRatesChanged()
	}
	a.dirty = true
}

// Rates returns the packed rate vector, recomputing it if needed. The
// returned view stays valid until the next successful recompute.
func (a *Assembler) Rates() (RateVector, error) {
	if a.dirty {
		if err := a.Recompute(); err != nil {
			return RateVector{}, err
		}
	}
	return RateVector{s: a.space.StateCount(), v: a.rates}, nil
}

// Recompute fills the rate vector from the class models and the
// switching rates. On error the previous vector is kept.
func (a *Assembler) Recompute() error {
	nclass := a.space.Classes()
	nstate := a.space.StatesPerClass()
	s := a.space.StateCount()

	freq := a.freq.Frequencies()
	if len(freq) != s {
		return configErrorf("%d frequencies for %d states", len(freq), s)
	}
	if err := checkFrequencies(freq); err != nil {
		return err
	}

	buf := a.next
	for i := range buf {
		buf[i] = 0
	}

	// Rates inside of every class.
	for h, m := range a.models {
		q := m.UnnormalizedOffDiagonal()
		if r, c := q.Dims(); r != nstate || c != nstate {
			return configErrorf("model of class %d returned %d×%d matrix, expected %d×%d",
				h, r, c, nstate, nstate)
		}
		for i := 0; i < nstate; i++ {
			gi := a.space.Flatten(h, i)
			for j := i + 1; j < nstate; j++ {
				buf[PackedIndex(gi, a.space.Flatten(h, j), s)] = q.At(i, j)
			}
		}
	}

	// Switching between classes keeps the base state. The host
	// multiplies every element by the frequency of the destination
	// state, dividing here leaves the switching rate as is.
	k := 0
	for g := 0; g < nclass; g++ {
		for h := g + 1; h < nclass; h++ {
			rate := a.switching[k]
			for i := 0; i < nstate; i++ {
				buf[PackedIndex(a.space.Flatten(g, i), a.space.Flatten(h, i), s)] = rate / freq[i]
			}
			k++
		}
	}
	// Simultaneous switch and substitution stays zero.

	a.rates, a.next = buf, a.rates
	a.dirty = false
	log.Debugf("Recomputed %d rates for %d classes × %d states", len(buf), nclass, nstate)
	return nil
}
