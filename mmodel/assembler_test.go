package mmodel

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func init() {
	logging.SetLevel(logging.WARNING, "mmodel")
}

// fixedModel is a class model returning a fixed matrix and recording
// the notifications it gets.
type fixedModel struct {
	id    int
	q     *mat.Dense
	calls *[]string
	reads int
}

func newFixedModel(id int, q *mat.Dense, calls *[]string) *fixedModel {
	return &fixedModel{id: id, q: q, calls: calls}
}

func (m *fixedModel) StateCount() int {
	r, _ := m.q.Dims()
	return r
}

func (m *fixedModel) UnnormalizedOffDiagonal() mat.Matrix {
	m.reads++
	if m.calls != nil {
		*m.calls = append(*m.calls, "read"+string(rune('0'+m.id)))
	}
	return m.q
}

func (m *fixedModel) OnFrequenciesChanged() {
	if m.calls != nil {
		*m.calls = append(*m.calls, "freq"+string(rune('0'+m.id)))
	}
}

func (m *fixedModel) OnRatesChanged() {
	if m.calls != nil {
		*m.calls = append(*m.calls, "rates"+string(rune('0'+m.id)))
	}
}

// randomModel returns a model with random upper triangle values.
func randomModel(id, nstate int, rnd *rand.Rand) *fixedModel {
	q := mat.NewDense(nstate, nstate, nil)
	for i := 0; i < nstate; i++ {
		for j := i + 1; j < nstate; j++ {
			q.Set(i, j, rnd.Float64()+0.1)
			// lower triangle is never read
			q.Set(j, i, -1)
		}
	}
	return newFixedModel(id, q, nil)
}

func equalFreq(n int) Frequencies {
	f := make(Frequencies, n)
	for i := range f {
		f[i] = 1 / float64(n)
	}
	return f
}

func newTestAssembler(t *testing.T, nclass, nstate int, seed int64) (*Assembler, []*fixedModel, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	space, err := NewSpace(nclass, nstate)
	require.NoError(t, err)
	fms := make([]*fixedModel, nclass)
	models := make([]SubstitutionModel, nclass)
	for h := range models {
		fms[h] = randomModel(h, nstate, rnd)
		models[h] = fms[h]
	}
	switching := make([]float64, space.SwitchingCount())
	for i := range switching {
		switching[i] = rnd.Float64() + 0.5
	}
	a, err := NewAssembler(space, models, switching, equalFreq(space.StateCount()))
	require.NoError(t, err)
	return a, fms, switching
}

func TestScenarioTwoClasses(t *testing.T) {
	q0 := mat.NewDense(2, 2, []float64{0, 3, 0, 0})
	q1 := mat.NewDense(2, 2, []float64{0, 4, 0, 0})
	space, err := NewSpace(2, 2)
	require.NoError(t, err)

	a, err := NewAssembler(space,
		[]SubstitutionModel{newFixedModel(0, q0, nil), newFixedModel(1, q1, nil)},
		[]float64{5},
		Frequencies{0.25, 0.25, 0.25, 0.25})
	require.NoError(t, err)

	r, err := a.Rates()
	require.NoError(t, err)
	require.Equal(t, 6, r.Len())
	require.Equal(t, []float64{3, 20, 0, 0, 20, 4}, r.Values(nil))
	require.Equal(t, 3.0, r.At(0, 1))
	require.Equal(t, 4.0, r.At(3, 2))
	require.Equal(t, 20.0, r.At(0, 2))
	require.Equal(t, 20.0, r.At(1, 3))
	require.Equal(t, 0.0, r.At(0, 3))
	require.Equal(t, 0.0, r.At(1, 2))
}

func TestVectorLength(t *testing.T) {
	for nclass := 1; nclass <= 4; nclass++ {
		for nstate := 1; nstate <= 6; nstate++ {
			a, _, _ := newTestAssembler(t, nclass, nstate, int64(nclass*10+nstate))
			r, err := a.Rates()
			require.NoError(t, err)
			s := nclass * nstate
			require.Equal(t, s*(s-1)/2, r.Len())
			require.Equal(t, s, r.StateCount())
		}
	}
}

func TestSingleClassRoundTrip(t *testing.T) {
	a, fms, switching := newTestAssembler(t, 1, 7, 1)
	require.Empty(t, switching)
	r, err := a.Rates()
	require.NoError(t, err)

	q := fms[0].q
	expected := make([]float64, 0, r.Len())
	for i := 0; i < 7; i++ {
		for j := i + 1; j < 7; j++ {
			expected = append(expected, q.At(i, j))
		}
	}
	require.Equal(t, expected, r.Values(nil))
}

// isSwitching returns true for the elements set from the switching
// rates.
func isSwitching(space Space, x, y int) bool {
	g, i := space.Split(x)
	h, j := space.Split(y)
	return g != h && i == j
}

func TestIndependence(t *testing.T) {
	a, fms, switching := newTestAssembler(t, 3, 4, 2)
	space := a.Space()
	s := space.StateCount()

	r, err := a.Rates()
	require.NoError(t, err)
	before := r.Values(nil)

	// switching only
	for i := range switching {
		switching[i] *= 3.5
	}
	a.OnRatesChanged()
	r, err = a.Rates()
	require.NoError(t, err)
	after := r.Values(nil)
	for x := 0; x < s; x++ {
		for y := x + 1; y < s; y++ {
			k := PackedIndex(x, y, s)
			if isSwitching(space, x, y) {
				require.NotEqual(t, before[k], after[k], "switching element (%d, %d)", x, y)
			} else {
				require.Equal(t, before[k], after[k], "element (%d, %d)", x, y)
			}
		}
	}

	// class model only
	before = after
	fms[1].q.Scale(2, fms[1].q)
	a.OnRatesChanged()
	r, err = a.Rates()
	require.NoError(t, err)
	after = r.Values(nil)
	for x := 0; x < s; x++ {
		for y := x + 1; y < s; y++ {
			k := PackedIndex(x, y, s)
			g, _ := space.Split(x)
			h, _ := space.Split(y)
			if g == 1 && h == 1 {
				require.Equal(t, 2*before[k], after[k])
			} else {
				require.Equal(t, before[k], after[k], "element (%d, %d)", x, y)
			}
		}
	}
}

func TestSimultaneousEventsAreZero(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		a, _, _ := newTestAssembler(t, 3, 5, seed)
		space := a.Space()
		r, err := a.Rates()
		require.NoError(t, err)
		for x := 0; x < space.StateCount(); x++ {
			for y := x + 1; y < space.StateCount(); y++ {
				g, i := space.Split(x)
				h, j := space.Split(y)
				if g != h && i != j {
					require.Zero(t, r.At(x, y))
				} else {
					require.Greater(t, r.At(x, y), 0.0)
				}
			}
		}
	}
}

func TestSwitchingOrder(t *testing.T) {
	nstate := 2
	space, err := NewSpace(3, nstate)
	require.NoError(t, err)
	zero := func(id int) *fixedModel {
		return newFixedModel(id, mat.NewDense(nstate, nstate, nil), nil)
	}
	// (0,1), (0,2), (1,2)
	switching := []float64{1, 2, 3}
	freq := Frequencies{0.5, 0.25, 0.125, 0.0625, 0.03125, 0.03125}
	a, err := NewAssembler(space, []SubstitutionModel{zero(0), zero(1), zero(2)}, switching, freq)
	require.NoError(t, err)
	r, err := a.Rates()
	require.NoError(t, err)

	k := 0
	for g := 0; g < 3; g++ {
		for h := g + 1; h < 3; h++ {
			for i := 0; i < nstate; i++ {
				require.Equal(t, switching[k]/freq[i], r.At(space.Flatten(g, i), space.Flatten(h, i)))
			}
			k++
		}
	}
}

func TestIdempotent(t *testing.T) {
	a, _, _ := newTestAssembler(t, 2, 6, 3)
	require.NoError(t, a.Recompute())
	r, err := a.Rates()
	require.NoError(t, err)
	first := r.Values(nil)
	require.NoError(t, a.Recompute())
	r, err = a.Rates()
	require.NoError(t, err)
	require.Equal(t, first, r.Values(nil))
}

func TestZeroFrequency(t *testing.T) {
	a, _, _ := newTestAssembler(t, 2, 3, 4)
	r, err := a.Rates()
	require.NoError(t, err)
	good := r.Values(nil)

	freq := a.freq.(Frequencies)
	freq[1] = 0
	freq[4] += 1.0 / 6
	a.OnFrequenciesChanged()
	_, err = a.Rates()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDomain))
	var derr *DomainError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, 1, derr.Index)
	require.True(t, a.Dirty())

	// the previous vector is kept
	require.Equal(t, good, a.rates)
}

func TestZeroFrequencyAnyState(t *testing.T) {
	cases := []struct {
		nclass, nstate int
		freq           Frequencies
		index          int
	}{
		// outside of the first class
		{2, 2, Frequencies{0.5, 0.5, 0, 0}, 2},
		// single class, no switching rates to divide
		{1, 3, Frequencies{0, 0.5, 0.5}, 0},
		// exactly at the floor
		{1, 3, Frequencies{0.5 - MinFrequency, 0.5, MinFrequency}, 2},
	}
	for _, c := range cases {
		space, err := NewSpace(c.nclass, c.nstate)
		require.NoError(t, err)
		rnd := rand.New(rand.NewSource(7))
		models := make([]SubstitutionModel, c.nclass)
		for h := range models {
			models[h] = randomModel(h, c.nstate, rnd)
		}
		a, err := NewAssembler(space, models, make([]float64, space.SwitchingCount()), c.freq)
		require.NoError(t, err)
		err = a.Recompute()
		require.True(t, errors.Is(err, ErrDomain), "freq=%v", c.freq)
		var derr *DomainError
		require.True(t, errors.As(err, &derr))
		require.Equal(t, c.index, derr.Index, "freq=%v", c.freq)
	}

	// just above the floor is accepted
	space, err := NewSpace(1, 3)
	require.NoError(t, err)
	a, err := NewAssembler(space, []SubstitutionModel{randomModel(0, 3, rand.New(rand.NewSource(8)))},
		nil, Frequencies{0.5 - 2*MinFrequency, 0.5, 2 * MinFrequency})
	require.NoError(t, err)
	require.NoError(t, a.Recompute())
}

func TestFrequencySum(t *testing.T) {
	a, _, _ := newTestAssembler(t, 2, 3, 5)
	freq := a.freq.(Frequencies)
	freq[5] *= 2
	err := a.Recompute()
	var derr *DomainError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, -1, derr.Index)
}

func TestConfigErrors(t *testing.T) {
	space, err := NewSpace(2, 2)
	require.NoError(t, err)
	q := func() *mat.Dense { return mat.NewDense(2, 2, nil) }
	m0 := newFixedModel(0, q(), nil)
	m1 := newFixedModel(1, q(), nil)
	freq := equalFreq(4)

	cases := map[string]func() (*Assembler, error){
		"model count": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0}, []float64{1}, freq)
		},
		"state count": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0, newFixedModel(1, mat.NewDense(3, 3, nil), nil)}, []float64{1}, freq)
		},
		"same model": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0, m0}, []float64{1}, freq)
		},
		"switching length": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0, m1}, []float64{1, 2}, freq)
		},
		"frequency length": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0, m1}, []float64{1}, equalFreq(3))
		},
		"nil model": func() (*Assembler, error) {
			return NewAssembler(space, []SubstitutionModel{m0, nil}, []float64{1}, freq)
		},
	}
	for name, f := range cases {
		a, err := f()
		require.Nil(t, a, name)
		require.True(t, errors.Is(err, ErrConfig), name)
	}

	a, err := NewAssembler(space, []SubstitutionModel{m0, m1}, []float64{1}, freq)
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestNotificationOrder(t *testing.T) {
	var calls []string
	space, err := NewSpace(3, 2)
	require.NoError(t, err)
	models := make([]SubstitutionModel, 3)
	for h := range models {
		models[h] = newFixedModel(h, mat.NewDense(2, 2, nil), &calls)
	}
	a, err := NewAssembler(space, models, []float64{1, 1, 1}, equalFreq(6))
	require.NoError(t, err)

	a.OnFrequenciesChanged()
	a.OnRatesChanged()
	require.True(t, a.Dirty())
	_, err = a.Rates()
	require.NoError(t, err)
	require.False(t, a.Dirty())
	require.Equal(t, []string{
		"freq0", "freq1", "freq2",
		"rates0", "rates1", "rates2",
		"read0", "read1", "read2",
	}, calls)

	// clean vector is not recomputed
	calls = calls[:0]
	_, err = a.Rates()
	require.NoError(t, err)
	require.Empty(t, calls)
}
