package ctmc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// reversibilityTol is the largest allowed asymmetry of
// freq[i]*Q[i][j] - freq[j]*Q[j][i].
const reversibilityTol = 1e-8

// zeroEigen is the absolute value below which an eigenvalue is zero.
const zeroEigen = 1e-12

// EMatrix stores a reversible Q-matrix and its eigendecomposition to
// quickly compute e^Qt.
type EMatrix struct {
	// Q is Q-matrix.
	Q *mat.Dense
	// Scale is matrix scale.
	Scale float64
	freq  []float64
	// Q = v * diag(d) * iv
	v  *mat.Dense
	d  []float64
	iv *mat.Dense
}

// NewEMatrix creates a new EMatrix for the stationary frequencies.
// The frequencies are not copied.
func NewEMatrix(freq []float64) *EMatrix {
	return &EMatrix{freq: freq}
}

// Copy creates a copy of EMatrix while saving eigendecomposition.
func (m *EMatrix) Copy() *EMatrix {
	return &EMatrix{
		Q:     m.Q,
		Scale: m.Scale,
		freq:  m.freq,
		v:     m.v,
		d:     m.d,
		iv:    m.iv,
	}
}

// Set sets Q-matrix and its scale, dropping the decomposition.
func (m *EMatrix) Set(Q *mat.Dense, scale float64) {
	m.Q = Q
	m.Scale = scale
	m.v = nil
}

// Decomposed returns true if the eigendecomposition is cached.
func (m *EMatrix) Decomposed() bool {
	return m.v != nil
}

// Eigen performs eigendecomposition. A reversible Q is similar to the
// symmetric matrix Pi^(1/2) Q Pi^(-1/2), which is decomposed instead.
func (m *EMatrix) Eigen() error {
	if m.v != nil {
		return nil
	}
	if m.Q == nil {
		return errors.New("ctmc: no Q-matrix")
	}
	n, _ := m.Q.Dims()
	if len(m.freq) != n {
		return fmt.Errorf("ctmc: %d frequencies for %d×%d matrix", len(m.freq), n, n)
	}
	sq := make([]float64, n)
	for i, f := range m.freq {
		if !(f > 0) {
			return fmt.Errorf("ctmc: non-positive frequency freq[%d]=%v", i, f)
		}
		sq[i] = math.Sqrt(f)
	}

	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, m.Q.At(i, i))
		for j := i + 1; j < n; j++ {
			fij := m.freq[i] * m.Q.At(i, j)
			fji := m.freq[j] * m.Q.At(j, i)
			if math.Abs(fij-fji) > reversibilityTol*math.Max(1, math.Abs(fij)) {
				return fmt.Errorf("ctmc: matrix isn't reversible at (%d, %d)", i, j)
			}
			a.SetSym(i, j, m.Q.At(i, j)*sq[i]/sq[j])
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return errors.New("ctmc: eigendecomposition failed")
	}
	var u mat.Dense
	es.VectorsTo(&u)

	v := mat.NewDense(n, n, nil)
	v.Apply(func(i, j int, x float64) float64 {
		return x / sq[i]
	}, &u)
	iv := mat.NewDense(n, n, nil)
	iv.Apply(func(i, j int, x float64) float64 {
		return x * sq[j]
	}, u.T())

	m.d = es.Values(nil)
	for i, d := range m.d {
		// the stationary eigenvalue is zero up to rounding
		if math.Abs(d) < zeroEigen {
			m.d[i] = 0
		}
	}
	m.v = v
	m.iv = iv
	return nil
}

// Values returns the eigenvalues in ascending order.
func (m *EMatrix) Values() ([]float64, error) {
	if err := m.Eigen(); err != nil {
		return nil, err
	}
	return append([]float64(nil), m.d...), nil
}

// Exp computes P=e^Qt and writes it to dst, which is allocated if nil.
func (m *EMatrix) Exp(dst *mat.Dense, t float64) (*mat.Dense, error) {
	if err := m.Eigen(); err != nil {
		return nil, err
	}
	n := len(m.d)
	if dst == nil {
		dst = mat.NewDense(n, n, nil)
	}
	if t == 0 {
		dst.Zero()
		for i := 0; i < n; i++ {
			dst.Set(i, i, 1)
		}
		return dst, nil
	}
	// This is a dirty hack to allow infinite branches
	if math.IsInf(t, 1) {
		t = math.MaxFloat64
	}

	e := make([]float64, n)
	for i, d := range m.d {
		e[i] = math.Exp(d * t)
	}
	tmp := mat.NewDense(n, n, nil)
	tmp.Apply(func(i, j int, x float64) float64 {
		return x * e[j]
	}, m.v)
	dst.Mul(tmp, m.iv)
	// Remove sligtly negative values
	dst.Apply(func(i, j int, x float64) float64 {
		return math.Max(0, x)
	}, dst)
	return dst, nil
}
