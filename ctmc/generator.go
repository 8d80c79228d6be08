// Package ctmc builds generator matrices from packed relative rates
// and computes transition probabilities.
package ctmc

import (
	"errors"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/thmm/mmodel"
)

// log is a global logging variable.
var log = logging.MustGetLogger("ctmc")

// smallScale is a small value such that if Q-scale is less than it,
// the matrix is considered to be zero.
const smallScale = 1e-30

// ErrZeroScale is returned when a matrix can't be normalized.
var ErrZeroScale = errors.New("ctmc: expected rate is zero")

// Generator builds a full generator matrix from a packed rate vector.
type Generator struct {
	q *mat.Dense
}

// NewGenerator creates a generator for n states.
func NewGenerator(n int) *Generator {
	return &Generator{q: mat.NewDense(n, n, nil)}
}

// Build fills Q from the packed rates: every element is multiplied by
// the frequency of the destination state, Q[i][j] = r*freq[j] and
// Q[j][i] = r*freq[i]. Diagonal elements are negative row sums. The
// returned scale is the expected rate, -sum(freq[i]*Q[i][i]). If
// normalize is true, Q is divided by scale.
//
// The returned matrix is owned by the Generator and is overwritten by
// the next Build.
func (g *Generator) Build(rates mmodel.RateVector, freq []float64, normalize bool) (*mat.Dense, float64, error) {
	n := rates.StateCount()
	if r, _ := g.q.Dims(); r != n || len(freq) != n {
		return nil, 0, errors.New("ctmc: generator size doesn't match the rates")
	}
	q := g.q
	q.Zero()
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := rates.AtOffset(k)
			q.Set(i, j, r*freq[j])
			q.Set(j, i, r*freq[i])
			k++
		}
	}
	scale := 0.0
	for i := 0; i < n; i++ {
		rowSum := 0.0
		for j := 0; j < n; j++ {
			if j != i {
				rowSum += q.At(i, j)
			}
		}
		q.Set(i, i, -rowSum)
		scale += freq[i] * rowSum
	}

	if normalize {
		if scale < smallScale {
			return nil, 0, ErrZeroScale
		}
		q.Scale(1/scale, q)
	}
	log.Debugf("Built %d×%d generator, scale=%v", n, n, scale)
	return q, scale, nil
}
