package mmodel

// RateVector is a read-only view of a packed rate vector.
type RateVector struct {
	s int
	v []float64
}

// NewRateVector wraps a packed vector of an s-state space.
func NewRateVector(v []float64, s int) (RateVector, error) {
	if len(v) != PackedLen(s) {
		return RateVector{}, configErrorf("packed vector of length %d for %d states", len(v), s)
	}
	return RateVector{s: s, v: v}, nil
}

// StateCount returns the number of states.
func (r RateVector) StateCount() int {
	return r.s
}

// Len returns the vector length.
func (r RateVector) Len() int {
	return len(r.v)
}

// At returns the rate between states i and j in any order. Diagonal
// is zero.
func (r RateVector) At(i, j int) float64 {
	if i == j {
		if i < 0 || i >= r.s {
			panic(&IndexError{I: i, J: j, N: r.s})
		}
		return 0
	}
	if i > j {
		i, j = j, i
	}
	return r.v[PackedIndex(i, j, r.s)]
}

// AtOffset returns the k-th element of the vector.
func (r RateVector) AtOffset(k int) float64 {
	return r.v[k]
}

// Values copies the vector into dst, which is allocated if nil.
func (r RateVector) Values(dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(r.v))
	}
	copy(dst, r.v)
	return dst
}
