package mmodel

import "math"

// PackedLen returns the length of a packed vector storing every pair
// i<j of an s-state space.
func PackedLen(s int) int {
	if s < 1 {
		return 0
	}
	return s * (s - 1) / 2
}

// PackedIndex maps a pair of states 0 <= i < j < s to the offset in
// the packed vector. Rows are stored one after another, row i holding
// pairs (i, i+1) ... (i, s-1). Any other pair is a programming error
// and panics with *IndexError.
func PackedIndex(i, j, s int) int {
	if i < 0 || j >= s || i >= j {
		panic(&IndexError{I: i, J: j, N: s})
	}
	return (i*(2*s-3)-i*i)/2 + j - 1
}

// UnpackIndex is the inverse of PackedIndex.
func UnpackIndex(k, s int) (i, j int) {
	if k < 0 || k >= PackedLen(s) {
		panic(&IndexError{I: k, J: -1, N: PackedLen(s)})
	}
	// Largest row i with rowStart(i) <= k; the closed form may be off
	// by one because of rounding.
	b := float64(2*s - 1)
	i = int((b - math.Sqrt(b*b-8*float64(k))) / 2)
	if i < 0 {
		i = 0
	}
	for i > 0 && rowStart(i, s) > k {
		i--
	}
	for i+1 < s-1 && rowStart(i+1, s) <= k {
		i++
	}
	j = k - rowStart(i, s) + i + 1
	return
}

// rowStart returns the offset of the pair (i, i+1).
func rowStart(i, s int) int {
	return (i*(2*s-3)-i*i)/2 + i
}
