package mmodel

// Space is a state space of hidden classes times base states. A state
// (class h, base state i) has the flat index h*M + i, so the states of
// one class form a contiguous block.
type Space struct {
	classes        int
	statesPerClass int
}

// NewSpace creates a space of nclass hidden classes with nstate base
// states each.
func NewSpace(nclass, nstate int) (Space, error) {
	if nclass < 1 {
		return Space{}, configErrorf("number of hidden classes should be positive, got %d", nclass)
	}
	if nstate < 1 {
		return Space{}, configErrorf("number of states per class should be positive, got %d", nstate)
	}
	return Space{classes: nclass, statesPerClass: nstate}, nil
}

// Classes returns the number of hidden classes (H).
func (s Space) Classes() int {
	return s.classes
}

// StatesPerClass returns the number of base states (M).
func (s Space) StatesPerClass() int {
	return s.statesPerClass
}

// StateCount returns H*M.
func (s Space) StateCount() int {
	return s.classes * s.statesPerClass
}

// Flatten returns the flat index of base state i in class h.
func (s Space) Flatten(h, i int) int {
	if h < 0 || h >= s.classes || i < 0 || i >= s.statesPerClass {
		panic(&IndexError{I: h, J: i, N: s.StateCount()})
	}
	return h*s.statesPerClass + i
}

// Split returns the hidden class and the base state of a flat index.
func (s Space) Split(state int) (h, i int) {
	if state < 0 || state >= s.StateCount() {
		panic(&IndexError{I: state, J: -1, N: s.StateCount()})
	}
	return state / s.statesPerClass, state % s.statesPerClass
}

// SwitchingCount returns the number of class pairs g<h, which is the
// expected length of the switching rates.
func (s Space) SwitchingCount() int {
	return PackedLen(s.classes)
}
