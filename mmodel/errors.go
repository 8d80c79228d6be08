package mmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is matched by every configuration error.
	ErrConfig = errors.New("invalid model configuration")
	// ErrDomain is matched by every domain (numeric precondition)
	// error.
	ErrDomain = errors.New("invalid model state")
)

// ConfigError is returned by constructors when the model cannot be
// built from the supplied parts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "mmodel: " + e.Msg
}

// Is allows errors.Is(err, ErrConfig).
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// configErrorf formats a new ConfigError.
func configErrorf(format string, a ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, a...)}
}

// DomainError reports a frequency which makes the rates undefined.
// Index is the offending state, or -1 if the whole vector is wrong.
type DomainError struct {
	Index int
	Value float64
	Msg   string
}

func (e *DomainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("mmodel: %s (%g)", e.Msg, e.Value)
	}
	return fmt.Sprintf("mmodel: %s: freq[%d]=%g", e.Msg, e.Index, e.Value)
}

// Is allows errors.Is(err, ErrDomain).
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// IndexError is the panic value for indices outside of the state
// space or the packed vector.
type IndexError struct {
	I, J int
	// N is the bound the indices were checked against.
	N int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("mmodel: index out of range: (%d, %d) for size %d", e.I, e.J, e.N)
}
