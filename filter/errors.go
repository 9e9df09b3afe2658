package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFilter is returned when a filter string cannot be parsed.
	ErrMalformedFilter = errors.New("malformed filter")
	// ErrUnresolvableProperty is returned by a Binder when a filter name
	// does not map to anything on the entity.
	ErrUnresolvableProperty = errors.New("unresolvable property")
	// ErrUnknownPolicy is returned by Compile for an UnresolvedPolicy other
	// than fail, skip_property or skip_term.
	ErrUnknownPolicy = errors.New("unknown unresolved policy")

	errNoOperator     = errors.New("no known operator")
	errNoProperty     = errors.New("empty property name")
	errDanglingEscape = errors.New("dangling escape at end of input")
)

// SyntaxError describes one malformed term of a filter string.
type SyntaxError struct {
	Index int    // position of the term in the filter string
	Term  string // raw text of the term
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: term %d %q: %s", ErrMalformedFilter, e.Index, e.Term, e.Err)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedFilter
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
