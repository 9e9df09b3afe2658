package filter

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/datazip-inc/sieve/utils/logger"
)

// Accessor reads one property off an entity. ok is false when the entity
// holds no value for it.
type Accessor[T any] func(entity T) (value string, ok bool)

// Binder maps a filter name to an Accessor. It returns an error wrapping
// ErrUnresolvableProperty when the name cannot be mapped.
type Binder[T any] interface {
	Bind(name string) (Accessor[T], error)
}

// BinderFunc adapts a function to a Binder.
type BinderFunc[T any] func(name string) (Accessor[T], error)

func (f BinderFunc[T]) Bind(name string) (Accessor[T], error) {
	return f(name)
}

// Predicate reports whether an entity matches a compiled filter.
type Predicate[T any] func(entity T) bool

// UnresolvedPolicy decides what Compile does with a name the Binder rejects
// with ErrUnresolvableProperty.
type UnresolvedPolicy string

const (
	PolicyFail         UnresolvedPolicy = "fail"
	PolicySkipProperty UnresolvedPolicy = "skip_property"
	PolicySkipTerm     UnresolvedPolicy = "skip_term"
)

type options struct {
	unresolved UnresolvedPolicy
}

type Option func(*options)

// WithUnresolvedPolicy sets the policy for unresolvable names. Defaults to PolicyFail.
func WithUnresolvedPolicy(policy UnresolvedPolicy) Option {
	return func(o *options) {
		if policy != "" {
			o.unresolved = policy
		}
	}
}

// Compile builds a single predicate from terms: OR across the names of a
// term, AND across terms. No terms match everything.
func Compile[T any](terms []Term, binder Binder[T], opts ...Option) (Predicate[T], error) {
	o := options{unresolved: PolicyFail}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.unresolved {
	case PolicyFail, PolicySkipProperty, PolicySkipTerm:
	default:
		return nil, fmt.Errorf("%w %q, expected one of %s, %s or %s", ErrUnknownPolicy, o.unresolved,
			PolicyFail, PolicySkipProperty, PolicySkipTerm)
	}

	clauses := make([]Predicate[T], 0, len(terms))
	for _, term := range terms {
		clause, err := compileTerm(term, binder, o.unresolved)
		if err != nil {
			return nil, err
		}
		if clause == nil {
			logger.Debugf("[Compile] dropping term %q: no resolvable property", term.String())
			continue
		}
		clauses = append(clauses, clause)
	}

	logger.Debugf("[Compile] compiled %d of %d terms", len(clauses), len(terms))
	return allOf(clauses), nil
}

// compileTerm returns nil, nil when the policy drops the whole term.
func compileTerm[T any](term Term, binder Binder[T], policy UnresolvedPolicy) (Predicate[T], error) {
	if len(term.Names) == 0 || len(term.Values) == 0 {
		return nil, fmt.Errorf("%w: term %q needs a property and a value", ErrMalformedFilter, term.String())
	}
	if op, ok := LookupOperator(term.Operator.Token); !ok || op != term.Operator {
		return nil, fmt.Errorf("%w: term %q: %s", ErrMalformedFilter, term.String(), errNoOperator)
	}

	test := newValueTest(term)

	clauses := make([]Predicate[T], 0, len(term.Names))
	for _, name := range term.Names {
		accessor, err := binder.Bind(name)
		if err != nil {
			if !errors.Is(err, ErrUnresolvableProperty) || policy == PolicyFail {
				return nil, fmt.Errorf("failed to bind %q in term %q: %w", name, term.String(), err)
			}
			logger.Warnf("skipping property %q in term %q: %s", name, term.String(), err)
			if policy == PolicySkipTerm {
				return nil, nil
			}
			continue
		}
		clauses = append(clauses, func(entity T) bool {
			return test(accessor(entity))
		})
	}

	if len(clauses) == 0 {
		return nil, nil
	}
	return anyOf(clauses), nil
}

// valueTest decides a term against one property value.
type valueTest func(value string, present bool) bool

func newValueTest(term Term) valueTest {
	tests := make([]valueTest, len(term.Values))
	for i, value := range term.Values {
		tests[i] = positiveTest(term.Operator.Kind, value, term.CaseInsensitive)
	}
	match := anyValue(tests)

	switch {
	case !term.Negated():
		return match
	case term.Operator.Kind == Equals:
		return func(value string, present bool) bool {
			return !match(value, present)
		}
	default:
		// absence neither contains nor lacks anything
		return func(value string, present bool) bool {
			return present && !match(value, present)
		}
	}
}

func positiveTest(kind OperatorKind, value Value, caseInsensitive bool) valueTest {
	if kind == Equals {
		if value.IsNull() {
			return func(_ string, present bool) bool {
				return !present
			}
		}
		want := value.Text()
		if caseInsensitive {
			want = fold(want)
			return func(got string, present bool) bool {
				return present && fold(got) == want
			}
		}
		return func(got string, present bool) bool {
			return present && got == want
		}
	}

	// the null sentinel degrades to its spelling here
	want := value.Text()
	match := substringMatchers[kind]
	if caseInsensitive {
		want = fold(want)
		return func(got string, present bool) bool {
			return present && match(fold(got), want)
		}
	}
	return func(got string, present bool) bool {
		return present && match(got, want)
	}
}

var substringMatchers = map[OperatorKind]func(s, sub string) bool{
	Contains:   strings.Contains,
	StartsWith: strings.HasPrefix,
	EndsWith:   strings.HasSuffix,
}

// fold applies Unicode case folding. A Caser is not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

func anyValue(tests []valueTest) valueTest {
	if len(tests) == 1 {
		return tests[0]
	}
	return func(value string, present bool) bool {
		for _, test := range tests {
			if test(value, present) {
				return true
			}
		}
		return false
	}
}

func anyOf[T any](preds []Predicate[T]) Predicate[T] {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(entity T) bool {
		for _, pred := range preds {
			if pred(entity) {
				return true
			}
		}
		return false
	}
}

func allOf[T any](preds []Predicate[T]) Predicate[T] {
	switch len(preds) {
	case 0:
		return func(T) bool { return true }
	case 1:
		return preds[0]
	}
	return func(entity T) bool {
		for _, pred := range preds {
			if !pred(entity) {
				return false
			}
		}
		return true
	}
}
