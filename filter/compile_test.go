package filter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row map[string]string

var rowBinder = BinderFunc[row](func(name string) (Accessor[row], error) {
	if name == "unknown" || name == "other" {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvableProperty, name)
	}
	return func(r row) (string, bool) {
		v, ok := r[name]
		return v, ok
	}, nil
})

func compileRow(t *testing.T, filter string, opts ...Option) Predicate[row] {
	t.Helper()
	match, err := Build[row](filter, rowBinder, opts...)
	require.NoError(t, err)
	return match
}

func TestAbsentProperty(t *testing.T) {
	absent := row{}
	testCases := []struct {
		filter   string
		expected bool
	}{
		{"x==null", true},
		{"x!=null", false},
		{"x==abc", false},
		{"x!=abc", true},
		{"x@=abc", false},
		{"x!@=abc", false},
		{"x_=abc", false},
		{"x!_=abc", false},
		{"x_-=abc", false},
		{"x!_-=abc", false},
		{"x@=null", false},
		{"x!@=null", false},
	}

	for _, tc := range testCases {
		t.Run(tc.filter, func(t *testing.T) {
			assert.Equal(t, tc.expected, compileRow(t, tc.filter)(absent))
		})
	}
}

func TestEqualsPartitions(t *testing.T) {
	rows := []row{{}, {"x": ""}, {"x": "abc"}, {"x": "ABC"}, {"x": "null"}}
	values := []string{"abc", "*abc", "null", "*NULL", `\null`, "", "abc|null"}

	for _, value := range values {
		eq := compileRow(t, "x=="+value)
		ne := compileRow(t, "x!="+value)
		for _, r := range rows {
			assert.NotEqual(t, eq(r), ne(r), "value %q row %v", value, r)
		}
	}
}

func TestCaseSensitivity(t *testing.T) {
	r := row{"x": "Hello World"}
	testCases := []struct {
		filter   string
		expected bool
	}{
		{"x==hello world", false},
		{"x==*hello world", true},
		{"x@=WORLD", false},
		{"x@=*WORLD", true},
		{"x_=hello", false},
		{"x_=*hello", true},
		{"x_-=WORLD", false},
		{"x_-=*WORLD", true},
		{"x!@=*WORLD", false},
		{"x!=*HELLO WORLD", false},
	}

	for _, tc := range testCases {
		t.Run(tc.filter, func(t *testing.T) {
			assert.Equal(t, tc.expected, compileRow(t, tc.filter)(r))
		})
	}
}

func TestCaseFoldingIsConsistent(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  string
	}{
		{"long s", "ſ", "s"},
		{"kelvin sign", "\u212a", "k"},
		{"greek final sigma", "ς", "Σ"},
		{"ascii", "Hello", "hELLO"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := row{"x": tc.value}
			for _, op := range []string{"==", "@=", "_=", "_-="} {
				assert.True(t, compileRow(t, "x"+op+"*"+tc.want)(r), "x%s*%s on %q", op, tc.want, tc.value)
			}
			for _, op := range []string{"!=", "!@=", "!_=", "!_-="} {
				assert.False(t, compileRow(t, "x"+op+"*"+tc.want)(r), "x%s*%s on %q", op, tc.want, tc.value)
			}
		})
	}
}

func TestNegatedAlternativesMatchNone(t *testing.T) {
	match := compileRow(t, "x!@=foo|bar")
	assert.True(t, match(row{"x": "baz"}))
	assert.False(t, match(row{"x": "foo"}))
	assert.False(t, match(row{"x": "bar"}))

	match = compileRow(t, "x!=a|b")
	assert.True(t, match(row{"x": "c"}))
	assert.True(t, match(row{}))
	assert.False(t, match(row{"x": "b"}))
}

func TestNamesAreOredTermsAreAnded(t *testing.T) {
	match := compileRow(t, "a|b==1,c==2")
	assert.True(t, match(row{"a": "1", "c": "2"}))
	assert.True(t, match(row{"b": "1", "c": "2"}))
	assert.False(t, match(row{"a": "1"}))
	assert.False(t, match(row{"c": "2"}))
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	match := compileRow(t, "")
	assert.True(t, match(row{}))
	assert.True(t, match(row{"x": "y"}))
}

func TestUnresolvedPolicy(t *testing.T) {
	t.Run("fail by default", func(t *testing.T) {
		_, err := Build[row]("unknown==x", rowBinder)
		assert.ErrorIs(t, err, ErrUnresolvableProperty)
	})

	t.Run("fail explicitly", func(t *testing.T) {
		_, err := Build[row]("a==x,unknown==x", rowBinder, WithUnresolvedPolicy(PolicyFail))
		assert.ErrorIs(t, err, ErrUnresolvableProperty)
	})

	t.Run("skip property", func(t *testing.T) {
		match := compileRow(t, "unknown|a==x", WithUnresolvedPolicy(PolicySkipProperty))
		assert.True(t, match(row{"a": "x"}))
		assert.False(t, match(row{"a": "y"}))
	})

	t.Run("skip property drops a term left without names", func(t *testing.T) {
		match := compileRow(t, "unknown|other==x,a==y", WithUnresolvedPolicy(PolicySkipProperty))
		assert.True(t, match(row{"a": "y"}))
	})

	t.Run("skip term", func(t *testing.T) {
		match := compileRow(t, "unknown|a==x,b==y", WithUnresolvedPolicy(PolicySkipTerm))
		assert.True(t, match(row{"a": "nope", "b": "y"}))
		assert.False(t, match(row{"b": "z"}))
	})

	t.Run("empty policy keeps the default", func(t *testing.T) {
		_, err := Build[row]("unknown==x", rowBinder, WithUnresolvedPolicy(""))
		assert.ErrorIs(t, err, ErrUnresolvableProperty)
	})

	t.Run("unknown policy is rejected", func(t *testing.T) {
		for _, policy := range []UnresolvedPolicy{"skip-property", "SKIP_TERM", "ignore"} {
			match, err := Build[row]("unknown==x", rowBinder, WithUnresolvedPolicy(policy))
			assert.ErrorIs(t, err, ErrUnknownPolicy, "policy %q", policy)
			assert.Nil(t, match)
		}
	})

	t.Run("unknown policy is rejected even when every name resolves", func(t *testing.T) {
		_, err := Build[row]("a==x", rowBinder, WithUnresolvedPolicy("nope"))
		assert.ErrorIs(t, err, ErrUnknownPolicy)
	})
}

func TestBinderFailureIsNotSkipped(t *testing.T) {
	broken := errors.New("connection lost")
	binder := BinderFunc[row](func(string) (Accessor[row], error) {
		return nil, broken
	})

	_, err := Build[row]("a==x", binder, WithUnresolvedPolicy(PolicySkipTerm))
	assert.ErrorIs(t, err, broken)
}

func TestCompileRejectsHandBuiltTerms(t *testing.T) {
	testCases := []struct {
		name string
		term Term
	}{
		{"no names", Term{Operator: mustOperator(t, "=="), Values: []Value{Literal("x")}}},
		{"no values", Term{Names: []string{"a"}, Operator: mustOperator(t, "==")}},
		{"unknown operator", Term{Names: []string{"a"}, Operator: Operator{Token: "~="}, Values: []Value{Literal("x")}}},
		{"mismatched operator", Term{Names: []string{"a"}, Operator: Operator{Token: "==", Negated: true}, Values: []Value{Literal("x")}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile([]Term{tc.term}, rowBinder)
			assert.ErrorIs(t, err, ErrMalformedFilter)
		})
	}
}
