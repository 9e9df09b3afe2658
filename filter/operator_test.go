package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorsOrderedLongestFirst(t *testing.T) {
	ops := Operators()
	require.Len(t, ops, 8)
	for i := 1; i < len(ops); i++ {
		assert.GreaterOrEqual(t, len(ops[i-1].Token), len(ops[i].Token), "%s before %s", ops[i-1], ops[i])
	}

	// callers get a copy
	ops[0] = Operator{}
	assert.Equal(t, "!_-=", Operators()[0].Token)
}

func TestFindOperator(t *testing.T) {
	testCases := []struct {
		input   string
		token   string
		at      int
		kind    OperatorKind
		negated bool
	}{
		{"a==b", "==", 1, Equals, false},
		{"a!=b", "!=", 1, Equals, true},
		{"a@=b", "@=", 1, Contains, false},
		{"a!@=b", "!@=", 1, Contains, true},
		{"a_=b", "_=", 1, StartsWith, false},
		{"a!_=b", "!_=", 1, StartsWith, true},
		{"a_-=b", "_-=", 1, EndsWith, false},
		{"a!_-=b", "!_-=", 1, EndsWith, true},
		{"user_name==x", "==", 9, Equals, false},
		{"a\\==b==c", "==", 5, Equals, false},
		{"a==b!=c", "==", 1, Equals, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			op, at, found := findOperator(tc.input)
			require.True(t, found)
			assert.Equal(t, tc.token, op.Token)
			assert.Equal(t, tc.at, at)
			assert.Equal(t, tc.kind, op.Kind)
			assert.Equal(t, tc.negated, op.Negated)
		})
	}

	t.Run("none", func(t *testing.T) {
		_, at, found := findOperator("Text=null")
		assert.False(t, found)
		assert.Equal(t, -1, at)
	})
}

func TestLookupOperator(t *testing.T) {
	op, ok := LookupOperator("!_-=")
	require.True(t, ok)
	assert.Equal(t, EndsWith, op.Kind)
	assert.True(t, op.Negated)

	_, ok = LookupOperator("=")
	assert.False(t, ok)
}

func TestOperatorKindString(t *testing.T) {
	assert.Equal(t, "EQUALS", Equals.String())
	assert.Equal(t, "CONTAINS", Contains.String())
	assert.Equal(t, "STARTS_WITH", StartsWith.String())
	assert.Equal(t, "ENDS_WITH", EndsWith.String())
	assert.Equal(t, "UNKNOWN", OperatorKind(42).String())
}
