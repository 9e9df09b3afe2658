package filter

import (
	"slices"
	"strings"
)

// OperatorKind is the comparison an operator performs, regardless of negation.
type OperatorKind int

const (
	Equals OperatorKind = iota
	Contains
	StartsWith
	EndsWith
)

func (k OperatorKind) String() string {
	switch k {
	case Equals:
		return "EQUALS"
	case Contains:
		return "CONTAINS"
	case StartsWith:
		return "STARTS_WITH"
	case EndsWith:
		return "ENDS_WITH"
	default:
		return "UNKNOWN"
	}
}

// Operator is one entry of the operator table.
type Operator struct {
	Token   string       `json:"token"`
	Kind    OperatorKind `json:"kind"`
	Negated bool         `json:"negated"`
}

func (o Operator) String() string {
	return o.Token
}

// operators is kept sorted by descending token length (see init), so a token
// is always tried before any shorter token that is a textual prefix of it.
var operators = []Operator{
	{Token: "==", Kind: Equals},
	{Token: "!=", Kind: Equals, Negated: true},
	{Token: "@=", Kind: Contains},
	{Token: "!@=", Kind: Contains, Negated: true},
	{Token: "_=", Kind: StartsWith},
	{Token: "!_=", Kind: StartsWith, Negated: true},
	{Token: "_-=", Kind: EndsWith},
	{Token: "!_-=", Kind: EndsWith, Negated: true},
}

// Operators returns a copy of the operator table in matching order.
func Operators() []Operator {
	return slices.Clone(operators)
}

// LookupOperator returns the operator whose token is exactly token.
func LookupOperator(token string) (Operator, bool) {
	for _, op := range operators {
		if op.Token == token {
			return op, true
		}
	}
	return Operator{}, false
}

// operatorAt returns the longest operator token that starts at s[i:].
func operatorAt(s string, i int) (Operator, bool) {
	for _, op := range operators {
		if strings.HasPrefix(s[i:], op.Token) {
			return op, true
		}
	}
	return Operator{}, false
}

// findOperator scans s left to right, skipping escaped characters, and returns
// the first operator found and its byte offset.
func findOperator(s string) (Operator, int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar {
			i++
			continue
		}
		if op, ok := operatorAt(s, i); ok {
			return op, i, true
		}
	}
	return Operator{}, -1, false
}

func init() {
	slices.SortStableFunc(operators, func(a, b Operator) int {
		return len(b.Token) - len(a.Token)
	})
}
