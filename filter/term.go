package filter

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/datazip-inc/sieve/constants"
)

// Term is one comma-separated clause of a filter string. The names are OR-ed,
// and so are the values for a positive operator; a negated operator must hold
// against every value.
type Term struct {
	Names           []string `json:"names"`
	Operator        Operator `json:"operator"`
	CaseInsensitive bool     `json:"case_insensitive"`
	Values          []Value  `json:"-"`
}

func (t Term) Negated() bool {
	return t.Operator.Negated
}

// String returns the canonical filter text for t.
func (t Term) String() string {
	var b strings.Builder
	for i, name := range t.Names {
		if i > 0 {
			b.WriteByte(constants.AlternativeSeparator)
		}
		b.WriteString(escape(name))
	}
	b.WriteString(t.Operator.Token)
	if t.CaseInsensitive {
		b.WriteByte(constants.CaseInsensitiveMark)
	}
	for i, value := range t.Values {
		if i > 0 {
			b.WriteByte(constants.AlternativeSeparator)
		}
		b.WriteString(value.String())
	}
	return b.String()
}

// Parse splits a filter string into its terms. Terms are AND-ed.
// An empty or blank filter yields no terms. Every malformed term is reported,
// and no terms are returned unless all of them parse.
func Parse(filter string) ([]Term, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, nil
	}

	var errs *multierror.Error
	parts := splitUnescaped(filter, constants.TermSeparator)
	terms := make([]Term, 0, len(parts))
	for i, part := range parts {
		term, err := parseTerm(part)
		if err != nil {
			errs = multierror.Append(errs, &SyntaxError{Index: i, Term: part, Err: err})
			continue
		}
		terms = append(terms, term)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return terms, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// filters fixed at compile time.
func MustParse(filter string) []Term {
	terms, err := Parse(filter)
	if err != nil {
		panic(err)
	}
	return terms
}

func parseTerm(raw string) (Term, error) {
	op, at, found := findOperator(raw)
	if !found {
		return Term{}, errNoOperator
	}

	names, err := parseNames(raw[:at])
	if err != nil {
		return Term{}, err
	}

	values, caseInsensitive, err := DecodeValue(raw[at+len(op.Token):])
	if err != nil {
		return Term{}, err
	}

	return Term{
		Names:           names,
		Operator:        op,
		CaseInsensitive: caseInsensitive,
		Values:          values,
	}, nil
}

// parseNames splits the text before the operator into property names.
// The list may be wrapped in one pair of parentheses: (Title|Body)@=go
func parseNames(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '(' && raw[len(raw)-1] == ')' {
		raw = raw[1 : len(raw)-1]
	}

	parts := splitUnescaped(raw, constants.AlternativeSeparator)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name, err := unescape(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, errNoProperty
		}
		names = append(names, name)
	}
	return names, nil
}
