package filter

import (
	"strings"

	"github.com/datazip-inc/sieve/constants"
)

const (
	escapeChar = constants.EscapeChar
	nullToken  = constants.NullToken
)

// Value is a decoded filter value: either the null sentinel or literal text.
type Value struct {
	null bool
	text string
}

// Null matches the absence of a value.
var Null = Value{null: true}

// Literal returns a Value holding text verbatim, even when text is "null".
func Literal(text string) Value {
	return Value{text: text}
}

func (v Value) IsNull() bool {
	return v.null
}

// Text returns the literal text. The null sentinel reads as its spelling,
// which is what substring operators compare against.
func (v Value) Text() string {
	if v.null {
		return nullToken
	}
	return v.text
}

// String renders v the way it would be written in a filter, so that decoding
// the result yields v again.
func (v Value) String() string {
	if v.null {
		return nullToken
	}
	if strings.EqualFold(v.text, nullToken) {
		return string(escapeChar) + v.text
	}
	return escape(v.text)
}

// DecodeValue decodes the raw text that follows an operator. A leading '*'
// requests case-insensitive matching; unescaped '|' separates alternatives.
func DecodeValue(raw string) ([]Value, bool, error) {
	caseInsensitive := strings.HasPrefix(raw, string(constants.CaseInsensitiveMark))
	if caseInsensitive {
		raw = raw[1:]
	}

	parts := splitUnescaped(raw, constants.AlternativeSeparator)
	values := make([]Value, 0, len(parts))
	for _, part := range parts {
		value, err := decodeAlternative(part, caseInsensitive)
		if err != nil {
			return nil, false, err
		}
		values = append(values, value)
	}
	return values, caseInsensitive, nil
}

func decodeAlternative(raw string, caseInsensitive bool) (Value, error) {
	if raw == nullToken || (caseInsensitive && strings.EqualFold(raw, nullToken)) {
		return Null, nil
	}
	text, err := unescape(raw)
	if err != nil {
		return Value{}, err
	}
	return Literal(text), nil
}

// unescape resolves backslash escapes. A backslash before anything other than
// a reserved character or the word null is kept as is.
func unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, escapeChar) {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != escapeChar {
			b.WriteByte(c)
			continue
		}
		if i == len(raw)-1 {
			return "", errDanglingEscape
		}
		rest := raw[i+1:]
		switch {
		case isReserved(rest[0]):
			b.WriteByte(rest[0])
			i++
		case len(rest) >= len(nullToken) && strings.EqualFold(rest[:len(nullToken)], nullToken):
			b.WriteString(rest[:len(nullToken)])
			i += len(nullToken)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func escape(text string) string {
	if !strings.ContainsAny(text, constants.ReservedChars) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 4)
	for i := 0; i < len(text); i++ {
		if isReserved(text[i]) {
			b.WriteByte(escapeChar)
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func isReserved(c byte) bool {
	return strings.IndexByte(constants.ReservedChars, c) >= 0
}

// splitUnescaped splits s around every sep that is not preceded by an escape.
// Escapes are left in place for the caller to resolve.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeChar:
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
