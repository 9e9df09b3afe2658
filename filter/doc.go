// Package filter compiles compact filter strings into predicates over
// in-memory entities.
//
// A filter is a comma-separated list of terms, all of which must hold:
//
//	Text|Author@=*null,Id!=7
//
// A term is one or more property names separated by '|', an operator and a
// value. The operators are == != @= !@= _= !_= _-= !_-= (equals, contains,
// starts with, ends with and their negations). A value starting with '*' is
// matched case-insensitively, and '|' in the value separates alternatives.
//
// The bare value null matches a property with no value; \null matches the
// text "null". Any of , | = ! @ _ - * \ is taken literally when preceded by a
// backslash.
package filter
