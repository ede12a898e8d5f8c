// Package validation carries per-field validation failures as data.
//
// Operations that validate user input return a Result: either Ok(value) or
// Fail(errors) where errors maps a field name to its messages. Validation
// failures are never reported through panics or sentinel errors.
package validation

import (
	"sort"
	"strings"
)

// Errors maps a field name to human-readable messages for that field.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge copies every message of other into e.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// First returns the first message recorded for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields lists the failing fields in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Error lets Errors travel as an error where a caller needs one (for
// example a local check that short-circuits a network call).
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, strings.Join(e[f], " "))
	}
	return strings.Join(parts, " ")
}

// Result is either a value or a set of field errors.
type Result[T any] struct {
	value T
	errs  Errors
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail builds a failed Result. An empty errs map is still a failure.
func Fail[T any](errs Errors) Result[T] {
	if errs == nil {
		errs = Errors{}
	}
	return Result[T]{errs: errs}
}

func (r Result[T]) IsOk() bool {
	return r.errs == nil
}

// Value returns the success value; it is the zero value for failures.
func (r Result[T]) Value() T {
	return r.value
}

// Errors returns the field errors; nil for successes.
func (r Result[T]) Errors() Errors {
	return r.errs
}
