// Package audit computes field level diffs of admin entities and carries them
// to the system log.
package audit

import (
	"strconv"
	"time"
)

// Change is one changed field. After is serialized as "value".
type Change struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"value"`
}

// Field describes how one field of T is rendered and compared.
type Field[T any] struct {
	Name  string
	Value func(T) string
	// Equal overrides the rendered-text comparison.
	Equal func(before, after T) bool
}

// Text declares a string field.
func Text[T any](name string, get func(T) string) Field[T] {
	return Field[T]{Name: name, Value: get}
}

// Flag declares a boolean field.
func Flag[T any](name string, get func(T) bool) Field[T] {
	return Field[T]{Name: name, Value: func(v T) string { return strconv.FormatBool(get(v)) }}
}

// Number declares an integer field.
func Number[T any](name string, get func(T) int) Field[T] {
	return Field[T]{Name: name, Value: func(v T) string { return strconv.Itoa(get(v)) }}
}

// Timestamp declares a time field rendered as RFC 3339 and compared with
// time.Time.Equal.
func Timestamp[T any](name string, get func(T) time.Time) Field[T] {
	return Field[T]{
		Name: name,
		Value: func(v T) string {
			t := get(v)
			if t.IsZero() {
				return ""
			}
			return t.Format(time.RFC3339)
		},
		Equal: func(a, b T) bool { return get(a).Equal(get(b)) },
	}
}

// Schema is the explicit audit description of an entity type.
type Schema[T any] struct {
	Model   string
	fields  []Field[T]
	exclude map[string]struct{}
}

// NewSchema declares the audited fields of model in output order.
func NewSchema[T any](model string, fields ...Field[T]) *Schema[T] {
	return &Schema[T]{Model: model, fields: fields, exclude: map[string]struct{}{}}
}

// Excluding returns a copy of s that never reports the named fields.
func (s *Schema[T]) Excluding(names ...string) *Schema[T] {
	out := &Schema[T]{Model: s.Model, fields: s.fields, exclude: make(map[string]struct{}, len(s.exclude)+len(names))}
	for name := range s.exclude {
		out.exclude[name] = struct{}{}
	}
	for _, name := range names {
		out.exclude[name] = struct{}{}
	}
	return out
}

// Fields lists the reported field names.
func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if _, skip := s.exclude[f.Name]; !skip {
			names = append(names, f.Name)
		}
	}
	return names
}

// Diff lists the non-excluded fields whose value differs.
func (s *Schema[T]) Diff(before, after T) []Change {
	changes := []Change{}
	for _, f := range s.fields {
		if _, skip := s.exclude[f.Name]; skip {
			continue
		}
		b, a := f.Value(before), f.Value(after)
		equal := b == a
		if f.Equal != nil {
			equal = f.Equal(before, after)
		}
		if !equal {
			changes = append(changes, Change{Field: f.Name, Before: b, After: a})
		}
	}
	return changes
}

// Snapshot reports every non-excluded, non-empty field of a created entity.
func (s *Schema[T]) Snapshot(v T) []Change {
	changes := []Change{}
	for _, f := range s.fields {
		if _, skip := s.exclude[f.Name]; skip {
			continue
		}
		if value := f.Value(v); value != "" {
			changes = append(changes, Change{Field: f.Name, After: value})
		}
	}
	return changes
}
