package servicecode

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var ErrUnknownTransform = errors.New("unknown transform")

// Transform rewrites a raw option value before it is inserted into a code.
type Transform func(string) string

// TransformSpec maps a code rule token to a transform pipeline such as
// "upper_digits" or "strip_space|prefix:2".
type TransformSpec map[string]string

func identity(s string) string { return s }

func keepRunes(keep func(rune) bool) Transform {
	return func(s string) string {
		var b strings.Builder
		for _, r := range s {
			if keep(r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
}

var simpleTransforms = map[string]Transform{
	"":             identity,
	"raw":          identity,
	"upper":        keepRunes(unicode.IsUpper),
	"digits":       keepRunes(unicode.IsDigit),
	"upper_digits": keepRunes(func(r rune) bool { return unicode.IsUpper(r) || unicode.IsDigit(r) }),
	"strip_space":  keepRunes(func(r rune) bool { return !unicode.IsSpace(r) }),
}

// ParseTransform compiles a `|` separated pipeline.
func ParseTransform(expr string) (Transform, error) {
	steps := strings.Split(expr, "|")
	fns := make([]Transform, 0, len(steps))
	for _, step := range steps {
		fn, err := parseStep(strings.TrimSpace(step))
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	if len(fns) == 1 {
		return fns[0], nil
	}
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}, nil
}

func parseStep(step string) (Transform, error) {
	if fn, ok := simpleTransforms[step]; ok {
		return fn, nil
	}

	name, arg, ok := strings.Cut(step, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, step)
	}

	switch name {
	case "prefix", "suffix":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q needs a non-negative width", ErrUnknownTransform, step)
		}
		if name == "prefix" {
			return func(s string) string {
				runes := []rune(s)
				if len(runes) <= n {
					return s
				}
				return string(runes[:n])
			}, nil
		}
		return func(s string) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[len(runes)-n:])
		}, nil
	case "trim_prefix":
		return func(s string) string { return strings.TrimPrefix(s, arg) }, nil
	case "trim_suffix":
		return func(s string) string { return strings.TrimSuffix(s, arg) }, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, step)
}

// Compile parses every pipeline of the spec. Reserved aliases are keyed by
// their reserved name, so {버전} and {version} share one transform.
func (s TransformSpec) Compile() (map[string]Transform, error) {
	compiled := make(map[string]Transform, len(s))
	for token, expr := range s {
		fn, err := ParseTransform(expr)
		if err != nil {
			return nil, fmt.Errorf("transform for {%s}: %w", token, err)
		}
		key := canonicalToken(strings.TrimSpace(token))
		if _, dup := compiled[key]; dup {
			return nil, fmt.Errorf("%w: more than one transform for {%s}", ErrUnknownTransform, key)
		}
		compiled[key] = fn
	}
	return compiled, nil
}

// ParseTransformSpec reads the spreadsheet form "token=pipeline; token=pipeline".
func ParseTransformSpec(text string) (TransformSpec, error) {
	spec := TransformSpec{}
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		token, expr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not token=pipeline", ErrUnknownTransform, part)
		}
		token = strings.Trim(strings.TrimSpace(token), "{}")
		spec[strings.TrimSpace(token)] = strings.TrimSpace(expr)
	}
	if _, err := spec.Compile(); err != nil {
		return nil, err
	}
	return spec, nil
}

// String renders the spec in the spreadsheet form with tokens sorted.
func (s TransformSpec) String() string {
	tokens := make([]string, 0, len(s))
	for token := range s {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		parts = append(parts, token+"="+s[token])
	}
	return strings.Join(parts, "; ")
}
