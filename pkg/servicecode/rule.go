// Package servicecode builds and checks license service codes and service
// descriptions from `{token}` rule templates.
package servicecode

import (
	"fmt"
	"strings"
)

// RuleKind tells which of the two policy rules a template belongs to.
type RuleKind string

const (
	DescriptionRule RuleKind = "desc_rule"
	CodeRule        RuleKind = "code_rule"
)

// Message is the fixed user-facing message reported for an invalid rule.
func (k RuleKind) Message() string {
	if k == CodeRule {
		return "code rule format is invalid"
	}
	return "description rule format is invalid"
}

// RuleSyntaxError reports an unbalanced, nested or empty placeholder.
type RuleSyntaxError struct {
	Kind   RuleKind
	Rule   string
	Offset int
	Reason string
}

func (e *RuleSyntaxError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("rule syntax error at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s (offset %d: %s)", e.Kind.Message(), e.Offset, e.Reason)
}

// Segment is either a literal run of text or a placeholder token.
type Segment struct {
	Literal string
	Token   string
	IsToken bool
}

// Rule is a parsed template.
type Rule struct {
	raw      string
	segments []Segment
}

// CheckRuleSyntax reports whether every `{...}` placeholder in rule is
// balanced, non-nested and non-empty.
func CheckRuleSyntax(rule string) bool {
	_, err := ParseRule(rule)
	return err == nil
}

// ParseRule splits rule into literal and token segments. Literal text is
// copied byte for byte. Token names are trimmed unless they are all blank.
func ParseRule(rule string) (*Rule, error) {
	if strings.Count(rule, "{") != strings.Count(rule, "}") {
		return nil, &RuleSyntaxError{Rule: rule, Offset: len(rule), Reason: "unbalanced braces"}
	}

	var (
		segments []Segment
		start    int
		open     = -1
	)

	// Braces are ASCII, so byte offsets never split a multi-byte rune.
	for i := 0; i < len(rule); i++ {
		switch rule[i] {
		case '{':
			if open >= 0 {
				return nil, &RuleSyntaxError{Rule: rule, Offset: i, Reason: "nested placeholder"}
			}
			if i > start {
				segments = append(segments, Segment{Literal: rule[start:i]})
			}
			open = i
		case '}':
			if open < 0 {
				return nil, &RuleSyntaxError{Rule: rule, Offset: i, Reason: "closing brace without placeholder"}
			}
			raw := rule[open+1 : i]
			if raw == "" {
				return nil, &RuleSyntaxError{Rule: rule, Offset: open, Reason: "empty placeholder"}
			}
			name := strings.TrimSpace(raw)
			if name == "" {
				name = raw
			}
			segments = append(segments, Segment{Token: name, IsToken: true})
			open = -1
			start = i + 1
		}
	}

	if start < len(rule) {
		segments = append(segments, Segment{Literal: rule[start:]})
	}

	return &Rule{raw: rule, segments: segments}, nil
}

// ParseKindRule parses rule and tags a syntax error with kind so callers get
// the user-facing message for that rule.
func ParseKindRule(kind RuleKind, rule string) (*Rule, error) {
	parsed, err := ParseRule(rule)
	if err != nil {
		if syntaxErr, ok := err.(*RuleSyntaxError); ok {
			syntaxErr.Kind = kind
		}
		return nil, err
	}
	return parsed, nil
}

func (r *Rule) String() string {
	return r.raw
}

// Segments returns the parsed segments in template order.
func (r *Rule) Segments() []Segment {
	return r.segments
}

// Tokens returns the distinct token names in first-use order.
func (r *Rule) Tokens() []string {
	seen := make(map[string]struct{}, len(r.segments))
	tokens := make([]string, 0, len(r.segments))
	for _, seg := range r.segments {
		if !seg.IsToken {
			continue
		}
		if _, ok := seen[seg.Token]; ok {
			continue
		}
		seen[seg.Token] = struct{}{}
		tokens = append(tokens, seg.Token)
	}
	return tokens
}
