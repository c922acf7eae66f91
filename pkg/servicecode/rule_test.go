package servicecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRuleSyntax(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want bool
	}{
		{name: "two placeholders", rule: "{a}-{b}", want: true},
		{name: "nested", rule: "{a{b}}", want: false},
		{name: "unmatched close", rule: "{a}-b}", want: false},
		{name: "empty placeholder", rule: "{}", want: false},
		{name: "empty rule", rule: "", want: true},
		{name: "literal only", rule: "HGMD Online", want: true},
		{name: "close before open", rule: "}a{", want: false},
		{name: "unbalanced count", rule: "{a", want: false},
		{name: "korean token", rule: "{서비스명}, {라이선스 기간}", want: true},
		{name: "blank inside braces", rule: "{ }", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckRuleSyntax(tt.rule))
		})
	}
}

func TestParseRule_Segments(t *testing.T) {
	rule, err := ParseRule("{service_name}, {라이선스 기간 } for {license_policy}")
	require.NoError(t, err)

	assert.Equal(t, []Segment{
		{Token: "service_name", IsToken: true},
		{Literal: ", "},
		{Token: "라이선스 기간", IsToken: true},
		{Literal: " for "},
		{Token: "license_policy", IsToken: true},
	}, rule.Segments())
	assert.Equal(t, []string{"service_name", "라이선스 기간", "license_policy"}, rule.Tokens())
}

func TestParseRule_LiteralBytesKept(t *testing.T) {
	rule, err := ParseRule("a\xffb {version}")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Literal: "a\xffb "},
		{Token: "version", IsToken: true},
	}, rule.Segments())
}

func TestParseRule_BlankToken(t *testing.T) {
	rule, err := ParseRule("x{ }y")
	require.NoError(t, err)
	assert.Equal(t, []string{" "}, rule.Tokens())

	gen, err := NewGenerator("x{ }y", "", nil)
	require.NoError(t, err)
	_, err = gen.Description(Values{})
	assert.EqualError(t, err, "missing variable { }")
}

func TestParseRule_TokensAreDistinct(t *testing.T) {
	rule, err := ParseRule("{a}{b}{a}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rule.Tokens())
}

func TestParseKindRule_Message(t *testing.T) {
	_, err := ParseKindRule(CodeRule, "{a{b}}")
	require.Error(t, err)

	var syntaxErr *RuleSyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, CodeRule, syntaxErr.Kind)
	assert.Equal(t, "nested placeholder", syntaxErr.Reason)
	assert.Equal(t, 2, syntaxErr.Offset)
	assert.Contains(t, err.Error(), "code rule format is invalid")

	_, err = ParseKindRule(DescriptionRule, "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description rule format is invalid")
}
