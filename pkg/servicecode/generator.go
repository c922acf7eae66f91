package servicecode

import (
	"fmt"
	"strings"
)

// Reserved token names. Every other token is the name of a policy group code.
const (
	TokenServiceName        = "service_name"
	TokenRepresentativeCode = "representative_code"
	TokenVersion            = "version"
)

var reservedAliases = map[string]string{
	TokenServiceName:        TokenServiceName,
	"product_name":          TokenServiceName,
	"서비스명":                  TokenServiceName,
	TokenRepresentativeCode: TokenRepresentativeCode,
	"대표코드":                  TokenRepresentativeCode,
	"대표 코드":                 TokenRepresentativeCode,
	TokenVersion:            TokenVersion,
	"버전":                    TokenVersion,
}

// canonicalToken maps a reserved alias onto its reserved name and returns any
// other token unchanged.
func canonicalToken(token string) string {
	if canonical, ok := reservedAliases[token]; ok {
		return canonical
	}
	return token
}

// IsReservedToken reports whether token names the service, its representative
// code or the policy version.
func IsReservedToken(token string) bool {
	_, ok := reservedAliases[token]
	return ok
}

// MissingVariableError is returned when a placeholder has no value.
type MissingVariableError struct {
	Token string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variable {%s}", e.Token)
}

// Values holds the raw value of every token for one generated line.
type Values map[string]string

// NewValues seeds the reserved tokens from a product and policy version.
func NewValues(product Product, version string) Values {
	return Values{
		TokenServiceName:        product.Name,
		TokenRepresentativeCode: product.RepresentativeCode,
		TokenVersion:            version,
	}
}

// Lookup resolves token directly, then through the reserved aliases.
func (v Values) Lookup(token string) (string, bool) {
	if value, ok := v[token]; ok {
		return value, true
	}
	if canonical, ok := reservedAliases[token]; ok {
		value, ok := v[canonical]
		return value, ok
	}
	return "", false
}

// With returns a copy of v extended by extra.
func (v Values) With(extra map[string]string) Values {
	out := make(Values, len(v)+len(extra))
	for k, val := range v {
		out[k] = val
	}
	for k, val := range extra {
		out[k] = val
	}
	return out
}

// Generator renders descriptions and codes from a policy's two rules.
type Generator struct {
	desc       *Rule
	code       *Rule
	transforms map[string]Transform
}

// NewGenerator parses both rules and compiles the code transform spec.
func NewGenerator(descRule, codeRule string, spec TransformSpec) (*Generator, error) {
	desc, err := ParseKindRule(DescriptionRule, descRule)
	if err != nil {
		return nil, err
	}
	code, err := ParseKindRule(CodeRule, codeRule)
	if err != nil {
		return nil, err
	}
	transforms, err := spec.Compile()
	if err != nil {
		return nil, err
	}
	return &Generator{desc: desc, code: code, transforms: transforms}, nil
}

// Description substitutes every token verbatim.
func (g *Generator) Description(values Values) (string, error) {
	return render(g.desc, values, nil)
}

// Code substitutes every token after running its declared transform.
func (g *Generator) Code(values Values) (string, error) {
	return render(g.code, values, g.transforms)
}

// Tokens returns the tokens used by either rule, description rule first.
func (g *Generator) Tokens() []string {
	seen := map[string]struct{}{}
	var tokens []string
	for _, rule := range []*Rule{g.desc, g.code} {
		for _, token := range rule.Tokens() {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func render(rule *Rule, values Values, transforms map[string]Transform) (string, error) {
	var b strings.Builder
	for _, seg := range rule.segments {
		if !seg.IsToken {
			b.WriteString(seg.Literal)
			continue
		}
		value, ok := values.Lookup(seg.Token)
		if !ok {
			return "", &MissingVariableError{Token: seg.Token}
		}
		if fn, ok := transforms[canonicalToken(seg.Token)]; ok {
			value = fn(value)
		}
		b.WriteString(value)
	}
	return b.String(), nil
}
