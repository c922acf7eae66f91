package servicecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	licenseDescRule = "{service_name}, {license_type}, {user_count} for {license_policy}"
	licenseCodeRule = "{representative_code}-{license_policy}{license_type}{user_count}-{license_duration}-{version}"
)

var licenseTransforms = TransformSpec{
	"license_policy":   "upper",
	"license_type":     "upper",
	"user_count":       "upper_digits",
	"license_duration": "upper_digits",
	"version":          "trim_prefix:v",
}

func TestGenerator_Description(t *testing.T) {
	gen, err := NewGenerator(licenseDescRule, licenseCodeRule, licenseTransforms)
	require.NoError(t, err)

	values := NewValues(Product{Name: "HGMD Online", RepresentativeCode: "ISG-BBHO"}, "v21.1").With(map[string]string{
		"license_type":     "Clinical use",
		"user_count":       "10Users",
		"license_policy":   "Academic",
		"license_duration": "1Year",
	})

	desc, err := gen.Description(values)
	require.NoError(t, err)
	assert.Equal(t, "HGMD Online, Clinical use, 10Users for Academic", desc)

	code, err := gen.Code(values)
	require.NoError(t, err)
	assert.Equal(t, "ISG-BBHO-AC10U-1Y-21.1", code)
}

func TestGenerator_LiteralTextPreserved(t *testing.T) {
	gen, err := NewGenerator("가격, {a} (한정), 끝", "{a}", nil)
	require.NoError(t, err)

	desc, err := gen.Description(Values{"a": "x,y"})
	require.NoError(t, err)
	assert.Equal(t, "가격, x,y (한정), 끝", desc)
}

func TestGenerator_ReservedAliases(t *testing.T) {
	gen, err := NewGenerator("{서비스명} {버전}", "{대표코드}", nil)
	require.NoError(t, err)

	values := NewValues(Product{Name: "Exome", RepresentativeCode: "EX-01"}, "2024")
	desc, err := gen.Description(values)
	require.NoError(t, err)
	assert.Equal(t, "Exome 2024", desc)

	code, err := gen.Code(values)
	require.NoError(t, err)
	assert.Equal(t, "EX-01", code)
}

func TestGenerator_TransformThroughAlias(t *testing.T) {
	values := NewValues(Product{Name: "HGMD Online", RepresentativeCode: "ISG-BBHO"}, "v21.1")

	tests := []struct {
		name       string
		codeRule   string
		transforms TransformSpec
	}{
		{name: "alias in rule", codeRule: "{대표코드}-{버전}", transforms: TransformSpec{"version": "trim_prefix:v"}},
		{name: "alias in schema", codeRule: "{representative_code}-{version}", transforms: TransformSpec{"버전": "trim_prefix:v"}},
		{name: "alias in both", codeRule: "{대표코드}-{버전}", transforms: TransformSpec{"버전": "trim_prefix:v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator("{service_name}", tt.codeRule, tt.transforms)
			require.NoError(t, err)
			code, err := gen.Code(values)
			require.NoError(t, err)
			assert.Equal(t, "ISG-BBHO-21.1", code)
		})
	}

	_, err := TransformSpec{"version": "trim_prefix:v", "버전": "raw"}.Compile()
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

func TestGenerator_MissingVariable(t *testing.T) {
	gen, err := NewGenerator("{service_name} {seats}", "", nil)
	require.NoError(t, err)

	_, err = gen.Description(NewValues(Product{Name: "Exome"}, ""))
	var missing *MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "seats", missing.Token)
	assert.Equal(t, "missing variable {seats}", err.Error())
}

func TestGenerator_InvalidRules(t *testing.T) {
	_, err := NewGenerator("{a", "{b}", nil)
	assert.ErrorContains(t, err, "description rule format is invalid")

	_, err = NewGenerator("{a}", "{b}}", nil)
	assert.ErrorContains(t, err, "code rule format is invalid")

	_, err = NewGenerator("{a}", "{b}", TransformSpec{"b": "lower"})
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		expr  string
		input string
		want  string
	}{
		{expr: "raw", input: "Clinical use", want: "Clinical use"},
		{expr: "", input: "as is", want: "as is"},
		{expr: "upper", input: "Clinical use", want: "C"},
		{expr: "digits", input: "10Users", want: "10"},
		{expr: "upper_digits", input: "10Users", want: "10U"},
		{expr: "strip_space", input: " 1 Year ", want: "1Year"},
		{expr: "prefix:2", input: "Academic", want: "Ac"},
		{expr: "prefix:20", input: "short", want: "short"},
		{expr: "suffix:2", input: "v21.1", want: ".1"},
		{expr: "suffix:2", input: "한국어", want: "국어"},
		{expr: "trim_prefix:v", input: "v21.1", want: "21.1"},
		{expr: "trim_suffix:Users", input: "10Users", want: "10"},
		{expr: "strip_space|upper_digits", input: "1 Year Plan", want: "1YP"},
		{expr: "trim_prefix:v | prefix:2", input: "v21.1", want: "21"},
	}

	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.input, func(t *testing.T) {
			fn, err := ParseTransform(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn(tt.input))
		})
	}
}

func TestParseTransform_Unknown(t *testing.T) {
	for _, expr := range []string{"lower", "prefix:x", "prefix:-1", "upper|nope"} {
		_, err := ParseTransform(expr)
		assert.ErrorIs(t, err, ErrUnknownTransform, expr)
	}
}

func TestParseTransformSpec(t *testing.T) {
	spec, err := ParseTransformSpec("{license_policy}=upper; user_count = upper_digits ;; version=trim_prefix:v")
	require.NoError(t, err)
	assert.Equal(t, TransformSpec{
		"license_policy": "upper",
		"user_count":     "upper_digits",
		"version":        "trim_prefix:v",
	}, spec)
	assert.Equal(t, "license_policy=upper; user_count=upper_digits; version=trim_prefix:v", spec.String())

	_, err = ParseTransformSpec("license_policy")
	assert.ErrorIs(t, err, ErrUnknownTransform)
}
