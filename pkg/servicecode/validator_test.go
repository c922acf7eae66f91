package servicecode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exome = Product{Name: "Exome", RepresentativeCode: "EX"}

func catalog() ProductIndex {
	return ProductIndex{exome.Name: exome}
}

func header() Row {
	return Row{No: DefaultHeaderLabel, ProductName: "서비스명", ServiceCode: "코드", Description: "설명", Price: "단가"}
}

func codesOf(report *Report) []ErrorCode {
	out := make([]ErrorCode, 0, len(report.Details))
	for _, d := range report.Details {
		out = append(out, d.Code)
	}
	return out
}

func TestValidate_StructuralChecks(t *testing.T) {
	rows := []Row{
		header(),
		{No: "1", ProductName: "Exome", ServiceCode: "EX-xp", Description: "Exome x p", Price: "1,000"},
		{No: "2", ProductName: "Genome", ServiceCode: "GE-1", Description: "Genome", Price: "10"},
		{No: "3", ProductName: "Exome", ServiceCode: "EX-xq", Description: "Panel x q", Price: "10"},
		{No: "4", ProductName: "Exome", ServiceCode: "EX-xp", Description: "Exome again", Price: "ten"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout})
	require.NoError(t, err)

	assert.Equal(t, Counts{Total: 4, Valid: 1, Invalid: 3}, report.Counts)
	assert.Equal(t, []string{"B3", "D4", "E5", "C5"}, report.Errors)
	assert.Equal(t, []ErrorCode{
		ErrCodeProductNotFound,
		ErrCodeProductNameMissing,
		ErrCodeInvalidPrice,
		ErrCodeDuplicateCode,
	}, codesOf(report))

	assert.True(t, report.Results[0].Skipped)
	assert.True(t, report.Results[1].Valid)
	assert.False(t, report.Results[2].Valid)
	assert.False(t, report.Meta["B3"].IsValid)
	assert.Equal(t, "product not found: Genome", report.Meta["B3"].ErrorMsg)
	assert.Equal(t, "code EX-xp already used on row 2", report.Meta["C5"].ErrorMsg)
	assert.True(t, report.HasErrors())
}

func TestValidate_CandidateChecks(t *testing.T) {
	rules := twoByTwoRules()
	rows := []Row{
		{No: "1", ProductName: "Exome", ServiceCode: "EX-xp", Description: "Exome x p", Price: "10"},
		{No: "2", ProductName: "Exome", ServiceCode: "EX-zz", Description: "Exome z z", Price: "10"},
		{No: "3", ProductName: "Exome", ServiceCode: "EX-yq", Description: "Exome y p", Price: "10"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, Rules: &rules})
	require.NoError(t, err)

	assert.Equal(t, Counts{Total: 3, Valid: 1, Invalid: 2}, report.Counts)
	assert.Equal(t, []string{"C2", "D3"}, report.Errors)
	assert.Equal(t, []ErrorCode{ErrCodeUnknownCode, ErrCodeDescriptionMismatch}, codesOf(report))
	assert.Equal(t, `description mismatch, expected "Exome y q"`, report.Meta["D3"].ErrorMsg)
}

func TestValidate_CandidateSetOverLimit(t *testing.T) {
	rules := twoByTwoRules()
	rows := []Row{
		{No: "1", ServiceCode: "EX-xp", Description: "Exome x p", Price: "10"},
	}
	product := exome

	_, err := Validate(context.Background(), rows, nil, Options{
		Layout:        ServiceLayout,
		Product:       &product,
		Rules:         &rules,
		MaxCandidates: 3,
	})
	assert.ErrorIs(t, err, ErrCandidateSetTooLarge)

	report, err := Validate(context.Background(), rows, nil, Options{
		Layout:        ServiceLayout,
		Product:       &product,
		Rules:         &rules,
		MaxCandidates: 4,
	})
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
}

func TestValidate_CancelledContext(t *testing.T) {
	codes := make([]string, 40)
	for i := range codes {
		codes[i] = fmt.Sprintf("c%02d", i)
	}
	rules := PolicyRules{
		DescRule:   "{service_name} {a}{b}{c}",
		CodeRule:   "{representative_code}-{a}{b}{c}",
		GroupCodes: GroupCodes{{Name: "a", Codes: codes}, {Name: "b", Codes: codes}, {Name: "c", Codes: codes}},
	}
	rows := []Row{{No: "1", ServiceCode: "EX-nope", Description: "Exome", Price: "10"}}
	product := exome
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Validate(ctx, rows, nil, Options{Layout: ServiceLayout, Product: &product, Rules: &rules})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate_MissingProductNameAlwaysInvalid(t *testing.T) {
	rules := twoByTwoRules()
	rules.DescRule = "{A} {B}"
	rows := []Row{
		{No: "1", ProductName: "Exome", ServiceCode: "EX-xp", Description: "x p", Price: "10"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, Rules: &rules})
	require.NoError(t, err)
	assert.Equal(t, []ErrorCode{ErrCodeProductNameMissing}, codesOf(report))
	assert.Equal(t, 1, report.Counts.Invalid)
}

func TestValidate_AmbiguousCode(t *testing.T) {
	rules := twoByTwoRules()
	rules.CodeRule = "{representative_code}-{A}"
	rows := []Row{
		{No: "1", ProductName: "Exome", ServiceCode: "EX-x", Description: "Exome x p", Price: "10"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, Rules: &rules})
	require.NoError(t, err)
	assert.Equal(t, []ErrorCode{ErrCodeAmbiguousCode}, codesOf(report))
	assert.Equal(t, []string{"C1"}, report.Errors)
}

func TestValidate_ServiceVariant(t *testing.T) {
	rules := twoByTwoRules()
	rows := []Row{
		{No: "1", ServiceCode: "EX-xp", Description: "Exome x p", IsBuyNow: true, Price: "10"},
		{No: "2", ServiceCode: "EX-xq", Description: "Exome x q", Price: ""},
		{No: "3", ServiceCode: "EX-nope", Description: "Exome", Price: "10"},
	}
	product := exome

	report, err := Validate(context.Background(), rows, nil, Options{
		Layout:         ServiceLayout,
		SkipIncomplete: true,
		Product:        &product,
		Rules:          &rules,
	})
	require.NoError(t, err)

	assert.Equal(t, Counts{Total: 2, Valid: 1, Invalid: 1}, report.Counts)
	assert.True(t, report.Results[1].Skipped)
	assert.Equal(t, []string{"B3"}, report.Errors)
	assert.Equal(t, "unknown code: EX-nope", report.Meta["B3"].ErrorMsg)
}

func TestValidate_StrictVariantKeepsIncompleteRows(t *testing.T) {
	rules := twoByTwoRules()
	product := exome
	rows := []Row{
		{No: "1", ServiceCode: "", Description: "Exome x p", Price: "10"},
	}

	report, err := Validate(context.Background(), rows, nil, Options{Layout: ServiceLayout, Product: &product, Rules: &rules})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 1, Valid: 0, Invalid: 1}, report.Counts)
	assert.Equal(t, []ErrorCode{ErrCodeUnknownCode}, codesOf(report))
}

func TestValidate_OptionKeywords(t *testing.T) {
	rows := []Row{
		{No: "1", ProductName: "Exome", ServiceCode: "EX-1", Description: "Exome Academic 1Year", Price: "10"},
		{No: "2", ProductName: "Exome", ServiceCode: "EX-2", Description: "Exome Academic", Price: "10"},
	}
	info := map[string]map[string]string{
		"1": {"license_policy": "Academic", "license_duration": "1Year"},
		"2": {"license_policy": "Academic", "license_duration": "2Year"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, RowOptions: info})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 2, Valid: 1, Invalid: 1}, report.Counts)
	assert.Equal(t, []ErrorCode{ErrCodeOptionMissing}, codesOf(report))
	assert.Equal(t, []string{"D2"}, report.Errors)
}

func TestValidate_CustomHeaderLabel(t *testing.T) {
	rows := []Row{
		{No: "No.", ProductName: "Product"},
		{No: "1", ProductName: "Exome", ServiceCode: "EX-1", Description: "Exome", Price: "10"},
	}

	report, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, HeaderLabel: "No."})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 1, Valid: 1}, report.Counts)
}

func TestValidate_RuleLevelFailure(t *testing.T) {
	rules := twoByTwoRules()
	rules.DescRule = "{service_name} {seats}"
	rows := []Row{
		{No: "1", ProductName: "Exome", ServiceCode: "EX-xp", Description: "Exome", Price: "10"},
	}

	_, err := Validate(context.Background(), rows, catalog(), Options{Layout: BatchLayout, Rules: &rules})
	var missing *MissingVariableError
	assert.True(t, errors.As(err, &missing))
}

func TestParsePrice(t *testing.T) {
	price, err := ParsePrice("1,250,000")
	require.NoError(t, err)
	assert.Equal(t, "1250000", price.String())

	price, err = ParsePrice("₩ 99.50")
	require.NoError(t, err)
	assert.Equal(t, "99.5", price.String())

	price, err = ParsePrice("")
	require.NoError(t, err)
	assert.True(t, price.IsZero())

	_, err = ParsePrice("free")
	assert.Error(t, err)
}

func TestRowsFromTable(t *testing.T) {
	table := [][]any{
		{float64(1), "EX-xp", " Exome x p ", true, float64(1000)},
		{"2", "EX-xq"},
	}
	rows := RowsFromTable(table, ServiceLayout)

	assert.Equal(t, []Row{
		{No: "1", ServiceCode: "EX-xp", Description: "Exome x p", IsBuyNow: true, Price: "1000"},
		{No: "2", ServiceCode: "EX-xq"},
	}, rows)

	assert.Equal(t, []any{"1", "EX-xp", "Exome x p", true, "1000"}, ServiceLayout.Table(rows)[0])
	assert.Equal(t, "C12", Cell(3, 12))
}
