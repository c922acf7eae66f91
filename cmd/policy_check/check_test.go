package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hgmdWorkbook() *spreadsheet.Workbook {
	return &spreadsheet.Workbook{
		Rule: spreadsheet.Rule{
			DescRule:   "{service_name}, {license_type} for {license_policy}",
			CodeRule:   "{representative_code}-{license_policy}{license_type}-{version}",
			Transforms: servicecode.TransformSpec{"license_policy": "upper", "license_type": "upper", "version": "trim_prefix:v"},
		},
		Code: servicecode.GroupCodes{
			{Name: "license_type", Codes: []string{"Clinical use", "Research use"}},
			{Name: "license_policy", Codes: []string{"Academic"}},
		},
		Info: map[string]map[string]string{
			"1": {"license_type": "Clinical use", "license_policy": "Academic"},
			"2": {"license_type": "Research use", "license_policy": "Academic"},
		},
		Rows: []servicecode.Row{
			{No: "1", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AC-21.1", Description: "HGMD Online, Clinical use for Academic", Price: "1000"},
			{No: "2", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AR-21.1", Description: "HGMD Online, Research use for Academic", Price: "2000"},
		},
		RepresentativeCodes: map[string]string{"1": "ISG-BBHO", "2": "ISG-BBHO"},
	}
}

func TestCheckWorkbook(t *testing.T) {
	t.Run("valid upload", func(t *testing.T) {
		report, err := checkWorkbook(context.Background(), hgmdWorkbook(), "v21.1", "", 0)
		require.NoError(t, err)
		assert.False(t, report.HasErrors())
		assert.Equal(t, 2, report.Counts.Valid)
	})

	t.Run("wrong code is reported", func(t *testing.T) {
		wb := hgmdWorkbook()
		wb.Rows[1].ServiceCode = "ISG-BBHO-XX-21.1"
		report, err := checkWorkbook(context.Background(), wb, "v21.1", "", 0)
		require.NoError(t, err)
		assert.True(t, report.HasErrors())
		assert.Contains(t, report.Errors, "C2")
	})

	t.Run("malformed rule", func(t *testing.T) {
		wb := hgmdWorkbook()
		wb.Rule.CodeRule = "{representative_code"
		_, err := checkWorkbook(context.Background(), wb, "v21.1", "", 0)
		var syntaxErr *servicecode.RuleSyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
	})
}

func TestCheckWorkbook_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	_, err = hgmdWorkbook().WriteTo(out)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	wb, err := spreadsheet.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ISG-BBHO", workbookProducts(wb)["HGMD Online"].RepresentativeCode)

	report, err := checkWorkbook(context.Background(), wb, "v21.1", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Counts.Invalid)
}
