package main

import (
	"context"

	"myinco-admin-be/pkg/admin/policy"
	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"
)

// workbookProducts trusts the 대표코드 column of the workbook, since there is
// no catalog to resolve product names against offline.
func workbookProducts(wb *spreadsheet.Workbook) servicecode.ProductIndex {
	index := servicecode.ProductIndex{}
	for _, row := range wb.Rows {
		if row.ProductName == "" {
			continue
		}
		if _, ok := index[row.ProductName]; ok {
			continue
		}
		index[row.ProductName] = servicecode.Product{
			Name:               row.ProductName,
			RepresentativeCode: wb.RepresentativeCodes[row.No],
		}
	}
	return index
}

func checkWorkbook(ctx context.Context, wb *spreadsheet.Workbook, version, headerLabel string, maxCandidates int) (*servicecode.Report, error) {
	if err := policy.CheckRules(wb.Rule.DescRule, wb.Rule.CodeRule, wb.Rule.Transforms); err != nil {
		return nil, err
	}
	opts := servicecode.Options{
		Layout:        servicecode.BatchLayout,
		HeaderLabel:   headerLabel,
		RowOptions:    wb.Info,
		MaxCandidates: maxCandidates,
	}
	if len(wb.Rule.Transforms) > 0 {
		rules := wb.PolicyRules(version)
		opts.Rules = &rules
	}
	return servicecode.Validate(ctx, wb.Rows, workbookProducts(wb), opts)
}
