// Package spreadsheet reads policy upload workbooks and writes price option
// exports.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"myinco-admin-be/pkg/servicecode"

	"github.com/xuri/excelize/v2"
)

const (
	RuleSheet    = "system-rule"
	VersionSheet = "version"

	LabelDescRule   = "콘텐츠 설명 규칙"
	LabelCodeRule   = "코드 생성 규칙"
	LabelTransforms = "코드 변환 규칙"

	ColumnNo                 = "번호"
	ColumnServiceName        = "서비스명"
	ColumnServiceCode        = "서비스 코드(함수적용)"
	ColumnRepresentativeCode = "대표코드"
	ColumnPrice              = "단가"
	ColumnDescription        = "콘텐츠 설명"
)

var (
	ErrMissingSheet  = errors.New("workbook sheet not found")
	ErrMissingColumn = errors.New("workbook column not found")
	ErrMissingRule   = errors.New("workbook rule not found")
)

// Rule is the RULE block of an upload.
type Rule struct {
	DescRule   string                    `json:"desc_rule"`
	CodeRule   string                    `json:"code_rule"`
	Transforms servicecode.TransformSpec `json:"transforms,omitempty"`
}

// Workbook is the parsed form of a policy upload. It doubles as the meta
// payload (RULE, CODE, INFO) of the batch endpoints.
type Workbook struct {
	Rule Rule                         `json:"RULE"`
	Code servicecode.GroupCodes       `json:"CODE"`
	Info map[string]map[string]string `json:"INFO"`
	Rows []servicecode.Row            `json:"rows"`

	// RepresentativeCodes is the 대표코드 cell of each row keyed by row no.
	RepresentativeCodes map[string]string `json:"-"`
}

// PolicyRules binds the workbook rules to a policy version.
func (w *Workbook) PolicyRules(version string) servicecode.PolicyRules {
	return servicecode.PolicyRules{
		Version:    version,
		DescRule:   w.Rule.DescRule,
		CodeRule:   w.Rule.CodeRule,
		Transforms: w.Rule.Transforms,
		GroupCodes: w.Code,
	}
}

// Read parses an uploaded workbook.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

// ReadFile parses a workbook on disk.
func ReadFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*Workbook, error) {
	rule, err := readRule(f)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{
		Rule:                *rule,
		Info:                map[string]map[string]string{},
		RepresentativeCodes: map[string]string{},
	}
	if err := readVersion(f, wb); err != nil {
		return nil, err
	}
	return wb, nil
}

func readRule(f *excelize.File) (*Rule, error) {
	if idx, err := f.GetSheetIndex(RuleSheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, RuleSheet)
	}
	rows, err := f.GetRows(RuleSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", RuleSheet, err)
	}

	labels := map[string]string{}
	for _, row := range rows {
		label := strings.TrimSpace(at(row, 0))
		if label == "" {
			continue
		}
		labels[label] = strings.TrimSpace(at(row, 1))
	}

	rule := &Rule{}
	var ok bool
	if rule.DescRule, ok = labels[LabelDescRule]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRule, LabelDescRule)
	}
	if rule.CodeRule, ok = labels[LabelCodeRule]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRule, LabelCodeRule)
	}
	if text := labels[LabelTransforms]; text != "" {
		spec, err := servicecode.ParseTransformSpec(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", LabelTransforms, err)
		}
		rule.Transforms = spec
	}
	return rule, nil
}

func readVersion(f *excelize.File, wb *Workbook) error {
	if idx, err := f.GetSheetIndex(VersionSheet); err != nil || idx < 0 {
		return fmt.Errorf("%w: %s", ErrMissingSheet, VersionSheet)
	}
	rows, err := f.GetRows(VersionSheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", VersionSheet, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s header", ErrMissingColumn, VersionSheet)
	}

	header := rows[0]
	col := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	for _, name := range []string{ColumnNo, ColumnServiceName, ColumnServiceCode, ColumnRepresentativeCode, ColumnPrice, ColumnDescription} {
		if _, ok := col[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	start, end := col[ColumnRepresentativeCode], col[ColumnPrice]
	var groupCols []int
	for i := start + 1; i < end; i++ {
		groupCols = append(groupCols, i)
	}

	seen := make([]map[string]struct{}, len(groupCols))
	wb.Code = make(servicecode.GroupCodes, len(groupCols))
	for g, i := range groupCols {
		wb.Code[g] = servicecode.GroupCode{Name: strings.TrimSpace(header[i]), Codes: []string{}}
		seen[g] = map[string]struct{}{}
	}

	for _, record := range rows[1:] {
		if blank(record) {
			continue
		}
		no := strings.TrimSpace(at(record, col[ColumnNo]))
		wb.Rows = append(wb.Rows, servicecode.Row{
			No:          no,
			ProductName: strings.TrimSpace(at(record, col[ColumnServiceName])),
			ServiceCode: strings.TrimSpace(at(record, col[ColumnServiceCode])),
			Description: strings.TrimSpace(at(record, col[ColumnDescription])),
			Price:       strings.TrimSpace(at(record, col[ColumnPrice])),
		})
		wb.RepresentativeCodes[no] = strings.TrimSpace(at(record, start))

		options := make(map[string]string, len(groupCols))
		for g, i := range groupCols {
			value := strings.TrimSpace(at(record, i))
			options[wb.Code[g].Name] = value
			if value == "" {
				continue
			}
			if _, ok := seen[g][value]; !ok {
				seen[g][value] = struct{}{}
				wb.Code[g].Codes = append(wb.Code[g].Codes, value)
			}
		}
		wb.Info[no] = options
	}
	return nil
}

// WriteTo renders the workbook in the upload layout.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RuleSheet); err != nil {
		return 0, err
	}
	ruleRows := [][]any{
		{LabelDescRule, w.Rule.DescRule},
		{LabelCodeRule, w.Rule.CodeRule},
	}
	if len(w.Rule.Transforms) > 0 {
		ruleRows = append(ruleRows, []any{LabelTransforms, w.Rule.Transforms.String()})
	}
	if err := writeRows(f, RuleSheet, ruleRows); err != nil {
		return 0, err
	}

	if _, err := f.NewSheet(VersionSheet); err != nil {
		return 0, err
	}
	header := []any{ColumnNo, ColumnServiceName, ColumnServiceCode, ColumnRepresentativeCode}
	for _, name := range w.Code.Names() {
		header = append(header, name)
	}
	header = append(header, ColumnPrice, ColumnDescription)

	table := [][]any{header}
	for _, row := range w.Rows {
		record := []any{row.No, row.ProductName, row.ServiceCode, w.RepresentativeCodes[row.No]}
		for _, name := range w.Code.Names() {
			record = append(record, w.Info[row.No][name])
		}
		record = append(record, row.Price, row.Description)
		table = append(table, record)
	}
	if err := writeRows(f, VersionSheet, table); err != nil {
		return 0, err
	}
	return f.WriteTo(out)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, record := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func at(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
