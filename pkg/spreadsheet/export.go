package spreadsheet

import (
	"fmt"
	"io"

	"myinco-admin-be/pkg/servicecode"

	"github.com/xuri/excelize/v2"
)

const OptionSheet = "options"

// OptionHeader is the first row of a price option export.
var OptionHeader = []any{servicecode.DefaultHeaderLabel, "생성 코드", "서비스 설명", "즉시 구매", "단가(₩)"}

// WriteOptions writes rows in the service layout, numbering them from 1.
// The result can be edited and uploaded back to the service verify endpoint.
func WriteOptions(out io.Writer, rows []servicecode.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OptionSheet); err != nil {
		return err
	}

	table := [][]any{OptionHeader}
	for i, row := range rows {
		price, err := servicecode.ParsePrice(row.Price)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		buyNow := "N"
		if row.IsBuyNow {
			buyNow = "Y"
		}
		table = append(table, []any{i + 1, row.ServiceCode, row.Description, buyNow, price.InexactFloat64()})
	}
	if err := writeRows(f, OptionSheet, table); err != nil {
		return err
	}
	if err := f.SetColWidth(OptionSheet, "B", "C", 40); err != nil {
		return err
	}

	_, err := f.WriteTo(out)
	return err
}

// ReadOptions parses a sheet written by WriteOptions back into rows. The
// header row is kept so the validator can skip it.
func ReadOptions(r io.Reader) ([]servicecode.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}

	table := make([][]any, 0, len(records))
	for _, record := range records {
		if blank(record) {
			continue
		}
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		table = append(table, cells)
	}
	return servicecode.RowsFromTable(table, servicecode.ServiceLayout), nil
}
