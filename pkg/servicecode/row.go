package servicecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultHeaderLabel is the "no." header of an uploaded sheet; rows carrying it
// are round-tripped header rows.
const DefaultHeaderLabel = "연번"

// Row is one proposed price option line.
type Row struct {
	No          string `json:"no"`
	ProductName string `json:"product_name"`
	ServiceCode string `json:"service_code"`
	Description string `json:"service_description"`
	IsBuyNow    bool   `json:"is_buy_now"`
	Price       string `json:"price"`
}

// Incomplete reports a row without price, description or code.
func (r Row) Incomplete() bool {
	return r.Price == "" || r.Description == "" || r.ServiceCode == ""
}

// Layout gives the 1-based column of each field in a tabular row. A zero
// column means the layout has no such field.
type Layout struct {
	No          int
	ProductName int
	ServiceCode int
	Description int
	IsBuyNow    int
	Price       int
}

var (
	// BatchLayout is [no, product name, code, description, price].
	BatchLayout = Layout{No: 1, ProductName: 2, ServiceCode: 3, Description: 4, Price: 5}
	// ServiceLayout is [no, code, description, buy now, price].
	ServiceLayout = Layout{No: 1, ServiceCode: 2, Description: 3, IsBuyNow: 4, Price: 5}
)

// Cell names the spreadsheet cell of column col on the 1-based row.
func Cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("?%d", row)
	}
	return name
}

// CellString renders a decoded JSON or spreadsheet cell as text.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func cellBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "y", "yes", "o":
			return true
		}
	}
	return false
}

// RowsFromTable maps a table of decoded cells onto rows using layout.
func RowsFromTable(table [][]any, layout Layout) []Row {
	rows := make([]Row, 0, len(table))
	for _, record := range table {
		at := func(col int) any {
			if col <= 0 || col > len(record) {
				return nil
			}
			return record[col-1]
		}
		rows = append(rows, Row{
			No:          CellString(at(layout.No)),
			ProductName: CellString(at(layout.ProductName)),
			ServiceCode: CellString(at(layout.ServiceCode)),
			Description: CellString(at(layout.Description)),
			IsBuyNow:    cellBool(at(layout.IsBuyNow)),
			Price:       CellString(at(layout.Price)),
		})
	}
	return rows
}

// Table is the inverse of RowsFromTable.
func (l Layout) Table(rows []Row) [][]any {
	width := max(l.No, l.ProductName, l.ServiceCode, l.Description, l.IsBuyNow, l.Price)
	table := make([][]any, 0, len(rows))
	for _, r := range rows {
		record := make([]any, width)
		set := func(col int, v any) {
			if col > 0 {
				record[col-1] = v
			}
		}
		set(l.No, r.No)
		set(l.ProductName, r.ProductName)
		set(l.ServiceCode, r.ServiceCode)
		set(l.Description, r.Description)
		set(l.IsBuyNow, r.IsBuyNow)
		set(l.Price, r.Price)
		table = append(table, record)
	}
	return table
}
