package servicecode

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorCode classifies a cell level validation error.
type ErrorCode string

const (
	ErrCodeProductNotFound     ErrorCode = "product_not_found"
	ErrCodeProductNameMissing  ErrorCode = "product_name_missing"
	ErrCodeOptionMissing       ErrorCode = "option_missing"
	ErrCodeUnknownCode         ErrorCode = "unknown_code"
	ErrCodeDescriptionMismatch ErrorCode = "description_mismatch"
	ErrCodeAmbiguousCode       ErrorCode = "ambiguous_code"
	ErrCodeDuplicateCode       ErrorCode = "duplicate_code"
	ErrCodeInvalidPrice        ErrorCode = "invalid_price"
)

// CellError is one error marker at a spreadsheet coordinate.
type CellError struct {
	Cell    string    `json:"cell"`
	Row     int       `json:"row"`
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CellMeta is the per-cell annotation rendered next to the sheet.
type CellMeta struct {
	IsValid  bool   `json:"is_valid"`
	ErrorMsg string `json:"error_msg,omitempty"`
}

// RowResult is the outcome for one input row.
type RowResult struct {
	Index   int    `json:"index"`
	No      string `json:"no"`
	Valid   bool   `json:"valid"`
	Skipped bool   `json:"skipped"`
}

// Counts aggregates the validated rows; Total == Valid + Invalid.
type Counts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Report is everything a caller needs to annotate the submitted sheet.
type Report struct {
	Rows    []Row               `json:"rows"`
	Results []RowResult         `json:"results"`
	Errors  []string            `json:"errors"`
	Meta    map[string]CellMeta `json:"meta"`
	Details []CellError         `json:"details"`
	Counts  Counts              `json:"counts"`
}

// HasErrors reports whether any counted row is invalid.
func (r *Report) HasErrors() bool {
	return r.Counts.Invalid > 0
}

// ProductLookup resolves a product by its exact name.
type ProductLookup interface {
	LookupProduct(name string) (Product, bool)
}

// ProductIndex is a ProductLookup over preloaded products.
type ProductIndex map[string]Product

func (p ProductIndex) LookupProduct(name string) (Product, bool) {
	product, ok := p[name]
	return product, ok
}

// Options selects the validator variant.
type Options struct {
	Layout      Layout
	HeaderLabel string
	// SkipIncomplete skips rows with an empty price, description or code
	// instead of validating them.
	SkipIncomplete bool
	// Product, when set, is the product of every row.
	Product *Product
	// Rules, when set, enables the candidate set checks.
	Rules *PolicyRules
	// RowOptions holds the group code values of each row keyed by row no.
	RowOptions map[string]map[string]string
	// MaxCandidates, when positive, rejects a candidate set larger than it
	// with ErrCandidateSetTooLarge.
	MaxCandidates int
}

// ParsePrice accepts plain or thousands-separated decimal text.
func ParsePrice(text string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", "₩", "", " ", "").Replace(text)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}

type pendingCheck struct {
	pos     int
	product Product
}

type validation struct {
	opts    Options
	report  *Report
	invalid map[int]bool
	cells   map[string]struct{}
}

func (v *validation) fail(pos, col int, field string, code ErrorCode, msg string) {
	rowNum := pos + 1
	cell := Cell(col, rowNum)
	v.invalid[pos] = true
	v.report.Details = append(v.report.Details, CellError{
		Cell:    cell,
		Row:     rowNum,
		Field:   field,
		Code:    code,
		Message: msg,
	})
	v.report.Meta[cell] = CellMeta{IsValid: false, ErrorMsg: msg}
	if _, ok := v.cells[cell]; !ok {
		v.cells[cell] = struct{}{}
		v.report.Errors = append(v.report.Errors, cell)
	}
}

// Validate checks every row and never stops at a bad one. The errors returned
// are request level: a malformed rule, an unknown variable, a candidate set
// over MaxCandidates, or ctx ending while candidates are enumerated.
func Validate(ctx context.Context, rows []Row, products ProductLookup, opts Options) (*Report, error) {
	if opts.HeaderLabel == "" {
		opts.HeaderLabel = DefaultHeaderLabel
	}
	layout := opts.Layout

	v := &validation{
		opts: opts,
		report: &Report{
			Rows:    rows,
			Results: make([]RowResult, 0, len(rows)),
			Errors:  []string{},
			Meta:    map[string]CellMeta{},
			Details: []CellError{},
		},
		invalid: map[int]bool{},
		cells:   map[string]struct{}{},
	}

	counted := make([]int, 0, len(rows))
	skipped := make(map[int]bool)
	seenCodes := make(map[string]int)
	pending := make(map[string][]pendingCheck)
	var productOrder []string
	byName := make(map[string]Product)

	for pos, row := range rows {
		if row.No == opts.HeaderLabel || (opts.SkipIncomplete && row.Incomplete()) {
			skipped[pos] = true
			continue
		}
		counted = append(counted, pos)

		var (
			product Product
			found   bool
		)
		if opts.Product != nil {
			product, found = *opts.Product, true
		} else if products != nil {
			product, found = products.LookupProduct(row.ProductName)
		}
		if !found {
			v.fail(pos, layout.ProductName, "product_name", ErrCodeProductNotFound,
				fmt.Sprintf("product not found: %s", row.ProductName))
		} else if !strings.Contains(row.Description, product.Name) {
			v.fail(pos, layout.Description, "service_description", ErrCodeProductNameMissing,
				fmt.Sprintf("description does not contain product name %q", product.Name))
		}

		for _, name := range orderedKeys(opts.RowOptions[row.No], opts.Rules) {
			keyword := opts.RowOptions[row.No][name]
			if keyword != "" && !strings.Contains(row.Description, keyword) {
				v.fail(pos, layout.Description, "service_description", ErrCodeOptionMissing,
					fmt.Sprintf("description does not contain %s option %q", name, keyword))
			}
		}

		if row.Price != "" {
			if _, err := ParsePrice(row.Price); err != nil {
				v.fail(pos, layout.Price, "price", ErrCodeInvalidPrice,
					fmt.Sprintf("price %q is not a number", row.Price))
			}
		}

		if row.ServiceCode != "" {
			if first, dup := seenCodes[row.ServiceCode]; dup {
				v.fail(pos, layout.ServiceCode, "service_code", ErrCodeDuplicateCode,
					fmt.Sprintf("code %s already used on row %d", row.ServiceCode, first+1))
			} else {
				seenCodes[row.ServiceCode] = pos
			}
		}

		if found && opts.Rules != nil {
			if _, ok := byName[product.Name]; !ok {
				byName[product.Name] = product
				productOrder = append(productOrder, product.Name)
			}
			pending[product.Name] = append(pending[product.Name], pendingCheck{pos: pos, product: product})
		}
	}

	if opts.Rules != nil {
		for _, name := range productOrder {
			if err := v.checkCandidates(ctx, rows, byName[name], pending[name]); err != nil {
				return nil, err
			}
		}
	}

	for pos, row := range rows {
		if skipped[pos] {
			v.report.Results = append(v.report.Results, RowResult{Index: pos, No: row.No, Skipped: true})
			continue
		}
		v.report.Results = append(v.report.Results, RowResult{Index: pos, No: row.No, Valid: !v.invalid[pos]})
	}

	v.report.Counts.Total = len(counted)
	for _, pos := range counted {
		if v.invalid[pos] {
			v.report.Counts.Invalid++
		} else {
			v.report.Counts.Valid++
		}
	}
	return v.report, nil
}

func (v *validation) checkCandidates(ctx context.Context, rows []Row, product Product, checks []pendingCheck) error {
	set, err := NewCandidateSet(*v.opts.Rules, product)
	if err != nil {
		return err
	}
	if err := set.CheckSize(v.opts.MaxCandidates); err != nil {
		return err
	}

	codes := make([]string, 0, len(checks))
	for _, c := range checks {
		codes = append(codes, rows[c.pos].ServiceCode)
	}
	res, err := set.Resolve(ctx, codes)
	if err != nil {
		return err
	}

	layout := v.opts.Layout
	for _, c := range checks {
		row := rows[c.pos]
		if _, conflict := res.Conflicts[row.ServiceCode]; conflict {
			v.fail(c.pos, layout.ServiceCode, "service_code", ErrCodeAmbiguousCode,
				fmt.Sprintf("code %s is produced by options with different descriptions", row.ServiceCode))
			continue
		}
		expected, ok := res.Lookup(row.ServiceCode)
		if !ok {
			v.fail(c.pos, layout.ServiceCode, "service_code", ErrCodeUnknownCode,
				fmt.Sprintf("unknown code: %s", row.ServiceCode))
			continue
		}
		if expected != row.Description {
			v.fail(c.pos, layout.Description, "service_description", ErrCodeDescriptionMismatch,
				fmt.Sprintf("description mismatch, expected %q", expected))
		}
	}
	return nil
}

// orderedKeys lists the option names of one row, group code order first so
// errors come out deterministically.
func orderedKeys(values map[string]string, rules *PolicyRules) []string {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	if rules != nil {
		for _, name := range rules.GroupCodes.Names() {
			if _, ok := values[name]; ok {
				keys = append(keys, name)
				seen[name] = struct{}{}
			}
		}
	}
	rest := make([]string, 0, len(values))
	for name := range values {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
