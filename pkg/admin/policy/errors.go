package policy

import (
	"errors"
	"fmt"

	"myinco-admin-be/pkg/servicecode"
)

var (
	ErrPolicyNotFound   = errors.New("policy not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrNotSubCategory   = errors.New("policies can only be registered on a sub category")
	ErrNoCodeOptions    = errors.New("at least one code option with a value is required")
)

// DuplicatePolicyVersionError rejects a second policy with the same version
// in one category.
type DuplicatePolicyVersionError struct {
	CategoryName string
	Version      string
}

func (e *DuplicatePolicyVersionError) Error() string {
	return fmt.Sprintf("version %s already exists for %s", e.Version, e.CategoryName)
}

// InvalidBatchError carries the report of rows that failed re-validation.
type InvalidBatchError struct {
	Report *servicecode.Report
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("%d of %d rows are invalid", e.Report.Counts.Invalid, e.Report.Counts.Total)
}
