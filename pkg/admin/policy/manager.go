// Package policy persists service policies and their price options.
package policy

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"
	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/google/uuid"
)

// Flags are the switches set when a policy is created.
type Flags struct {
	IsActive         bool
	IsPromotion      bool
	IsActiveHomepage bool
}

// BatchInput is a parsed upload bound to a category and version.
type BatchInput struct {
	CategoryId uuid.UUID
	Version    string
	Workbook   *spreadsheet.Workbook
	Flags      Flags
}

// CodeOption is one group code and its ';' separated values.
type CodeOption struct {
	Name   string
	Values string
}

type EachInput struct {
	CategoryId     uuid.UUID
	Version        string
	DescRule       string
	CodeRule       string
	CodeTransforms servicecode.TransformSpec
	CodeOptions    []CodeOption
	Flags          Flags
}

type CreateResult struct {
	Policy  *entity.ServicePolicy
	Options []*entity.PriceOption
}

// FlagUpdate holds the requested flag changes; nil leaves a flag untouched.
type FlagUpdate struct {
	IsActive         *bool
	IsPromotion      *bool
	IsActiveHomepage *bool
}

type FlagResult struct {
	Before *entity.ServicePolicy
	After  *entity.ServicePolicy
	// HomepageChanged is set when the policy became the homepage policy.
	HomepageChanged bool
}

// Manager handles policy operations
type Manager struct {
	headerLabel   string
	maxCandidates int
}

// NewManager builds a manager. A positive maxCandidates rejects verifying
// against a candidate set larger than it; zero leaves the set unbounded.
func NewManager(headerLabel string, maxCandidates int) *Manager {
	if headerLabel == "" {
		headerLabel = servicecode.DefaultHeaderLabel
	}
	return &Manager{headerLabel: headerLabel, maxCandidates: maxCandidates}
}

func (m *Manager) HeaderLabel() string {
	return m.headerLabel
}

// subCategory loads the category a policy is registered on.
func (m *Manager) subCategory(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.ProductCategory, error) {
	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if !category.IsSub() {
		return nil, ErrNotSubCategory
	}
	return category, nil
}

func (m *Manager) ensureNewVersion(ctx context.Context, uow unitofwork.UnitOfWork, category *entity.ProductCategory, version string) error {
	exists, err := uow.ServicePolicyRepository().Exists(ctx,
		specification.ByCategoryID{CategoryID: category.Id},
		specification.ByVersion{Version: version},
	)
	if err != nil {
		return err
	}
	if exists {
		return &DuplicatePolicyVersionError{CategoryName: category.Name, Version: version}
	}
	return nil
}

// CheckRules reports the first malformed rule or transform schema.
func CheckRules(descRule, codeRule string, transforms servicecode.TransformSpec) error {
	if _, err := servicecode.ParseKindRule(servicecode.DescriptionRule, descRule); err != nil {
		return err
	}
	if _, err := servicecode.ParseKindRule(servicecode.CodeRule, codeRule); err != nil {
		return err
	}
	_, err := transforms.Compile()
	return err
}

// Products resolves the product names used by rows.
func (m *Manager) Products(ctx context.Context, uow unitofwork.UnitOfWork, rows []servicecode.Row) (map[string]*entity.Product, error) {
	seen := map[string]struct{}{}
	names := []string{}
	for _, row := range rows {
		if row.ProductName == "" {
			continue
		}
		if _, ok := seen[row.ProductName]; !ok {
			seen[row.ProductName] = struct{}{}
			names = append(names, row.ProductName)
		}
	}
	byName := make(map[string]*entity.Product, len(names))
	if len(names) == 0 {
		return byName, nil
	}
	products, err := uow.ProductRepository().FindAll(ctx, specification.ByNames{Names: names})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		byName[p.Name] = p
	}
	return byName, nil
}

// ProductIndex adapts loaded products to the validator.
func ProductIndex(products map[string]*entity.Product) servicecode.ProductIndex {
	index := make(servicecode.ProductIndex, len(products))
	for name, p := range products {
		index[name] = servicecode.Product{Name: p.Name, RepresentativeCode: p.RepresentativeCode}
	}
	return index
}

// VerifyBatch runs the batch checks on an upload. Candidate checks run only
// when the upload declares a transform schema.
func (m *Manager) VerifyBatch(ctx context.Context, uow unitofwork.UnitOfWork, wb *spreadsheet.Workbook, version string) (*servicecode.Report, error) {
	products, err := m.Products(ctx, uow, wb.Rows)
	if err != nil {
		return nil, err
	}
	opts := servicecode.Options{
		Layout:        servicecode.BatchLayout,
		HeaderLabel:   m.headerLabel,
		RowOptions:    wb.Info,
		MaxCandidates: m.maxCandidates,
	}
	if len(wb.Rule.Transforms) > 0 {
		rules := wb.PolicyRules(version)
		opts.Rules = &rules
	}
	return servicecode.Validate(ctx, wb.Rows, ProductIndex(products), opts)
}

// VerifyEach runs the structural checks only.
func (m *Manager) VerifyEach(ctx context.Context, uow unitofwork.UnitOfWork, rows []servicecode.Row) (*servicecode.Report, error) {
	products, err := m.Products(ctx, uow, rows)
	if err != nil {
		return nil, err
	}
	return servicecode.Validate(ctx, rows, ProductIndex(products), servicecode.Options{
		Layout:      servicecode.BatchLayout,
		HeaderLabel: m.headerLabel,
	})
}

// BatchCreate re-validates the upload and persists the policy, its group
// codes and one price option per row in one transaction.
func (m *Manager) BatchCreate(ctx context.Context, uow unitofwork.UnitOfWork, in BatchInput) (*CreateResult, error) {
	category, err := m.subCategory(ctx, uow, in.CategoryId)
	if err != nil {
		return nil, err
	}
	if err := m.ensureNewVersion(ctx, uow, category, in.Version); err != nil {
		return nil, err
	}
	wb := in.Workbook
	if err := CheckRules(wb.Rule.DescRule, wb.Rule.CodeRule, wb.Rule.Transforms); err != nil {
		return nil, err
	}

	products, err := m.Products(ctx, uow, wb.Rows)
	if err != nil {
		return nil, err
	}
	opts := servicecode.Options{
		Layout:        servicecode.BatchLayout,
		HeaderLabel:   m.headerLabel,
		RowOptions:    wb.Info,
		MaxCandidates: m.maxCandidates,
	}
	if len(wb.Rule.Transforms) > 0 {
		rules := wb.PolicyRules(in.Version)
		opts.Rules = &rules
	}
	report, err := servicecode.Validate(ctx, wb.Rows, ProductIndex(products), opts)
	if err != nil {
		return nil, err
	}
	if report.HasErrors() {
		return nil, &InvalidBatchError{Report: report}
	}

	policy := newPolicy(category, in.Version, wb.Rule.DescRule, wb.Rule.CodeRule, wb.Rule.Transforms, wb.Code, in.Flags)

	var options []*entity.PriceOption
	err = unitofwork.RunInTransaction(ctx, uow, func() error {
		if err := m.createPolicy(ctx, uow, policy); err != nil {
			return err
		}

		options = make([]*entity.PriceOption, 0, len(wb.Rows))
		for _, row := range wb.Rows {
			if m.isHeader(row) || row.ProductName == "" {
				continue
			}
			product, ok := products[row.ProductName]
			if !ok {
				return fmt.Errorf("row %s: %w", row.No, ErrProductNotFound)
			}
			price, err := servicecode.ParsePrice(row.Price)
			if err != nil {
				return fmt.Errorf("row %s: %w", row.No, err)
			}
			options = append(options, &entity.PriceOption{
				PolicyId:           policy.Id,
				ProductId:          product.Id,
				ProductName:        product.Name,
				ServiceCode:        row.ServiceCode,
				ServiceDescription: row.Description,
				Price:              price,
				IsBuyNow:           row.IsBuyNow,
				Codes:              selectedCodes(policy, wb.Code, wb.Info[row.No]),
			})
		}
		return uow.ServicePolicyRepository().CreatePriceOptions(ctx, options)
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{Policy: policy, Options: options}, nil
}

// EachCreate persists a policy from explicit rules and code options.
func (m *Manager) EachCreate(ctx context.Context, uow unitofwork.UnitOfWork, in EachInput) (*CreateResult, error) {
	category, err := m.subCategory(ctx, uow, in.CategoryId)
	if err != nil {
		return nil, err
	}
	if err := m.ensureNewVersion(ctx, uow, category, in.Version); err != nil {
		return nil, err
	}
	if err := CheckRules(in.DescRule, in.CodeRule, in.CodeTransforms); err != nil {
		return nil, err
	}

	groups := ParseCodeOptions(in.CodeOptions)
	if len(groups) == 0 {
		return nil, ErrNoCodeOptions
	}
	rules := servicecode.PolicyRules{
		Version:    in.Version,
		DescRule:   in.DescRule,
		CodeRule:   in.CodeRule,
		Transforms: in.CodeTransforms,
		GroupCodes: groups,
	}
	// Every rule token must name a reserved token or one of the groups.
	if _, err := servicecode.NewCandidateSet(rules, servicecode.Product{}); err != nil {
		return nil, err
	}

	policy := newPolicy(category, in.Version, in.DescRule, in.CodeRule, in.CodeTransforms, groups, in.Flags)
	if err := unitofwork.RunInTransaction(ctx, uow, func() error {
		return m.createPolicy(ctx, uow, policy)
	}); err != nil {
		return nil, err
	}
	return &CreateResult{Policy: policy, Options: []*entity.PriceOption{}}, nil
}

// ParseCodeOptions turns option rows into ordered group codes. Values are
// split on ';' and trimmed; blanks and repeats are dropped, and options
// sharing a name are merged.
func ParseCodeOptions(options []CodeOption) servicecode.GroupCodes {
	groups := servicecode.GroupCodes{}
	index := map[string]int{}
	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, servicecode.GroupCode{Name: name, Codes: []string{}})
		}
		for _, value := range strings.Split(opt.Values, ";") {
			value = strings.TrimSpace(value)
			if value == "" || slices.Contains(groups[pos].Codes, value) {
				continue
			}
			groups[pos].Codes = append(groups[pos].Codes, value)
		}
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Codes) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// UpdateFlags applies the flag changes. Turning the homepage flag on clears
// it on every other policy of the category in the same transaction.
func (m *Manager) UpdateFlags(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, upd FlagUpdate) (*FlagResult, error) {
	before, err := m.Find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	after := *before

	if upd.IsActive != nil {
		after.IsActive = *upd.IsActive
	}
	if upd.IsPromotion != nil {
		after.IsPromotion = *upd.IsPromotion
	}
	if upd.IsActiveHomepage != nil {
		after.IsActiveHomepage = *upd.IsActiveHomepage
	}
	homepageChanged := after.IsActiveHomepage && !before.IsActiveHomepage

	err = unitofwork.RunInTransaction(ctx, uow, func() error {
		if after.IsActiveHomepage {
			if err := uow.ServicePolicyRepository().ClearHomepage(ctx, after.CategoryId, after.Id); err != nil {
				return err
			}
		}
		return uow.ServicePolicyRepository().UpdateFlags(ctx, &after)
	})
	if err != nil {
		return nil, err
	}
	return &FlagResult{Before: before, After: &after, HomepageChanged: homepageChanged}, nil
}

func (m *Manager) Find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.ServicePolicy, error) {
	policy, err := uow.ServicePolicyRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, ErrPolicyNotFound
	}
	return policy, nil
}

func (m *Manager) FindProduct(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Product, error) {
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// VerifyService checks rows of one product against the policy's candidate set.
// Incomplete rows are skipped.
func (m *Manager) VerifyService(ctx context.Context, uow unitofwork.UnitOfWork, policyId, productId uuid.UUID, rows []servicecode.Row) (*servicecode.Report, error) {
	policy, err := m.Find(ctx, uow, policyId)
	if err != nil {
		return nil, err
	}
	product, err := m.FindProduct(ctx, uow, productId)
	if err != nil {
		return nil, err
	}
	return m.verifyService(ctx, policy, product, rows)
}

func (m *Manager) verifyService(ctx context.Context, policy *entity.ServicePolicy, product *entity.Product, rows []servicecode.Row) (*servicecode.Report, error) {
	rules := policy.Rules()
	return servicecode.Validate(ctx, rows, nil, servicecode.Options{
		Layout:         servicecode.ServiceLayout,
		HeaderLabel:    m.headerLabel,
		SkipIncomplete: true,
		Product:        &servicecode.Product{Name: product.Name, RepresentativeCode: product.RepresentativeCode},
		Rules:          &rules,
		MaxCandidates:  m.maxCandidates,
	})
}

// SaveServiceOptions validates rows of one product and upserts a price option
// per code, linked to the codes of the combination that produced it.
func (m *Manager) SaveServiceOptions(ctx context.Context, uow unitofwork.UnitOfWork, policyId, productId uuid.UUID, rows []servicecode.Row) ([]*entity.PriceOption, error) {
	policy, err := m.Find(ctx, uow, policyId)
	if err != nil {
		return nil, err
	}
	product, err := m.FindProduct(ctx, uow, productId)
	if err != nil {
		return nil, err
	}
	report, err := m.verifyService(ctx, policy, product, rows)
	if err != nil {
		return nil, err
	}
	if report.HasErrors() {
		return nil, &InvalidBatchError{Report: report}
	}

	accepted := make([]servicecode.Row, 0, len(rows))
	codes := make([]string, 0, len(rows))
	for i, result := range report.Results {
		if result.Skipped {
			continue
		}
		accepted = append(accepted, report.Rows[i])
		codes = append(codes, report.Rows[i].ServiceCode)
	}

	set, err := servicecode.NewCandidateSet(policy.Rules(), servicecode.Product{Name: product.Name, RepresentativeCode: product.RepresentativeCode})
	if err != nil {
		return nil, err
	}
	resolution, err := set.Resolve(ctx, codes)
	if err != nil {
		return nil, err
	}

	groups := policy.Rules().GroupCodes
	saved := make([]*entity.PriceOption, 0, len(accepted))
	err = unitofwork.RunInTransaction(ctx, uow, func() error {
		for _, row := range accepted {
			price, err := servicecode.ParsePrice(row.Price)
			if err != nil {
				return fmt.Errorf("row %s: %w", row.No, err)
			}
			option := &entity.PriceOption{
				PolicyId:           policy.Id,
				ProductId:          product.Id,
				ProductName:        product.Name,
				ServiceCode:        row.ServiceCode,
				ServiceDescription: row.Description,
				Price:              price,
				IsBuyNow:           row.IsBuyNow,
				Codes:              selectedCodes(policy, groups, resolution.Candidates[row.ServiceCode].Options),
			}
			if err := uow.ServicePolicyRepository().UpsertPriceOption(ctx, option); err != nil {
				return err
			}
			saved = append(saved, option)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Candidates previews the first limit candidates of a policy for a product.
func (m *Manager) Candidates(ctx context.Context, uow unitofwork.UnitOfWork, policyId, productId uuid.UUID, limit int) ([]servicecode.Candidate, int, error) {
	policy, err := m.Find(ctx, uow, policyId)
	if err != nil {
		return nil, 0, err
	}
	product, err := m.FindProduct(ctx, uow, productId)
	if err != nil {
		return nil, 0, err
	}
	set, err := servicecode.NewCandidateSet(policy.Rules(), servicecode.Product{Name: product.Name, RepresentativeCode: product.RepresentativeCode})
	if err != nil {
		return nil, 0, err
	}
	candidates, err := set.Take(limit)
	if err != nil {
		return nil, 0, err
	}
	return candidates, set.Size(), nil
}

func (m *Manager) isHeader(row servicecode.Row) bool {
	return strings.TrimSpace(row.No) == m.headerLabel
}

func (m *Manager) createPolicy(ctx context.Context, uow unitofwork.UnitOfWork, policy *entity.ServicePolicy) error {
	if err := uow.ServicePolicyRepository().Create(ctx, policy); err != nil {
		return err
	}
	if policy.IsActiveHomepage {
		return uow.ServicePolicyRepository().ClearHomepage(ctx, policy.CategoryId, policy.Id)
	}
	return nil
}

func newPolicy(category *entity.ProductCategory, version, descRule, codeRule string, transforms servicecode.TransformSpec, groups servicecode.GroupCodes, flags Flags) *entity.ServicePolicy {
	policy := &entity.ServicePolicy{
		CategoryId:       category.Id,
		CategoryName:     category.Name,
		Version:          version,
		DescRule:         descRule,
		CodeRule:         codeRule,
		CodeTransforms:   transforms,
		IsActive:         flags.IsActive,
		IsPromotion:      flags.IsPromotion,
		IsActiveHomepage: flags.IsActiveHomepage,
		GroupCodes:       make([]entity.GroupCode, 0, len(groups)),
	}
	for i, g := range groups {
		gc := entity.GroupCode{Name: g.Name, DisplayOrder: i, IsRequired: true, Codes: make([]entity.Code, 0, len(g.Codes))}
		for j, name := range g.Codes {
			gc.Codes = append(gc.Codes, entity.Code{Name: name, DisplayOrder: j})
		}
		policy.GroupCodes = append(policy.GroupCodes, gc)
	}
	return policy
}

// selectedCodes maps a row's option values onto persisted codes in group
// order. Values that are not codes of the policy are ignored.
func selectedCodes(policy *entity.ServicePolicy, groups servicecode.GroupCodes, values map[string]string) []entity.Code {
	codes := []entity.Code{}
	for _, g := range groups {
		value := values[g.Name]
		if value == "" {
			continue
		}
		if code, ok := policy.FindCode(g.Name, value); ok {
			codes = append(codes, *code)
		}
	}
	return codes
}
