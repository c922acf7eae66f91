package policy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/fake"
	"myinco-admin-be/pkg/audit"
	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *fake.Store
	main    entity.ProductCategory
	sub     entity.ProductCategory
	product entity.Product
	manager *Manager
}

func newFixture() *fixture {
	store := fake.NewStore()
	main := store.AddCategory(entity.ProductCategory{Name: "License", Kind: entity.CategoryKindMain})
	sub := store.AddCategory(entity.ProductCategory{Name: "HGMD", Kind: entity.CategoryKindSub, ParentId: &main.Id})
	product := store.AddProduct(entity.Product{Name: "HGMD Online", RepresentativeCode: "ISG-BBHO", CategoryId: sub.Id})
	return &fixture{store: store, main: main, sub: sub, product: product, manager: NewManager("", 0)}
}

// hgmdWorkbook is a two row upload whose codes end in the version without
// its "v" prefix, as the trim_prefix transform renders it.
func hgmdWorkbook(version string) *spreadsheet.Workbook {
	suffix := strings.TrimPrefix(version, "v")
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
			{No: servicecode.DefaultHeaderLabel, ProductName: "서비스명", ServiceCode: "서비스 코드", Description: "콘텐츠 설명", Price: "단가"},
			{No: "1", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AC-" + suffix, Description: "HGMD Online, Clinical use for Academic", Price: "1,000"},
			{No: "2", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AR-" + suffix, Description: "HGMD Online, Research use for Academic", Price: "2000"},
		},
	}
}

func (f *fixture) batch(version string) BatchInput {
	return BatchInput{CategoryId: f.sub.Id, Version: version, Workbook: hgmdWorkbook(version), Flags: Flags{IsActive: true}}
}

func codeNames(codes []entity.Code) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, c.Name)
	}
	return out
}

func TestBatchCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.Policy.Id)
	assert.Equal(t, "HGMD", res.Policy.CategoryName)
	require.Len(t, res.Policy.GroupCodes, 2)
	assert.Equal(t, "license_type", res.Policy.GroupCodes[0].Name)
	assert.Equal(t, []string{"Clinical use", "Research use"}, codeNames(res.Policy.GroupCodes[0].Codes))

	options := f.store.PriceOptions()
	require.Len(t, options, 2)
	assert.Equal(t, "ISG-BBHO-AC-21.1", options[0].ServiceCode)
	assert.True(t, decimal.NewFromInt(1000).Equal(options[0].Price))
	assert.Equal(t, f.product.Id, options[0].ProductId)
	assert.Equal(t, []string{"Clinical use", "Academic"}, codeNames(options[0].Codes))
	assert.Equal(t, []string{"Research use", "Academic"}, codeNames(options[1].Codes))
	assert.Equal(t, 1, f.store.Commits)
}

func TestBatchCreate_DuplicateVersion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	require.NoError(t, err)

	_, err = f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	var dup *DuplicatePolicyVersionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "version v21.1 already exists for HGMD", dup.Error())
	assert.Len(t, f.store.Policies(), 1)
}

func TestBatchCreate_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("main category", func(t *testing.T) {
		in := f.batch("v1")
		in.CategoryId = f.main.Id
		_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), in)
		assert.ErrorIs(t, err, ErrNotSubCategory)
	})

	t.Run("unknown category", func(t *testing.T) {
		in := f.batch("v1")
		in.CategoryId = uuid.New()
		_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), in)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("rule syntax", func(t *testing.T) {
		in := f.batch("v1")
		in.Workbook.Rule.CodeRule = "{representative_code"
		_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), in)
		var syntax *servicecode.RuleSyntaxError
		require.ErrorAs(t, err, &syntax)
		assert.Equal(t, servicecode.CodeRule, syntax.Kind)
	})

	t.Run("invalid rows", func(t *testing.T) {
		in := f.batch("v1")
		in.Workbook.Rows[2].Description = "HGMD Online, Clinical use for Academic"
		_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), in)
		var invalid *InvalidBatchError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, servicecode.Counts{Total: 2, Valid: 1, Invalid: 1}, invalid.Report.Counts)
		assert.Equal(t, []string{"D3"}, invalid.Report.Errors)
		var codes []servicecode.ErrorCode
		for _, d := range invalid.Report.Details {
			codes = append(codes, d.Code)
		}
		assert.Equal(t, []servicecode.ErrorCode{servicecode.ErrCodeOptionMissing, servicecode.ErrCodeDescriptionMismatch}, codes)
	})

	assert.Empty(t, f.store.Policies())
	assert.Zero(t, f.store.Commits)
}

func TestBatchCreate_RollsBackOnFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.Fail["ServicePolicyRepository.CreatePriceOptions"] = errors.New("disk full")

	_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, f.store.Policies())
	assert.Empty(t, f.store.PriceOptions())
}

func TestBatchCreate_HomepageIsExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.batch("v21.1")
	first.Flags.IsActiveHomepage = true
	_, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), first)
	require.NoError(t, err)

	second := f.batch("v22.0")
	second.Flags.IsActiveHomepage = true
	_, err = f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), second)
	require.NoError(t, err)

	homepage := map[string]bool{}
	for _, p := range f.store.Policies() {
		homepage[p.Version] = p.IsActiveHomepage
	}
	assert.Equal(t, map[string]bool{"v21.1": false, "v22.0": true}, homepage)
}

func TestEachCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.manager.EachCreate(ctx, f.store.NewUnitOfWork(ctx), EachInput{
		CategoryId: f.sub.Id,
		Version:    "v3",
		DescRule:   "{service_name} {license_type}",
		CodeRule:   "{representative_code}-{license_type}",
		CodeOptions: []CodeOption{
			{Name: "license_type", Values: " Clinical use ; Research use;;"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Policy.GroupCodes, 1)
	assert.Equal(t, []string{"Clinical use", "Research use"}, codeNames(res.Policy.GroupCodes[0].Codes))
	assert.Empty(t, res.Options)

	_, err = f.manager.EachCreate(ctx, f.store.NewUnitOfWork(ctx), EachInput{
		CategoryId:  f.sub.Id,
		Version:     "v4",
		DescRule:    "{service_name} {edition}",
		CodeOptions: []CodeOption{{Name: "license_type", Values: "Clinical use"}},
	})
	var missing *servicecode.MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "edition", missing.Token)

	_, err = f.manager.EachCreate(ctx, f.store.NewUnitOfWork(ctx), EachInput{
		CategoryId:  f.sub.Id,
		Version:     "v5",
		CodeOptions: []CodeOption{{Name: "license_type", Values: " ; "}},
	})
	assert.ErrorIs(t, err, ErrNoCodeOptions)
}

func TestParseCodeOptions(t *testing.T) {
	tests := []struct {
		name string
		in   []CodeOption
		want servicecode.GroupCodes
	}{
		{
			name: "trims and keeps order",
			in:   []CodeOption{{Name: "b", Values: "2;1"}, {Name: " a ", Values: "x"}},
			want: servicecode.GroupCodes{{Name: "b", Codes: []string{"2", "1"}}, {Name: "a", Codes: []string{"x"}}},
		},
		{
			name: "merges repeated names",
			in:   []CodeOption{{Name: "a", Values: "x;y"}, {Name: "a", Values: "y;z"}},
			want: servicecode.GroupCodes{{Name: "a", Codes: []string{"x", "y", "z"}}},
		},
		{
			name: "drops empty groups",
			in:   []CodeOption{{Name: "a", Values: ";"}, {Name: "", Values: "x"}},
			want: servicecode.GroupCodes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCodeOptions(tt.in))
		})
	}
}

func TestUpdateFlags(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.batch("v1")
	first.Flags.IsActiveHomepage = true
	a, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), first)
	require.NoError(t, err)
	b, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v2"))
	require.NoError(t, err)

	on, off := true, false
	res, err := f.manager.UpdateFlags(ctx, f.store.NewUnitOfWork(ctx), b.Policy.Id, FlagUpdate{IsActiveHomepage: &on, IsPromotion: &on, IsActive: &off})
	require.NoError(t, err)
	assert.True(t, res.HomepageChanged)
	assert.False(t, res.Before.IsActiveHomepage)
	assert.True(t, res.After.IsActiveHomepage)

	diff := FlagDiffSchema.Diff(*res.Before, *res.After)
	assert.Equal(t, []string{"is_active", "is_promotion", "is_active_homepage"}, fieldNames(diff))

	uow := f.store.NewUnitOfWork(ctx)
	reloadedA, err := f.manager.Find(ctx, uow, a.Policy.Id)
	require.NoError(t, err)
	assert.False(t, reloadedA.IsActiveHomepage)

	res, err = f.manager.UpdateFlags(ctx, f.store.NewUnitOfWork(ctx), b.Policy.Id, FlagUpdate{IsActiveHomepage: &on})
	require.NoError(t, err)
	assert.False(t, res.HomepageChanged)

	_, err = f.manager.UpdateFlags(ctx, f.store.NewUnitOfWork(ctx), uuid.New(), FlagUpdate{})
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func fieldNames(changes []audit.Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Field)
	}
	return out
}

func TestSaveServiceOptions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	require.NoError(t, err)

	rows := []servicecode.Row{
		{No: "1", ServiceCode: "ISG-BBHO-AC-21.1", Description: "HGMD Online, Clinical use for Academic", IsBuyNow: true, Price: "1,500"},
		{No: "2", ServiceCode: "", Description: "", Price: ""},
	}
	saved, err := f.manager.SaveServiceOptions(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, rows)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsBuyNow)
	assert.Equal(t, []string{"Clinical use", "Academic"}, codeNames(saved[0].Codes))

	options := f.store.PriceOptions()
	require.Len(t, options, 2)
	assert.True(t, decimal.NewFromInt(1500).Equal(options[0].Price))
	assert.Equal(t, saved[0].Id, options[0].Id)

	_, err = f.manager.SaveServiceOptions(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, []servicecode.Row{
		{No: "1", ServiceCode: "ISG-BBHO-XX-21.1", Description: "HGMD Online", Price: "10"},
	})
	var invalid *InvalidBatchError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"B1"}, invalid.Report.Errors)

	_, err = f.manager.SaveServiceOptions(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, uuid.New(), rows)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestVerifyService_CandidateLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	require.NoError(t, err)

	rows := []servicecode.Row{
		{No: "1", ServiceCode: "ISG-BBHO-AC-21.1", Description: "HGMD Online, Clinical use for Academic", Price: "10"},
	}
	limited := NewManager("", 1)

	_, err = limited.VerifyService(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, rows)
	assert.ErrorIs(t, err, servicecode.ErrCandidateSetTooLarge)

	_, err = limited.SaveServiceOptions(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, rows)
	assert.ErrorIs(t, err, servicecode.ErrCandidateSetTooLarge)

	_, err = limited.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v22.0"))
	assert.ErrorIs(t, err, servicecode.ErrCandidateSetTooLarge)
	assert.Len(t, f.store.Policies(), 1)

	report, err := NewManager("", 2).VerifyService(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, rows)
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
}

func TestCandidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.manager.BatchCreate(ctx, f.store.NewUnitOfWork(ctx), f.batch("v21.1"))
	require.NoError(t, err)

	candidates, total, err := f.manager.Candidates(ctx, f.store.NewUnitOfWork(ctx), created.Policy.Id, f.product.Id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ISG-BBHO-AC-21.1", candidates[0].Code)
	assert.Equal(t, "HGMD Online, Clinical use for Academic", candidates[0].Description)
}
