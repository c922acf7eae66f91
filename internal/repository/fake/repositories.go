package fake

import (
	"context"
	"slices"
	"sort"
	"time"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"

	"github.com/google/uuid"
)

func cloneProduct(p entity.Product) entity.Product {
	p.Tags = slices.Clone(p.Tags)
	return p
}

func clonePolicy(p entity.ServicePolicy) entity.ServicePolicy {
	groups := make([]entity.GroupCode, len(p.GroupCodes))
	for i, g := range p.GroupCodes {
		g.Codes = slices.Clone(g.Codes)
		groups[i] = g
	}
	p.GroupCodes = groups
	transforms := make(map[string]string, len(p.CodeTransforms))
	for k, v := range p.CodeTransforms {
		transforms[k] = v
	}
	p.CodeTransforms = transforms
	return p
}

func cloneOption(o entity.PriceOption) entity.PriceOption {
	o.Codes = slices.Clone(o.Codes)
	return o
}

// --- categories ---

type categoryRepo struct{ s *Store }

func categoryFields(c entity.ProductCategory) fields {
	return fields{"id": c.Id, "name": c.Name, "kind": c.Kind, "parent_id": c.ParentId}
}

func (r *categoryRepo) withParent(c entity.ProductCategory) *entity.ProductCategory {
	if c.ParentId != nil {
		for _, p := range r.s.state.categories {
			if p.Id == *c.ParentId {
				c.ParentName = p.Name
			}
		}
	}
	return &c
}

func (r *categoryRepo) Create(ctx context.Context, category *entity.ProductCategory) error {
	if err := r.s.fail("CategoryRepository.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.state.categories {
		if c.Name == category.Name {
			return errDuplicate
		}
	}
	category.Id = uuid.New()
	category.CreatedAt, category.UpdatedAt = time.Now(), time.Now()
	r.s.state.categories = append(r.s.state.categories, *category)
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entity.ProductCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.state.categories {
		if c.Id == category.Id {
			category.UpdatedAt = time.Now()
			r.s.state.categories[i] = *category
		}
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.categories = slices.DeleteFunc(r.s.state.categories, func(c entity.ProductCategory) bool { return c.Id == id })
	return nil
}

func (r *categoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.categories, categoryFields, specs)
	if len(rows) == 0 {
		return nil, nil
	}
	return r.withParent(rows[0]), nil
}

func (r *categoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.categories, categoryFields, specs)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	out := make([]*entity.ProductCategory, 0, len(rows))
	for _, c := range rows {
		out = append(out, r.withParent(c))
	}
	return out, nil
}

func (r *categoryRepo) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.state.policies {
		if p.CategoryId == id {
			n++
		}
	}
	for _, p := range r.s.state.products {
		if p.CategoryId == id {
			n++
		}
	}
	return n, nil
}

// --- products ---

type productRepo struct{ s *Store }

func productFields(p entity.Product) fields {
	return fields{"id": p.Id, "name": p.Name, "representative_code": p.RepresentativeCode, "category_id": p.CategoryId}
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.state.products {
		if p.Name == product.Name || p.RepresentativeCode == product.RepresentativeCode {
			return errDuplicate
		}
	}
	product.Id = uuid.New()
	product.CreatedAt, product.UpdatedAt = time.Now(), time.Now()
	r.s.state.products = append(r.s.state.products, cloneProduct(*product))
	return nil
}

func (r *productRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.products, productFields, specs)
	if len(rows) == 0 {
		return nil, nil
	}
	p := cloneProduct(rows[0])
	return &p, nil
}

func (r *productRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.products, productFields, specs)
	out := make([]*entity.Product, 0, len(rows))
	for _, p := range rows {
		p := cloneProduct(p)
		out = append(out, &p)
	}
	return out, nil
}

func (r *productRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(selectRows(r.s.state.products, productFields, specs))), nil
}

// --- policies ---

type policyRepo struct{ s *Store }

func policyFields(p entity.ServicePolicy) fields {
	return fields{"id": p.Id, "category_id": p.CategoryId, "version": p.Version, "is_active_homepage": p.IsActiveHomepage}
}

func optionFields(o entity.PriceOption) fields {
	return fields{"id": o.Id, "policy_id": o.PolicyId, "product_id": o.ProductId}
}

func (r *policyRepo) Create(ctx context.Context, policy *entity.ServicePolicy) error {
	if err := r.s.fail("ServicePolicyRepository.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.state.policies {
		if p.CategoryId == policy.CategoryId && p.Version == policy.Version {
			return errDuplicate
		}
	}
	policy.Id = uuid.New()
	policy.CreatedAt, policy.UpdatedAt = time.Now(), time.Now()
	for i := range policy.GroupCodes {
		gc := &policy.GroupCodes[i]
		gc.Id, gc.PolicyId = uuid.New(), policy.Id
		for j := range gc.Codes {
			gc.Codes[j].Id, gc.Codes[j].GroupCodeId = uuid.New(), gc.Id
		}
	}
	r.s.state.policies = append(r.s.state.policies, clonePolicy(*policy))
	return nil
}

func (r *policyRepo) UpdateFlags(ctx context.Context, policy *entity.ServicePolicy) error {
	if err := r.s.fail("ServicePolicyRepository.UpdateFlags"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.state.policies {
		p := &r.s.state.policies[i]
		if p.Id == policy.Id {
			p.IsActive, p.IsPromotion, p.IsActiveHomepage = policy.IsActive, policy.IsPromotion, policy.IsActiveHomepage
			p.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *policyRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ServicePolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.policies, policyFields, specs)
	if len(rows) == 0 {
		return nil, nil
	}
	p := clonePolicy(rows[0])
	return &p, nil
}

func (r *policyRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ServicePolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	newest := slices.Clone(r.s.state.policies)
	slices.Reverse(newest)
	rows := selectRows(newest, policyFields, specs)
	out := make([]*entity.ServicePolicy, 0, len(rows))
	for _, p := range rows {
		p := clonePolicy(p)
		out = append(out, &p)
	}
	return out, nil
}

func (r *policyRepo) Exists(ctx context.Context, specs ...specification.Specification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(selectRows(r.s.state.policies, policyFields, specs)) > 0, nil
}

func (r *policyRepo) ClearHomepage(ctx context.Context, categoryId, exceptId uuid.UUID) error {
	if err := r.s.fail("ServicePolicyRepository.ClearHomepage"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.state.policies {
		p := &r.s.state.policies[i]
		if p.CategoryId == categoryId && p.Id != exceptId {
			p.IsActiveHomepage = false
		}
	}
	return nil
}

func (r *policyRepo) CreatePriceOptions(ctx context.Context, options []*entity.PriceOption) error {
	if err := r.s.fail("ServicePolicyRepository.CreatePriceOptions"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range options {
		for _, existing := range r.s.state.options {
			if existing.PolicyId == o.PolicyId && existing.ServiceCode == o.ServiceCode {
				return errDuplicate
			}
		}
		o.Id = uuid.New()
		o.CreatedAt, o.UpdatedAt = time.Now(), time.Now()
		r.s.state.options = append(r.s.state.options, cloneOption(*o))
	}
	return nil
}

func (r *policyRepo) UpsertPriceOption(ctx context.Context, option *entity.PriceOption) error {
	if err := r.s.fail("ServicePolicyRepository.UpsertPriceOption"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.state.options {
		if existing.PolicyId == option.PolicyId && existing.ServiceCode == option.ServiceCode {
			option.Id, option.CreatedAt, option.UpdatedAt = existing.Id, existing.CreatedAt, time.Now()
			r.s.state.options[i] = cloneOption(*option)
			return nil
		}
	}
	option.Id = uuid.New()
	option.CreatedAt, option.UpdatedAt = time.Now(), time.Now()
	r.s.state.options = append(r.s.state.options, cloneOption(*option))
	return nil
}

func (r *policyRepo) FindPriceOptions(ctx context.Context, specs ...specification.Specification) ([]*entity.PriceOption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.options, optionFields, specs)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProductName != rows[j].ProductName {
			return rows[i].ProductName < rows[j].ProductName
		}
		return rows[i].ServiceCode < rows[j].ServiceCode
	})
	out := make([]*entity.PriceOption, 0, len(rows))
	for _, o := range rows {
		o := cloneOption(o)
		out = append(out, &o)
	}
	return out, nil
}

// --- system logs ---

type systemLogRepo struct{ s *Store }

func systemLogFields(l entity.SystemLog) fields {
	return fields{"id": l.Id, "model": l.Model, "page_name": l.PageName, "url": l.URL}
}

func (r *systemLogRepo) Create(ctx context.Context, log *entity.SystemLog) error {
	if err := r.s.fail("SystemLogRepository.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.Id = uuid.New()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.s.state.logs = append(r.s.state.logs, *log)
	return nil
}

func (r *systemLogRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SystemLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := selectRows(r.s.state.logs, systemLogFields, specs)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindAll returns newest first, like the database ordering.
func (r *systemLogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SystemLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	newest := slices.Clone(r.s.state.logs)
	slices.Reverse(newest)
	rows := selectRows(newest, systemLogFields, specs)
	out := make([]*entity.SystemLog, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}

func (r *systemLogRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(selectRows(r.s.state.logs, systemLogFields, specs))), nil
}
