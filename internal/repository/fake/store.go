// Package fake is an in-memory unit of work for service and manager tests.
// It understands the specifications of the specification package.
package fake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/contract"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type state struct {
	categories []entity.ProductCategory
	products   []entity.Product
	policies   []entity.ServicePolicy
	options    []entity.PriceOption
	logs       []entity.SystemLog
}

func (s state) clone() state {
	out := state{
		categories: slices.Clone(s.categories),
		products:   make([]entity.Product, len(s.products)),
		policies:   make([]entity.ServicePolicy, len(s.policies)),
		options:    make([]entity.PriceOption, len(s.options)),
		logs:       slices.Clone(s.logs),
	}
	for i, p := range s.products {
		out.products[i] = cloneProduct(p)
	}
	for i, p := range s.policies {
		out.policies[i] = clonePolicy(p)
	}
	for i, o := range s.options {
		out.options[i] = cloneOption(o)
	}
	return out
}

// Store is the shared database of all units of work it creates.
type Store struct {
	mu    sync.Mutex
	state state
	// Fail makes the named repository method return the error.
	Fail map[string]error
	// Commits counts successful commits.
	Commits int
}

func NewStore() *Store {
	return &Store{Fail: map[string]error{}}
}

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

var _ unitofwork.RepositoryFactory = (*Store)(nil)

func (s *Store) fail(method string) error {
	if err, ok := s.Fail[method]; ok {
		return err
	}
	return nil
}

func (s *Store) AddCategory(c entity.ProductCategory) entity.ProductCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	s.state.categories = append(s.state.categories, c)
	return c
}

func (s *Store) AddProduct(p entity.Product) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	s.state.products = append(s.state.products, cloneProduct(p))
	return p
}

func (s *Store) Policies() []entity.ServicePolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().policies
}

func (s *Store) PriceOptions() []entity.PriceOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().options
}

func (s *Store) SystemLogs() []entity.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.logs)
}

// UnitOfWork snapshots the store on Begin and restores it on Rollback.
type UnitOfWork struct {
	store    *Store
	snapshot *state
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := u.store.fail("Begin"); err != nil {
		return err
	}
	u.store.mu.Lock()
	snap := u.store.state.clone()
	u.store.mu.Unlock()
	u.snapshot = &snap
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snapshot = nil
	if err := u.store.fail("Commit"); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.store.Commits++
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.state = *u.snapshot
	u.store.mu.Unlock()
	u.snapshot = nil
	return nil
}

func (u *UnitOfWork) CategoryRepository() contract.CategoryRepository {
	return &categoryRepo{u.store}
}

func (u *UnitOfWork) ProductRepository() contract.ProductRepository {
	return &productRepo{u.store}
}

func (u *UnitOfWork) ServicePolicyRepository() contract.ServicePolicyRepository {
	return &policyRepo{u.store}
}

func (u *UnitOfWork) SystemLogRepository() contract.SystemLogRepository {
	return &systemLogRepo{u.store}
}

// fields exposes the filterable columns of a row.
type fields map[string]any

func like(value any, keyword string) bool {
	s, _ := value.(string)
	return strings.Contains(strings.ToLower(s), strings.ToLower(keyword))
}

func match(spec specification.Specification, f fields) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return f["id"] == s.ID
	case specification.ByName:
		return f["name"] == s.Name
	case specification.ByNames:
		name, _ := f["name"].(string)
		return slices.Contains(s.Names, name)
	case specification.ByRepresentativeCode:
		return f["representative_code"] == s.Code
	case specification.MainCategories:
		return f["kind"] == entity.CategoryKindMain
	case specification.SubCategoriesOf:
		parent, _ := f["parent_id"].(*uuid.UUID)
		return f["kind"] == entity.CategoryKindSub && parent != nil && *parent == s.ParentID
	case specification.ByCategoryID:
		return f["category_id"] == s.CategoryID
	case specification.ByVersion:
		return f["version"] == s.Version
	case specification.ByPolicyID:
		return f["policy_id"] == s.PolicyID
	case specification.ByProductID:
		return f["product_id"] == s.ProductID
	case specification.HomepagePolicies:
		return f["is_active_homepage"] == true
	case specification.ByModel:
		return f["model"] == s.Model
	case specification.ProductKeyword:
		return s.Keyword == "" || like(f["name"], s.Keyword) || like(f["representative_code"], s.Keyword)
	case specification.SystemLogKeyword:
		return s.Keyword == "" || like(f["model"], s.Keyword) || like(f["page_name"], s.Keyword) || like(f["url"], s.Keyword)
	case specification.Pagination:
		return true
	}
	panic(fmt.Sprintf("fake: unsupported specification %T", spec))
}

// selectRows filters items and applies the last Pagination spec.
func selectRows[T any](items []T, fieldsOf func(T) fields, specs []specification.Specification) []T {
	out := []T{}
	var page *specification.Pagination
	for _, item := range items {
		f := fieldsOf(item)
		ok := true
		for _, spec := range specs {
			if p, isPage := spec.(specification.Pagination); isPage {
				page = &p
				continue
			}
			if !match(spec, f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}
	if page != nil {
		start := min(page.Offset, len(out))
		end := len(out)
		if page.Limit > 0 {
			end = min(start+page.Limit, len(out))
		}
		out = out[start:end]
	}
	return out
}

var errDuplicate = errors.New("duplicate key value violates unique constraint")
