// Package catalog manages product categories and products.
package catalog

import (
	"context"
	"errors"
	"strings"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrParentNotMain         = errors.New("parent must be a main category")
	ErrCategoryNameRequired  = errors.New("category name is required")
	ErrDuplicateCategoryName = errors.New("category name already exists")
	ErrCategoryInUse         = errors.New("category is referenced by policies or products")
	ErrProductNotFound       = errors.New("product not found")
	ErrDuplicateProduct      = errors.New("product name or representative code already exists")
	ErrProductCategory       = errors.New("products must be filed under a sub category")
)

// Manager handles catalog operations
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) MainCategories(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.ProductCategory, error) {
	return uow.CategoryRepository().FindAll(ctx, specification.MainCategories{})
}

func (m *Manager) SubCategories(ctx context.Context, uow unitofwork.UnitOfWork, parentId uuid.UUID) ([]*entity.ProductCategory, error) {
	if _, err := m.findCategory(ctx, uow, parentId); err != nil {
		return nil, err
	}
	return uow.CategoryRepository().FindAll(ctx, specification.SubCategoriesOf{ParentID: parentId})
}

// CreateSubCategory files a new sub category under a main category.
func (m *Manager) CreateSubCategory(ctx context.Context, uow unitofwork.UnitOfWork, parentId uuid.UUID, name string) (*entity.ProductCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	parent, err := m.findCategory(ctx, uow, parentId)
	if err != nil {
		return nil, err
	}
	if parent.Kind != entity.CategoryKindMain {
		return nil, ErrParentNotMain
	}
	if err := m.ensureUniqueName(ctx, uow, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &entity.ProductCategory{
		Name:       name,
		Kind:       entity.CategoryKindSub,
		ParentId:   &parent.Id,
		ParentName: parent.Name,
	}
	if err := uow.CategoryRepository().Create(ctx, category); err != nil {
		return nil, err
	}
	category.ParentName = parent.Name
	return category, nil
}

func (m *Manager) Rename(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, name string) (before, after *entity.ProductCategory, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrCategoryNameRequired
	}
	before, err = m.findCategory(ctx, uow, id)
	if err != nil {
		return nil, nil, err
	}
	if err := m.ensureUniqueName(ctx, uow, name, id); err != nil {
		return nil, nil, err
	}

	renamed := *before
	renamed.Name = name
	if err := uow.CategoryRepository().Update(ctx, &renamed); err != nil {
		return nil, nil, err
	}
	return before, &renamed, nil
}

// Delete removes a category nothing refers to.
func (m *Manager) Delete(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.ProductCategory, error) {
	category, err := m.findCategory(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	refs, err := uow.CategoryRepository().CountReferences(ctx, id)
	if err != nil {
		return nil, err
	}
	if refs > 0 {
		return nil, ErrCategoryInUse
	}
	if category.Kind == entity.CategoryKindMain {
		children, err := uow.CategoryRepository().FindAll(ctx, specification.SubCategoriesOf{ParentID: id})
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			return nil, ErrCategoryInUse
		}
	}
	if err := uow.CategoryRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	return category, nil
}

type ProductInput struct {
	Name               string
	RepresentativeCode string
	CategoryId         uuid.UUID
	Tags               []string
}

func (m *Manager) CreateProduct(ctx context.Context, uow unitofwork.UnitOfWork, in ProductInput) (*entity.Product, error) {
	category, err := m.findCategory(ctx, uow, in.CategoryId)
	if err != nil {
		return nil, err
	}
	if !category.IsSub() {
		return nil, ErrProductCategory
	}

	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.RepresentativeCode)
	for _, spec := range []specification.Specification{
		specification.ByName{Name: name},
		specification.ByRepresentativeCode{Code: code},
	} {
		existing, err := uow.ProductRepository().FindOne(ctx, spec)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateProduct
		}
	}

	tags := []string{}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	product := &entity.Product{
		Name:               name,
		RepresentativeCode: code,
		CategoryId:         category.Id,
		CategoryName:       category.Name,
		Tags:               tags,
		IsActive:           true,
	}
	if err := uow.ProductRepository().Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
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

func (m *Manager) findCategory(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.ProductCategory, error) {
	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (m *Manager) ensureUniqueName(ctx context.Context, uow unitofwork.UnitOfWork, name string, self uuid.UUID) error {
	existing, err := uow.CategoryRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return err
	}
	if existing != nil && existing.Id != self {
		return ErrDuplicateCategoryName
	}
	return nil
}
