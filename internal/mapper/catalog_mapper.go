package mapper

import (
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/model"
)

type CategoryMapper struct{}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{}
}

func (m *CategoryMapper) ToEntity(mdl *model.ProductCategory) *entity.ProductCategory {
	if mdl == nil {
		return nil
	}
	e := &entity.ProductCategory{
		Id:        mdl.Id,
		Name:      mdl.Name,
		Kind:      entity.CategoryKind(mdl.Kind),
		ParentId:  mdl.ParentId,
		CreatedAt: mdl.CreatedAt,
		UpdatedAt: mdl.UpdatedAt,
	}
	if mdl.Parent != nil {
		e.ParentName = mdl.Parent.Name
	}
	return e
}

func (m *CategoryMapper) ToModel(e *entity.ProductCategory) *model.ProductCategory {
	if e == nil {
		return nil
	}
	return &model.ProductCategory{
		Id:        e.Id,
		Name:      e.Name,
		Kind:      string(e.Kind),
		ParentId:  e.ParentId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *CategoryMapper) ToEntities(models []*model.ProductCategory) []*entity.ProductCategory {
	entities := make([]*entity.ProductCategory, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(mdl *model.Product) *entity.Product {
	if mdl == nil {
		return nil
	}
	e := &entity.Product{
		Id:                 mdl.Id,
		Name:               mdl.Name,
		RepresentativeCode: mdl.RepresentativeCode,
		CategoryId:         mdl.CategoryId,
		Tags:               []string(mdl.Tags),
		IsActive:           mdl.IsActive,
		CreatedAt:          mdl.CreatedAt,
		UpdatedAt:          mdl.UpdatedAt,
	}
	if mdl.Category != nil {
		e.CategoryName = mdl.Category.Name
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}

func (m *ProductMapper) ToModel(e *entity.Product) *model.Product {
	if e == nil {
		return nil
	}
	return &model.Product{
		Id:                 e.Id,
		Name:               e.Name,
		RepresentativeCode: e.RepresentativeCode,
		CategoryId:         e.CategoryId,
		Tags:               e.Tags,
		IsActive:           e.IsActive,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func (m *ProductMapper) ToEntities(models []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
