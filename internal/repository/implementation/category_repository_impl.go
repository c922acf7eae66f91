package implementation

import (
	"context"
	"errors"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/mapper"
	"myinco-admin-be/internal/model"
	"myinco-admin-be/internal/repository/contract"
	"myinco-admin-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CategoryMapper
}

func NewCategoryRepository(db *gorm.DB) contract.CategoryRepository {
	return &CategoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewCategoryMapper(),
	}
}

func (r *CategoryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entity.ProductCategory) error {
	m := r.mapper.ToModel(category)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*category = *r.mapper.ToEntity(m)
	return nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entity.ProductCategory) error {
	m := r.mapper.ToModel(category)
	if err := r.db.WithContext(ctx).Omit("Parent").Save(m).Error; err != nil {
		return err
	}
	parentName := category.ParentName
	*category = *r.mapper.ToEntity(m)
	category.ParentName = parentName
	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProductCategory{}, "id = ?", id).Error
}

func (r *CategoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductCategory, error) {
	var m model.ProductCategory
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Parent"), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CategoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductCategory, error) {
	var models []*model.ProductCategory
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Parent").Order("name ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CategoryRepositoryImpl) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var policies, products int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ServicePolicy{}).Where("category_id = ?", id).Count(&policies).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, err
	}
	return policies + products, nil
}
