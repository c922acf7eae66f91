package implementation

import (
	"context"
	"errors"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/mapper"
	"myinco-admin-be/internal/model"
	"myinco-admin-be/internal/repository/contract"
	"myinco-admin-be/internal/repository/scope"
	"myinco-admin-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServicePolicyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ServicePolicyMapper
}

func NewServicePolicyRepository(db *gorm.DB) contract.ServicePolicyRepository {
	return &ServicePolicyRepositoryImpl{
		db:     db,
		mapper: mapper.NewServicePolicyMapper(),
	}
}

func (r *ServicePolicyRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ServicePolicyRepositoryImpl) withGroupCodes(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("GroupCodes", scope.OrderByDisplayOrder).
		Preload("GroupCodes.Codes", scope.OrderByDisplayOrder)
}

func (r *ServicePolicyRepositoryImpl) Create(ctx context.Context, policy *entity.ServicePolicy) error {
	m := r.mapper.ToModel(policy)
	if err := r.db.WithContext(ctx).Omit("Category").Create(m).Error; err != nil {
		return err
	}
	categoryName := policy.CategoryName
	*policy = *r.mapper.ToEntity(m)
	policy.CategoryName = categoryName
	return nil
}

func (r *ServicePolicyRepositoryImpl) UpdateFlags(ctx context.Context, policy *entity.ServicePolicy) error {
	return r.db.WithContext(ctx).
		Model(&model.ServicePolicy{}).
		Where("id = ?", policy.Id).
		Updates(map[string]interface{}{
			"is_active":          policy.IsActive,
			"is_promotion":       policy.IsPromotion,
			"is_active_homepage": policy.IsActiveHomepage,
		}).Error
}

func (r *ServicePolicyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ServicePolicy, error) {
	var m model.ServicePolicy
	query := r.applySpecifications(r.withGroupCodes(r.db.WithContext(ctx)), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ServicePolicyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ServicePolicy, error) {
	var models []*model.ServicePolicy
	query := r.applySpecifications(r.withGroupCodes(r.db.WithContext(ctx)).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ServicePolicyRepositoryImpl) Exists(ctx context.Context, specs ...specification.Specification) (bool, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ServicePolicy{}), specs...)
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ServicePolicyRepositoryImpl) ClearHomepage(ctx context.Context, categoryId, exceptId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ServicePolicy{}).
		Where("category_id = ? AND id <> ? AND is_active_homepage = ?", categoryId, exceptId, true).
		Update("is_active_homepage", false).Error
}

func (r *ServicePolicyRepositoryImpl) CreatePriceOptions(ctx context.Context, options []*entity.PriceOption) error {
	if len(options) == 0 {
		return nil
	}
	models := make([]*model.ServicePolicyPriceOption, 0, len(options))
	for _, o := range options {
		models = append(models, r.mapper.PriceOptionToModel(o))
	}
	// Codes already exist; only the join rows are written.
	if err := r.db.WithContext(ctx).Omit("Codes.*").Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		options[i].Id = m.Id
		options[i].CreatedAt = m.CreatedAt
		options[i].UpdatedAt = m.UpdatedAt
	}
	return nil
}

func (r *ServicePolicyRepositoryImpl) UpsertPriceOption(ctx context.Context, option *entity.PriceOption) error {
	db := r.db.WithContext(ctx)
	incoming := r.mapper.PriceOptionToModel(option)

	var existing model.ServicePolicyPriceOption
	err := db.Where("policy_id = ? AND service_code = ?", option.PolicyId, option.ServiceCode).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Omit("Codes.*").Create(incoming).Error; err != nil {
			return err
		}
		option.Id = incoming.Id
		option.CreatedAt = incoming.CreatedAt
		option.UpdatedAt = incoming.UpdatedAt
		return nil
	}
	if err != nil {
		return err
	}

	if err := db.Model(&existing).Updates(map[string]interface{}{
		"product_id":          incoming.ProductId,
		"product_name":        incoming.ProductName,
		"service_description": incoming.ServiceDescription,
		"price":               incoming.Price,
		"is_buy_now":          incoming.IsBuyNow,
	}).Error; err != nil {
		return err
	}
	if err := db.Model(&existing).Omit("Codes.*").Association("Codes").Replace(incoming.Codes); err != nil {
		return err
	}
	option.Id = existing.Id
	option.CreatedAt = existing.CreatedAt
	option.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *ServicePolicyRepositoryImpl) FindPriceOptions(ctx context.Context, specs ...specification.Specification) ([]*entity.PriceOption, error) {
	var models []*model.ServicePolicyPriceOption
	query := r.applySpecifications(
		r.db.WithContext(ctx).Preload("Codes", scope.OrderByDisplayOrder).Order("product_name ASC, service_code ASC"),
		specs...,
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.PriceOptionsToEntities(models), nil
}
