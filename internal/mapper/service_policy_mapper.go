package mapper

import (
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/model"
	"myinco-admin-be/pkg/servicecode"

	"gorm.io/datatypes"
)

type ServicePolicyMapper struct{}

func NewServicePolicyMapper() *ServicePolicyMapper {
	return &ServicePolicyMapper{}
}

func (m *ServicePolicyMapper) ToEntity(mdl *model.ServicePolicy) *entity.ServicePolicy {
	if mdl == nil {
		return nil
	}
	e := &entity.ServicePolicy{
		Id:               mdl.Id,
		CategoryId:       mdl.CategoryId,
		Version:          mdl.Version,
		DescRule:         mdl.DescRule,
		CodeRule:         mdl.CodeRule,
		CodeTransforms:   servicecode.TransformSpec(mdl.CodeTransforms.Data()),
		IsActive:         mdl.IsActive,
		IsPromotion:      mdl.IsPromotion,
		IsActiveHomepage: mdl.IsActiveHomepage,
		GroupCodes:       make([]entity.GroupCode, 0, len(mdl.GroupCodes)),
		CreatedAt:        mdl.CreatedAt,
		UpdatedAt:        mdl.UpdatedAt,
	}
	if mdl.Category != nil {
		e.CategoryName = mdl.Category.Name
	}
	for _, gc := range mdl.GroupCodes {
		e.GroupCodes = append(e.GroupCodes, entity.GroupCode{
			Id:           gc.Id,
			PolicyId:     gc.PolicyId,
			Name:         gc.Name,
			DisplayOrder: gc.DisplayOrder,
			IsRequired:   gc.IsRequired,
			Codes:        m.CodesToEntities(gc.Codes),
		})
	}
	return e
}

// ToModel maps the policy and its group codes; nested ids are kept so gorm
// treats known rows as existing.
func (m *ServicePolicyMapper) ToModel(e *entity.ServicePolicy) *model.ServicePolicy {
	if e == nil {
		return nil
	}
	transforms := map[string]string(e.CodeTransforms)
	if transforms == nil {
		transforms = map[string]string{}
	}
	mdl := &model.ServicePolicy{
		Id:               e.Id,
		CategoryId:       e.CategoryId,
		Version:          e.Version,
		DescRule:         e.DescRule,
		CodeRule:         e.CodeRule,
		CodeTransforms:   datatypes.NewJSONType(transforms),
		IsActive:         e.IsActive,
		IsPromotion:      e.IsPromotion,
		IsActiveHomepage: e.IsActiveHomepage,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	for _, gc := range e.GroupCodes {
		mdl.GroupCodes = append(mdl.GroupCodes, model.ServicePolicyGroupCode{
			Id:           gc.Id,
			PolicyId:     gc.PolicyId,
			Name:         gc.Name,
			DisplayOrder: gc.DisplayOrder,
			IsRequired:   gc.IsRequired,
			Codes:        m.CodesToModels(gc.Codes),
		})
	}
	return mdl
}

func (m *ServicePolicyMapper) ToEntities(models []*model.ServicePolicy) []*entity.ServicePolicy {
	entities := make([]*entity.ServicePolicy, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

func (m *ServicePolicyMapper) CodesToEntities(codes []model.ServicePolicyCode) []entity.Code {
	out := make([]entity.Code, 0, len(codes))
	for _, c := range codes {
		out = append(out, entity.Code{Id: c.Id, GroupCodeId: c.GroupCodeId, Name: c.Name, DisplayOrder: c.DisplayOrder})
	}
	return out
}

func (m *ServicePolicyMapper) CodesToModels(codes []entity.Code) []model.ServicePolicyCode {
	out := make([]model.ServicePolicyCode, 0, len(codes))
	for _, c := range codes {
		out = append(out, model.ServicePolicyCode{Id: c.Id, GroupCodeId: c.GroupCodeId, Name: c.Name, DisplayOrder: c.DisplayOrder})
	}
	return out
}

func (m *ServicePolicyMapper) PriceOptionToEntity(mdl *model.ServicePolicyPriceOption) *entity.PriceOption {
	if mdl == nil {
		return nil
	}
	return &entity.PriceOption{
		Id:                 mdl.Id,
		PolicyId:           mdl.PolicyId,
		ProductId:          mdl.ProductId,
		ProductName:        mdl.ProductName,
		ServiceCode:        mdl.ServiceCode,
		ServiceDescription: mdl.ServiceDescription,
		Price:              mdl.Price,
		IsBuyNow:           mdl.IsBuyNow,
		Codes:              m.CodesToEntities(mdl.Codes),
		CreatedAt:          mdl.CreatedAt,
		UpdatedAt:          mdl.UpdatedAt,
	}
}

// PriceOptionToModel links codes by id only; the codes themselves are never
// written through a price option.
func (m *ServicePolicyMapper) PriceOptionToModel(e *entity.PriceOption) *model.ServicePolicyPriceOption {
	if e == nil {
		return nil
	}
	mdl := &model.ServicePolicyPriceOption{
		Id:                 e.Id,
		PolicyId:           e.PolicyId,
		ProductId:          e.ProductId,
		ProductName:        e.ProductName,
		ServiceCode:        e.ServiceCode,
		ServiceDescription: e.ServiceDescription,
		Price:              e.Price,
		IsBuyNow:           e.IsBuyNow,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	for _, c := range e.Codes {
		mdl.Codes = append(mdl.Codes, model.ServicePolicyCode{Id: c.Id})
	}
	return mdl
}

func (m *ServicePolicyMapper) PriceOptionsToEntities(models []*model.ServicePolicyPriceOption) []*entity.PriceOption {
	entities := make([]*entity.PriceOption, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.PriceOptionToEntity(mdl))
	}
	return entities
}
