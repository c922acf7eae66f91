package mapper

import (
	"strings"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/pkg/servicecode"
)

// CategoryToResponse converts entity to category response DTO
func CategoryToResponse(c *entity.ProductCategory) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		Id:         c.Id,
		Name:       c.Name,
		Kind:       string(c.Kind),
		ParentId:   c.ParentId,
		ParentName: c.ParentName,
		CreatedAt:  c.CreatedAt,
	}
}

func CategoriesToResponse(categories []*entity.ProductCategory) []*dto.CategoryResponse {
	res := make([]*dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, CategoryToResponse(c))
	}
	return res
}

// ProductToResponse converts entity to product response DTO
func ProductToResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ProductResponse{
		Id:                 p.Id,
		Name:               p.Name,
		RepresentativeCode: p.RepresentativeCode,
		CategoryId:         p.CategoryId,
		CategoryName:       p.CategoryName,
		Tags:               tags,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

func ProductsToResponse(products []*entity.Product) []*dto.ProductResponse {
	res := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, ProductToResponse(p))
	}
	return res
}

func codesToResponse(codes []entity.Code) []dto.CodeResponse {
	res := make([]dto.CodeResponse, 0, len(codes))
	for _, c := range codes {
		res = append(res, dto.CodeResponse{Id: c.Id, Name: c.Name, DisplayOrder: c.DisplayOrder})
	}
	return res
}

// PolicyToResponse converts entity to policy detail DTO. OptionText is the
// ';' joined code list an admin edits on the each-create form.
func PolicyToResponse(p *entity.ServicePolicy) *dto.PolicyResponse {
	if p == nil {
		return nil
	}
	groups := make([]dto.GroupCodeResponse, 0, len(p.GroupCodes))
	for _, gc := range p.GroupCodes {
		names := make([]string, 0, len(gc.Codes))
		for _, c := range gc.Codes {
			names = append(names, c.Name)
		}
		groups = append(groups, dto.GroupCodeResponse{
			Id:           gc.Id,
			Name:         gc.Name,
			DisplayOrder: gc.DisplayOrder,
			IsRequired:   gc.IsRequired,
			OptionText:   strings.Join(names, ";"),
			Codes:        codesToResponse(gc.Codes),
		})
	}
	transforms := map[string]string(p.CodeTransforms)
	if transforms == nil {
		transforms = map[string]string{}
	}
	return &dto.PolicyResponse{
		Id:               p.Id,
		CategoryId:       p.CategoryId,
		CategoryName:     p.CategoryName,
		Version:          p.Version,
		DescRule:         p.DescRule,
		CodeRule:         p.CodeRule,
		CodeTransforms:   transforms,
		IsActive:         p.IsActive,
		IsPromotion:      p.IsPromotion,
		IsActiveHomepage: p.IsActiveHomepage,
		GroupCodes:       groups,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func PoliciesToResponse(policies []*entity.ServicePolicy) []*dto.PolicyResponse {
	res := make([]*dto.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		res = append(res, PolicyToResponse(p))
	}
	return res
}

func PriceOptionsToResponse(options []*entity.PriceOption) []*dto.PriceOptionResponse {
	res := make([]*dto.PriceOptionResponse, 0, len(options))
	for _, o := range options {
		res = append(res, &dto.PriceOptionResponse{
			Id:                 o.Id,
			ProductId:          o.ProductId,
			ProductName:        o.ProductName,
			ServiceCode:        o.ServiceCode,
			ServiceDescription: o.ServiceDescription,
			Price:              o.Price.String(),
			IsBuyNow:           o.IsBuyNow,
			Codes:              codesToResponse(o.Codes),
		})
	}
	return res
}

// PriceOptionsToRows renders options in the service layout for export.
func PriceOptionsToRows(options []*entity.PriceOption) []servicecode.Row {
	rows := make([]servicecode.Row, 0, len(options))
	for _, o := range options {
		rows = append(rows, servicecode.Row{
			ProductName: o.ProductName,
			ServiceCode: o.ServiceCode,
			Description: o.ServiceDescription,
			IsBuyNow:    o.IsBuyNow,
			Price:       o.Price.String(),
		})
	}
	return rows
}

func CandidatesToResponse(candidates []servicecode.Candidate, total int) *dto.CandidateListResponse {
	res := &dto.CandidateListResponse{Total: total, Candidates: make([]dto.CandidateResponse, 0, len(candidates))}
	for _, c := range candidates {
		res.Candidates = append(res.Candidates, dto.CandidateResponse{Code: c.Code, Description: c.Description, Options: c.Options})
	}
	return res
}

// SystemLogToResponse converts entity to system log DTO
func SystemLogToResponse(l *entity.SystemLog) *dto.SystemLogResponse {
	if l == nil {
		return nil
	}
	return &dto.SystemLogResponse{
		Id:              l.Id,
		Model:           l.Model,
		ModelIdentifier: l.ModelIdentifier,
		PageName:        l.PageName,
		URL:             l.URL,
		Method:          l.Method,
		UserId:          l.UserId,
		Diff:            l.Diff,
		ExtraContent:    l.ExtraContent,
		StatusCode:      l.StatusCode,
		CreatedAt:       l.CreatedAt,
	}
}

func SystemLogsToResponse(logs []*entity.SystemLog) []*dto.SystemLogResponse {
	res := make([]*dto.SystemLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, SystemLogToResponse(l))
	}
	return res
}
