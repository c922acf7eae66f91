package entity

import (
	"time"

	"myinco-admin-be/pkg/servicecode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServicePolicy struct {
	Id               uuid.UUID
	CategoryId       uuid.UUID
	CategoryName     string
	Version          string
	DescRule         string
	CodeRule         string
	CodeTransforms   servicecode.TransformSpec
	IsActive         bool
	IsPromotion      bool
	IsActiveHomepage bool
	GroupCodes       []GroupCode // Ordered by DisplayOrder
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Rules exposes the policy to the code generator.
func (p *ServicePolicy) Rules() servicecode.PolicyRules {
	groups := make(servicecode.GroupCodes, 0, len(p.GroupCodes))
	for _, gc := range p.GroupCodes {
		names := make([]string, 0, len(gc.Codes))
		for _, c := range gc.Codes {
			names = append(names, c.Name)
		}
		groups = append(groups, servicecode.GroupCode{Name: gc.Name, Codes: names})
	}
	return servicecode.PolicyRules{
		Version:    p.Version,
		DescRule:   p.DescRule,
		CodeRule:   p.CodeRule,
		Transforms: p.CodeTransforms,
		GroupCodes: groups,
	}
}

// FindCode returns the code named name inside group.
func (p *ServicePolicy) FindCode(group, name string) (*Code, bool) {
	for i := range p.GroupCodes {
		if p.GroupCodes[i].Name != group {
			continue
		}
		for j := range p.GroupCodes[i].Codes {
			if p.GroupCodes[i].Codes[j].Name == name {
				return &p.GroupCodes[i].Codes[j], true
			}
		}
	}
	return nil, false
}

type GroupCode struct {
	Id           uuid.UUID
	PolicyId     uuid.UUID
	Name         string
	DisplayOrder int
	IsRequired   bool
	Codes        []Code
}

type Code struct {
	Id           uuid.UUID
	GroupCodeId  uuid.UUID
	Name         string
	DisplayOrder int
}

type PriceOption struct {
	Id                 uuid.UUID
	PolicyId           uuid.UUID
	ProductId          uuid.UUID
	ProductName        string
	ServiceCode        string
	ServiceDescription string
	Price              decimal.Decimal
	IsBuyNow           bool
	Codes              []Code
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
