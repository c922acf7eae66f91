package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ServicePolicy is one versioned rule set of a sub category. At most one
// policy per category may be shown on the homepage.
type ServicePolicy struct {
	Id               uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryId       uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex:idx_service_policy_category_version,priority:1;uniqueIndex:idx_service_policy_homepage,where:is_active_homepage = true"`
	Category         *ProductCategory                     `gorm:"foreignKey:CategoryId;constraint:OnDelete:RESTRICT"`
	Version          string                               `gorm:"type:varchar(50);not null;uniqueIndex:idx_service_policy_category_version,priority:2"`
	DescRule         string                               `gorm:"type:text;not null;default:''"`
	CodeRule         string                               `gorm:"type:text;not null;default:''"`
	CodeTransforms   datatypes.JSONType[map[string]string] `gorm:"type:jsonb"`
	IsActive         bool                                 `gorm:"default:true"`
	IsPromotion      bool                                 `gorm:"default:false"`
	IsActiveHomepage bool                                 `gorm:"default:false"`
	GroupCodes       []ServicePolicyGroupCode             `gorm:"foreignKey:PolicyId;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                            `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                            `gorm:"autoUpdateTime"`
}

func (ServicePolicy) TableName() string {
	return "service_policies"
}

type ServicePolicyGroupCode struct {
	Id           uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PolicyId     uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name         string              `gorm:"type:varchar(100);not null"`
	DisplayOrder int                 `gorm:"not null;default:0"`
	IsRequired   bool                `gorm:"default:true"`
	Codes        []ServicePolicyCode `gorm:"foreignKey:GroupCodeId;constraint:OnDelete:CASCADE"`
}

func (ServicePolicyGroupCode) TableName() string {
	return "service_policy_group_codes"
}

type ServicePolicyCode struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupCodeId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(200);not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
}

func (ServicePolicyCode) TableName() string {
	return "service_policy_codes"
}

// ServicePolicyPriceOption is one sellable line of a policy for a product.
type ServicePolicyPriceOption struct {
	Id                 uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PolicyId           uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_price_option_policy_code,priority:1"`
	ProductId          uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductName        string              `gorm:"type:varchar(200);not null"`
	ServiceCode        string              `gorm:"type:varchar(150);not null;uniqueIndex:idx_price_option_policy_code,priority:2"`
	ServiceDescription string              `gorm:"type:text;not null"`
	Price              decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0"`
	IsBuyNow           bool                `gorm:"default:false"`
	Codes              []ServicePolicyCode `gorm:"many2many:service_policy_price_option_codes;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime"`
}

func (ServicePolicyPriceOption) TableName() string {
	return "service_policy_price_options"
}
