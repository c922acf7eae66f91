package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByVersion struct {
	Version string
}

func (s ByVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("version = ?", s.Version)
}

type ByPolicyID struct {
	PolicyID uuid.UUID
}

func (s ByPolicyID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("policy_id = ?", s.PolicyID)
}

type ByProductID struct {
	ProductID uuid.UUID
}

func (s ByProductID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id = ?", s.ProductID)
}

type HomepagePolicies struct{}

func (s HomepagePolicies) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active_homepage = ?", true)
}

// SystemLogKeyword matches the model, page name or URL of a log.
type SystemLogKeyword struct {
	Keyword string
}

func (s SystemLogKeyword) Apply(db *gorm.DB) *gorm.DB {
	if s.Keyword == "" {
		return db
	}
	like := "%" + s.Keyword + "%"
	return db.Where("model ILIKE ? OR page_name ILIKE ? OR url ILIKE ?", like, like, like)
}

type ByModel struct {
	Model string
}

func (s ByModel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("model = ?", s.Model)
}
