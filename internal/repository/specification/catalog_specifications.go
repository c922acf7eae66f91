package specification

import (
	"myinco-admin-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type ByNames struct {
	Names []string
}

func (s ByNames) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name IN ?", s.Names)
}

type ByRepresentativeCode struct {
	Code string
}

func (s ByRepresentativeCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("representative_code = ?", s.Code)
}

type MainCategories struct{}

func (s MainCategories) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", model.CategoryKindMain)
}

type SubCategoriesOf struct {
	ParentID uuid.UUID
}

func (s SubCategoriesOf) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ? AND parent_id = ?", model.CategoryKindSub, s.ParentID)
}

type ByCategoryID struct {
	CategoryID uuid.UUID
}

func (s ByCategoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

// ProductKeyword matches the name or representative code.
type ProductKeyword struct {
	Keyword string
}

func (s ProductKeyword) Apply(db *gorm.DB) *gorm.DB {
	if s.Keyword == "" {
		return db
	}
	like := "%" + s.Keyword + "%"
	return db.Where("name ILIKE ? OR representative_code ILIKE ?", like, like)
}
