package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryKindMain = "main"
	CategoryKindSub  = "sub"
)

// ProductCategory is a main category or a sub category under one.
type ProductCategory struct {
	Id        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string           `gorm:"type:varchar(100);uniqueIndex;not null"`
	Kind      string           `gorm:"type:varchar(10);not null;default:'sub';index"`
	ParentId  *uuid.UUID       `gorm:"type:uuid;index"`
	Parent    *ProductCategory `gorm:"foreignKey:ParentId"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
