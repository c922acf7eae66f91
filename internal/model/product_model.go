package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Product struct {
	Id                 uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string                      `gorm:"type:varchar(200);uniqueIndex;not null"`
	RepresentativeCode string                      `gorm:"type:varchar(50);uniqueIndex;not null"`
	CategoryId         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Category           *ProductCategory            `gorm:"foreignKey:CategoryId;constraint:OnDelete:RESTRICT"`
	Tags               datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	IsActive           bool                        `gorm:"default:true"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
