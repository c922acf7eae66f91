package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog is an audit record of an admin mutation.
type SystemLog struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Model           string         `gorm:"type:varchar(100);not null;index"`
	ModelIdentifier string         `gorm:"type:varchar(100);index"`
	PageName        string         `gorm:"type:varchar(100)"`
	URL             string         `gorm:"column:url;type:varchar(255)"`
	Method          string         `gorm:"type:varchar(10);not null"`
	UserId          string         `gorm:"type:varchar(64);index"`
	Diff            datatypes.JSON `gorm:"type:jsonb"`
	ExtraContent    string         `gorm:"type:text"`
	StatusCode      int            `gorm:"default:200"`
	CreatedAt       time.Time      `gorm:"default:now();not null;index"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}
