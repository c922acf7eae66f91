package entity

import (
	"time"

	"myinco-admin-be/pkg/audit"

	"github.com/google/uuid"
)

type SystemLog struct {
	Id              uuid.UUID
	Model           string
	ModelIdentifier string
	PageName        string
	URL             string
	Method          string
	UserId          string
	Diff            []audit.Change
	ExtraContent    string
	StatusCode      int
	CreatedAt       time.Time
}
