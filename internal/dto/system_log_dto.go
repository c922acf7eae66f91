package dto

import (
	"time"

	"myinco-admin-be/pkg/audit"

	"github.com/google/uuid"
)

type SystemLogListRequest struct {
	Keyword string `query:"keyword"`
	Model   string `query:"model"`
	Page    int    `query:"page"`
	Limit   int    `query:"limit"`
}

type SystemLogResponse struct {
	Id              uuid.UUID      `json:"id"`
	Model           string         `json:"model"`
	ModelIdentifier string         `json:"model_identifier"`
	PageName        string         `json:"page_name"`
	URL             string         `json:"url"`
	Method          string         `json:"method"`
	UserId          string         `json:"user_id"`
	Diff            []audit.Change `json:"diff"`
	ExtraContent    string         `json:"extra_content,omitempty"`
	StatusCode      int            `json:"status_code"`
	CreatedAt       time.Time      `json:"created_at"`
}
