package dto

import (
	"time"

	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/google/uuid"
)

// Rows are sent as arrays of cell values in the column order of the sheet
// they came from.

// RequestMeta identifies who asked for a change and through which URL; it
// ends up on the audit record.
type RequestMeta struct {
	UserId string
	URL    string
}

// --- Verify ---

// BatchMeta is the RULE/CODE/INFO block extracted from an upload.
type BatchMeta struct {
	Rule spreadsheet.Rule             `json:"RULE"`
	Code servicecode.GroupCodes       `json:"CODE"`
	Info map[string]map[string]string `json:"INFO"`
}

// BatchVerifyRequest verifies edited upload rows. Version feeds the
// {version} token when candidate checks run.
type BatchVerifyRequest struct {
	Rows    [][]interface{} `json:"rows" validate:"required"`
	Meta    BatchMeta       `json:"meta"`
	Version string          `json:"version,omitempty"`
}

type EachVerifyRequest struct {
	Rows [][]interface{} `json:"rows" validate:"required"`
}

type ServiceVerifyRequest struct {
	PolicyId  uuid.UUID       `json:"policy_id" validate:"required"`
	ProductId uuid.UUID       `json:"product_id" validate:"required"`
	Rows      [][]interface{} `json:"rows" validate:"required"`
}

// VerifyResponse is the data part of a verify answer; errors and counts
// travel in the envelope.
type VerifyResponse struct {
	Rows    [][]interface{}                 `json:"rows"`
	Meta    map[string]servicecode.CellMeta `json:"meta"`
	Details []servicecode.CellError         `json:"details"`
	Results []servicecode.RowResult         `json:"results"`
}

type BatchTestResponse struct {
	UploadId string          `json:"upload_id"`
	Rows     [][]interface{} `json:"rows"`
	Meta     BatchMeta       `json:"meta"`
	Verify   VerifyResponse  `json:"verify"`
}

// --- Create ---

type BatchCreateRequest struct {
	SubCategoryId    uuid.UUID       `json:"sub_category" validate:"required"`
	Version          string          `json:"version" validate:"required,max=50"`
	UploadId         string          `json:"upload_id,omitempty"`
	Rows             [][]interface{} `json:"rows,omitempty"`
	Meta             *BatchMeta      `json:"meta,omitempty"`
	IsActive         *bool           `json:"is_active,omitempty"`
	IsPromotion      bool            `json:"is_promotion"`
	IsActiveHomepage bool            `json:"is_active_homepage"`
}

type CodeOptionRequest struct {
	OptionName  string `json:"option_name" validate:"required,max=100"`
	OptionValue string `json:"option_value" validate:"required"` // ';' separated
}

type EachCreateRequest struct {
	SubCategoryId    uuid.UUID           `json:"sub_category" validate:"required"`
	Version          string              `json:"version" validate:"required,max=50"`
	DescRule         string              `json:"desc_rule"`
	CodeRule         string              `json:"code_rule"`
	CodeTransforms   map[string]string   `json:"code_transforms,omitempty"`
	CodeOptions      []CodeOptionRequest `json:"code_options" validate:"required,min=1,dive"`
	IsActive         *bool               `json:"is_active,omitempty"`
	IsPromotion      bool                `json:"is_promotion"`
	IsActiveHomepage bool                `json:"is_active_homepage"`
}

type CreatePolicyResponse struct {
	PolicyId    uuid.UUID `json:"policy_id"`
	OptionCount int       `json:"option_count"`
}

// --- Policy ---

type UpdatePolicyRequest struct {
	IsActive         *bool `json:"is_active,omitempty"`
	IsPromotion      *bool `json:"is_promotion,omitempty"`
	IsActiveHomepage *bool `json:"is_active_homepage,omitempty"`
}

type CodeResponse struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
}

type GroupCodeResponse struct {
	Id           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	DisplayOrder int            `json:"display_order"`
	IsRequired   bool           `json:"is_required"`
	OptionText   string         `json:"option_text"` // code names joined by ';'
	Codes        []CodeResponse `json:"codes"`
}

type PolicyResponse struct {
	Id               uuid.UUID           `json:"id"`
	CategoryId       uuid.UUID           `json:"category_id"`
	CategoryName     string              `json:"category_name"`
	Version          string              `json:"version"`
	DescRule         string              `json:"desc_rule"`
	CodeRule         string              `json:"code_rule"`
	CodeTransforms   map[string]string   `json:"code_transforms"`
	IsActive         bool                `json:"is_active"`
	IsPromotion      bool                `json:"is_promotion"`
	IsActiveHomepage bool                `json:"is_active_homepage"`
	GroupCodes       []GroupCodeResponse `json:"group_codes"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type PolicyListRequest struct {
	CategoryId string `query:"category_id"`
}

type PriceOptionResponse struct {
	Id                 uuid.UUID      `json:"id"`
	ProductId          uuid.UUID      `json:"product_id"`
	ProductName        string         `json:"product_name"`
	ServiceCode        string         `json:"service_code"`
	ServiceDescription string         `json:"service_description"`
	Price              string         `json:"price"`
	IsBuyNow           bool           `json:"is_buy_now"`
	Codes              []CodeResponse `json:"codes"`
}

type CandidateResponse struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Options     map[string]string `json:"options"`
}

type CandidateListResponse struct {
	Total      int                 `json:"total"`
	Candidates []CandidateResponse `json:"candidates"`
}

type SaveServiceOptionsRequest struct {
	ProductId uuid.UUID       `json:"product_id" validate:"required"`
	Rows      [][]interface{} `json:"rows" validate:"required,min=1"`
}

type SaveServiceOptionsResponse struct {
	Saved int `json:"saved"`
}
