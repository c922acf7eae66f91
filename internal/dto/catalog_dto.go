package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Categories ---

type CategoryResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	ParentId   *uuid.UUID `json:"parent_id,omitempty"`
	ParentName string     `json:"parent_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name     string    `json:"name" validate:"required,max=100"`
	ParentId uuid.UUID `json:"parent_id" validate:"required"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// --- Products ---

type ProductListRequest struct {
	Keyword    string `query:"keyword"`
	CategoryId string `query:"category_id"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
}

type CreateProductRequest struct {
	Name               string    `json:"name" validate:"required,max=200"`
	RepresentativeCode string    `json:"representative_code" validate:"required,max=50"`
	CategoryId         uuid.UUID `json:"category_id" validate:"required"`
	Tags               []string  `json:"tags,omitempty"`
}

type ProductResponse struct {
	Id                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	RepresentativeCode string    `json:"representative_code"`
	CategoryId         uuid.UUID `json:"category_id"`
	CategoryName       string    `json:"category_name"`
	Tags               []string  `json:"tags"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// --- Paging ---

type PageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
