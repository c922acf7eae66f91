package entity

import (
	"time"

	"github.com/google/uuid"
)

type CategoryKind string

const (
	CategoryKindMain CategoryKind = "main"
	CategoryKindSub  CategoryKind = "sub"
)

type ProductCategory struct {
	Id         uuid.UUID
	Name       string
	Kind       CategoryKind
	ParentId   *uuid.UUID
	ParentName string // Filled when the parent is preloaded
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsSub reports a sub category with a parent.
func (c *ProductCategory) IsSub() bool {
	return c.Kind == CategoryKindSub && c.ParentId != nil
}

type Product struct {
	Id                 uuid.UUID
	Name               string
	RepresentativeCode string
	CategoryId         uuid.UUID
	CategoryName       string
	Tags               []string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
