package contract

import (
	"context"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.ProductCategory) error
	Update(ctx context.Context, category *entity.ProductCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductCategory, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductCategory, error)
	// CountReferences counts the policies and products filed under a category.
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}
