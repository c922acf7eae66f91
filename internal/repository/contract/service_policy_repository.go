package contract

import (
	"context"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ServicePolicyRepository interface {
	// Create inserts the policy with its group codes and codes and fills in
	// the generated ids.
	Create(ctx context.Context, policy *entity.ServicePolicy) error
	UpdateFlags(ctx context.Context, policy *entity.ServicePolicy) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ServicePolicy, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ServicePolicy, error)
	Exists(ctx context.Context, specs ...specification.Specification) (bool, error)
	// ClearHomepage unsets the homepage flag of every policy of the category
	// except exceptId.
	ClearHomepage(ctx context.Context, categoryId, exceptId uuid.UUID) error

	CreatePriceOptions(ctx context.Context, options []*entity.PriceOption) error
	// UpsertPriceOption matches on (policy, service code) and replaces the
	// option's codes.
	UpsertPriceOption(ctx context.Context, option *entity.PriceOption) error
	FindPriceOptions(ctx context.Context, specs ...specification.Specification) ([]*entity.PriceOption, error)
}
