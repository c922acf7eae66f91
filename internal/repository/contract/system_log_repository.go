package contract

import (
	"context"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/repository/specification"
)

type SystemLogRepository interface {
	Create(ctx context.Context, log *entity.SystemLog) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SystemLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SystemLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
