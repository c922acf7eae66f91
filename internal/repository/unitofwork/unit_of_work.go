package unitofwork

import (
	"context"

	"myinco-admin-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CategoryRepository() contract.CategoryRepository
	ProductRepository() contract.ProductRepository
	ServicePolicyRepository() contract.ServicePolicyRepository
	SystemLogRepository() contract.SystemLogRepository
}

// RunInTransaction commits when fn succeeds and rolls back when it fails or
// panics. fn must use the repositories of uow.
func RunInTransaction(ctx context.Context, uow UnitOfWork, fn func() error) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
	}()
	if err := fn(); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
