package unitofwork

import (
	"context"

	"staticlink-core/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BundleRepository() contract.BundleRepository
}
