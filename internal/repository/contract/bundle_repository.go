package contract

import (
	"context"

	"github.com/google/uuid"

	"staticlink-core/internal/entity"
	"staticlink-core/internal/repository/specification"
)

type BundleRepository interface {
	Create(ctx context.Context, bundle *entity.Bundle) error
	Update(ctx context.Context, bundle *entity.Bundle) error
	Delete(ctx context.Context, id uuid.UUID) error // Hard delete
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bundle, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bundle, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
