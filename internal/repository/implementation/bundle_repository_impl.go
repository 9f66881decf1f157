package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staticlink-core/internal/entity"
	"staticlink-core/internal/mapper"
	"staticlink-core/internal/model"
	"staticlink-core/internal/repository/contract"
	"staticlink-core/internal/repository/specification"
)

type BundleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BundleMapper
}

func NewBundleRepository(db *gorm.DB) contract.BundleRepository {
	return &BundleRepositoryImpl{
		db:     db,
		mapper: mapper.NewBundleMapper(),
	}
}

func (r *BundleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BundleRepositoryImpl) Create(ctx context.Context, bundle *entity.Bundle) error {
	m, err := r.mapper.ToModel(bundle)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	e, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*bundle = *e
	return nil
}

func (r *BundleRepositoryImpl) Update(ctx context.Context, bundle *entity.Bundle) error {
	m, err := r.mapper.ToModel(bundle)
	if err != nil {
		return err
	}
	// Save writes every column, zero values included, which the flag
	// transitions (unpin, unarchive, restore) rely on.
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	e, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*bundle = *e
	return nil
}

func (r *BundleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Bundle{}).Error
}

func (r *BundleRepositoryImpl) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Bundle{}).Error
}

func (r *BundleRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bundle, error) {
	var m model.Bundle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *BundleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bundle, error) {
	var models []*model.Bundle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *BundleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Bundle{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
