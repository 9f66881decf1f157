package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"staticlink-core/internal/entity"
	"staticlink-core/internal/model"
)

type BundleMapper struct{}

func NewBundleMapper() *BundleMapper {
	return &BundleMapper{}
}

func (m *BundleMapper) ToEntity(b *model.Bundle) (*entity.Bundle, error) {
	if b == nil {
		return nil, nil
	}

	items := make([]entity.Item, 0)
	if len(b.Items) > 0 {
		if err := json.Unmarshal(b.Items, &items); err != nil {
			return nil, err
		}
	}

	return &entity.Bundle{
		Id:           b.Id,
		Title:        b.Title,
		Items:        items,
		IsPinned:     b.IsPinned,
		IsArchived:   b.IsArchived,
		IsDeleted:    b.IsDeleted,
		IsLocked:     b.IsLocked,
		PasswordHash: b.PasswordHash,
		DeletedAt:    b.DeletedAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}, nil
}

func (m *BundleMapper) ToModel(b *entity.Bundle) (*model.Bundle, error) {
	if b == nil {
		return nil, nil
	}

	items := b.Items
	if items == nil {
		items = make([]entity.Item, 0)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	return &model.Bundle{
		Id:           b.Id,
		Title:        b.Title,
		Items:        datatypes.JSON(raw),
		IsPinned:     b.IsPinned,
		IsArchived:   b.IsArchived,
		IsDeleted:    b.IsDeleted,
		IsLocked:     b.IsLocked,
		PasswordHash: b.PasswordHash,
		DeletedAt:    b.DeletedAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}, nil
}

func (m *BundleMapper) ToEntities(bundles []*model.Bundle) ([]*entity.Bundle, error) {
	entities := make([]*entity.Bundle, len(bundles))
	for i, b := range bundles {
		e, err := m.ToEntity(b)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
