package entity

import (
	"time"

	"github.com/google/uuid"
)

type Bundle struct {
	Id           uuid.UUID
	Title        string
	Items        []Item
	IsPinned     bool
	IsArchived   bool
	IsDeleted    bool
	IsLocked     bool
	PasswordHash *string
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CloneItems deep-copies the item list, preserving order and ids.
func (b *Bundle) CloneItems() []Item {
	items := make([]Item, len(b.Items))
	for i, it := range b.Items {
		items[i] = it.Clone()
	}
	return items
}

// ItemIndex returns the position of the item with the given id, or -1.
func (b *Bundle) ItemIndex(id uuid.UUID) int {
	for i, it := range b.Items {
		if it.Id == id {
			return i
		}
	}
	return -1
}
