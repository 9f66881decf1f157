package specification

import "gorm.io/gorm"

// Lifecycle partitions. Deleted takes display precedence over archived, so
// the active and archived views both exclude soft-deleted records.

type Active struct{}

func (s Active) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_archived = ? AND is_deleted = ?", false, false)
}

type Pinned struct{}

func (s Pinned) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_pinned = ?", true)
}

type Archived struct{}

func (s Archived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_archived = ? AND is_deleted = ?", true, false)
}

type Deleted struct{}

func (s Deleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}

// TitleSearch filters bundles by a case-insensitive title substring.
type TitleSearch struct {
	Query string
}

func (s TitleSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("LOWER(title) LIKE LOWER(?)", pattern)
}
