package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Bundle is the persisted record. Items live inside the row as a JSON column
// so their order survives round-trips and every store operation is a
// single-row read-modify-write.
type Bundle struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Items        datatypes.JSON
	IsPinned     bool `gorm:"not null;default:false"`
	IsArchived   bool `gorm:"not null;default:false;index"`
	IsDeleted    bool `gorm:"not null;default:false;index"`
	IsLocked     bool `gorm:"not null;default:false"`
	PasswordHash *string
	DeletedAt    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	// The service decides when a mutation bumps UpdatedAt, so GORM's
	// automatic touch is disabled.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (Bundle) TableName() string {
	return "bundles"
}
