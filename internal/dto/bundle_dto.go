package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"staticlink-core/internal/entity"
)

type CreateBundleRequest struct {
	Title string `json:"title" validate:"required"`
}

type CreateBundleResponse struct {
	Id uuid.UUID `json:"id"`
}

// ImportBundleRequest carries parsed archive or QR payload data. The store
// always assigns a fresh id and timestamps; title dedup is a caller concern.
type ImportBundleRequest struct {
	Title string        `json:"title" validate:"required"`
	Items []entity.Item `json:"items"`
}

// UpdateBundleRequest shallow-merges the provided fields into the record.
// Nil fields are left untouched.
type UpdateBundleRequest struct {
	Title    *string        `json:"title,omitempty" validate:"omitempty,min=1"`
	IsPinned *bool          `json:"is_pinned,omitempty"`
	IsLocked *bool          `json:"is_locked,omitempty"`
	Items    *[]entity.Item `json:"items,omitempty"`
}

// MergeBundlesRequest builds a new bundle out of the named sources. An empty
// title falls back to a default; the sources themselves are never touched.
type MergeBundlesRequest struct {
	Ids   []uuid.UUID `json:"ids" validate:"required,min=1"`
	Title string      `json:"title"`
}

type AddItemRequest struct {
	Type    entity.ItemType `json:"type" validate:"required"`
	Title   string          `json:"title"`
	Color   string          `json:"color,omitempty"`
	Details json.RawMessage `json:"details" validate:"required"`
	// Position optionally inserts instead of appending.
	Position *int `json:"position,omitempty"`
}

type UpdateItemRequest struct {
	Title    *string         `json:"title,omitempty"`
	Color    *string         `json:"color,omitempty"`
	IsPinned *bool           `json:"is_pinned,omitempty"`
	Details  json.RawMessage `json:"details,omitempty"`
}

// BundleChangedMessage is published on every successful store mutation.
type BundleChangedMessage struct {
	BundleId  uuid.UUID `json:"bundle_id"`
	Operation string    `json:"operation"`
	At        time.Time `json:"at"`
}
