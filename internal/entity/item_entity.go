package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemType classifies an item kind inside a bundle.
type ItemType string

const (
	ItemTypeLink      ItemType = "link"
	ItemTypeNote      ItemType = "note"
	ItemTypeFile      ItemType = "file"
	ItemTypeAudio     ItemType = "audio"
	ItemTypeChecklist ItemType = "checklist"
	ItemTypeContact   ItemType = "contact"
	ItemTypeLocation  ItemType = "location"
	ItemTypeDrawing   ItemType = "drawing"
	ItemTypeEmail     ItemType = "email"
	ItemTypeCode      ItemType = "code"
	ItemTypeQrCode    ItemType = "qrcode"
)

// Item is one content entry owned by exactly one bundle. Details holds the
// variant payload for Type; use Unwrap to get the typed value.
type Item struct {
	Id        uuid.UUID       `json:"id"`
	Type      ItemType        `json:"type"`
	Title     string          `json:"title"`
	Color     string          `json:"color,omitempty"`
	IsPinned  bool            `json:"is_pinned,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Details   json.RawMessage `json:"details"`
}

// Link stores a URL.
type Link struct {
	URL string `json:"url"`
}

// Note stores markdown source text.
type Note struct {
	Text string `json:"text"`
}

// BinaryContent is the shared payload of File, Audio and Drawing items.
// Content is a mime-tagged base64 data URI; Size is the decoded byte length.
// Checksum is set for File items only.
type BinaryContent struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Content  string `json:"content,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

// Checklist stores a tree of entries of arbitrary depth.
type Checklist struct {
	Entries []ChecklistEntry `json:"entries"`
}

type ChecklistEntry struct {
	Id       uuid.UUID        `json:"id"`
	Text     string           `json:"text"`
	Checked  bool             `json:"checked"`
	Children []ChecklistEntry `json:"children,omitempty"`
}

// Contact stores address-book fields; empty fields are simply omitted.
type Contact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Location stores coordinates with an optional human-readable label.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Email stores a draft message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Code stores a snippet with its language tag.
type Code struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// QrCode stores the decoded text content of a scanned or generated code.
type QrCode struct {
	Content string `json:"content"`
}

// NewItem builds an item with a fresh id around an already-marshalled payload.
func NewItem(t ItemType, title string, details json.RawMessage) Item {
	return Item{
		Id:        uuid.New(),
		Type:      t,
		Title:     title,
		CreatedAt: time.Now(),
		Details:   details,
	}
}

// WrapItem marshals a typed payload into an Item envelope.
func WrapItem[T any](t ItemType, title string, v T) (Item, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Item{}, err
	}
	return NewItem(t, title, b), nil
}

// Unwrap decodes Details into the payload type implied by the type tag.
func (i Item) Unwrap() (any, error) {
	switch i.Type {
	case ItemTypeLink:
		var v Link
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeNote:
		var v Note
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeFile, ItemTypeAudio, ItemTypeDrawing:
		var v BinaryContent
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeChecklist:
		var v Checklist
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeContact:
		var v Contact
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeLocation:
		var v Location
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeEmail:
		var v Email
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeCode:
		var v Code
		return v, json.Unmarshal(i.Details, &v)
	case ItemTypeQrCode:
		var v QrCode
		return v, json.Unmarshal(i.Details, &v)
	default:
		return nil, fmt.Errorf("unknown item type %q", i.Type)
	}
}

// IsBinary reports whether the item carries an embedded binary payload.
func (i Item) IsBinary() bool {
	switch i.Type {
	case ItemTypeFile, ItemTypeAudio, ItemTypeDrawing:
		return true
	default:
		return false
	}
}

// Binary decodes the shared binary payload of a File/Audio/Drawing item.
func (i Item) Binary() (BinaryContent, error) {
	if !i.IsBinary() {
		return BinaryContent{}, fmt.Errorf("item type %q has no binary payload", i.Type)
	}
	var v BinaryContent
	return v, json.Unmarshal(i.Details, &v)
}

// SetDetails re-marshals a typed payload back into the envelope.
func (i *Item) SetDetails(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	i.Details = b
	return nil
}

// Clone returns a deep copy of the item keeping the original id.
func (i Item) Clone() Item {
	c := i
	if i.Details != nil {
		c.Details = make(json.RawMessage, len(i.Details))
		copy(c.Details, i.Details)
	}
	return c
}
