// Package slpkg implements the portable .slpkg archive format: a zip
// container holding one JSON manifest plus the raw bytes of every
// binary-bearing item, keyed by filename.
package slpkg

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"staticlink-core/internal/entity"
	"staticlink-core/pkg/codec"
)

const (
	// FormatVersion is the current manifest schema version.
	FormatVersion = 1

	// ManifestName is the fixed name of the manifest entry in the container.
	ManifestName = "manifest.json"

	// FileExtension is the conventional extension for exported archives.
	FileExtension = ".slpkg"
)

// ErrMissingManifest marks a container without a manifest entry.
var ErrMissingManifest = errors.New("slpkg: missing manifest entry")

// Manifest is the JSON index written into every archive. Binary items keep
// all of their fields except the inline content, which lives in its own
// container entry instead.
type Manifest struct {
	BundleId      uuid.UUID     `json:"bundle_id"`
	CreatedAt     time.Time     `json:"created_at"`
	Title         string        `json:"title"`
	Items         []entity.Item `json:"items"`
	FormatVersion int           `json:"format_version"`
	Encrypted     bool          `json:"encrypted"`
}

// BundleData is the id-less, timestamp-less payload returned by ReadPackage.
// The store assigns a fresh id and timestamps on import.
type BundleData struct {
	Title string        `json:"title"`
	Items []entity.Item `json:"items"`
}

// CreatePackage serializes a bundle into a self-contained archive. Binary
// payloads are decoded from their data URIs and written as raw zip entries so
// the archive does not carry base64 bloat.
func CreatePackage(b *entity.Bundle) ([]byte, error) {
	manifest := Manifest{
		BundleId:      b.Id,
		CreatedAt:     b.CreatedAt,
		Title:         b.Title,
		Items:         make([]entity.Item, 0, len(b.Items)),
		FormatVersion: FormatVersion,
		Encrypted:     false,
	}

	type blob struct {
		name string
		data []byte
	}
	var blobs []blob

	for _, item := range b.Items {
		item = item.Clone()
		if item.IsBinary() {
			bin, err := item.Binary()
			if err != nil {
				return nil, fmt.Errorf("slpkg: item %s: %w", item.Id, err)
			}
			if bin.Content != "" {
				data, _, err := codec.DecodeDataURI(bin.Content)
				if err != nil {
					return nil, fmt.Errorf("slpkg: item %s: %w", item.Id, err)
				}
				blobs = append(blobs, blob{name: bin.FileName, data: data})
			}
			bin.Content = ""
			if err := item.SetDetails(bin); err != nil {
				return nil, err
			}
		}
		manifest.Items = append(manifest.Items, item)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mw, err := zw.Create(ManifestName)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(mw)
	if err := enc.Encode(manifest); err != nil {
		return nil, err
	}

	for _, bl := range blobs {
		w, err := zw.Create(bl.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(bl.data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadPackage parses an archive back into bundle data. Binary items get
// their inline content re-attached from the matching container entry; if the
// entry is missing the item is kept with content unset so the rest of the
// bundle still imports.
func ReadPackage(data []byte) (*BundleData, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("slpkg: not a valid container: %w", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	mf, ok := entries[ManifestName]
	if !ok {
		return nil, ErrMissingManifest
	}
	var manifest Manifest
	if err := readJSON(mf, &manifest); err != nil {
		return nil, fmt.Errorf("slpkg: manifest: %w", err)
	}

	items := make([]entity.Item, 0, len(manifest.Items))
	for _, item := range manifest.Items {
		if item.IsBinary() {
			bin, err := item.Binary()
			if err != nil {
				return nil, fmt.Errorf("slpkg: item %s: %w", item.Id, err)
			}
			if f, ok := entries[bin.FileName]; ok {
				raw, err := readAll(f)
				if err != nil {
					return nil, err
				}
				bin.Content = codec.EncodeDataURI(raw, bin.MimeType)
				if err := item.SetDetails(bin); err != nil {
					return nil, err
				}
			}
		}
		items = append(items, item)
	}

	return &BundleData{Title: manifest.Title, Items: items}, nil
}

func readJSON(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
