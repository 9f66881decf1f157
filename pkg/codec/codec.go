// Package codec provides the content hashing, data-URI encoding and size
// accounting helpers shared by the bundle store and the package serializer.
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"staticlink-core/internal/entity"
)

// ErrInvalidDataURI is returned when a stored payload is not a well-formed
// base64 data URI.
var ErrInvalidDataURI = errors.New("codec: invalid data URI")

// Checksum returns the lowercase hex SHA-256 digest of the given bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EncodeDataURI wraps raw bytes into a mime-tagged base64 data URI suitable
// for JSON embedding.
func EncodeDataURI(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI is the inverse of EncodeDataURI. It returns the raw bytes and
// the declared mime type, or ErrInvalidDataURI if the text is malformed.
func DecodeDataURI(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, mimeType, nil
}

// EstimateBundleSize sums the declared byte size of binary-bearing items and
// the UTF-8 JSON length of everything else. Display heuristic only; not an
// exact storage accounting.
func EstimateBundleSize(b *entity.Bundle) int64 {
	var total int64
	for _, item := range b.Items {
		switch item.Type {
		case entity.ItemTypeFile, entity.ItemTypeAudio, entity.ItemTypeDrawing:
			if bin, err := item.Binary(); err == nil {
				total += bin.Size
				continue
			}
			total += int64(len(item.Details))
		case entity.ItemTypeLink, entity.ItemTypeNote, entity.ItemTypeChecklist,
			entity.ItemTypeContact, entity.ItemTypeLocation, entity.ItemTypeEmail,
			entity.ItemTypeCode, entity.ItemTypeQrCode:
			if raw, err := json.Marshal(item); err == nil {
				total += int64(len(raw))
			}
		}
	}
	return total
}
