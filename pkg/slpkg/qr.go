package slpkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staticlink-core/internal/entity"
)

// MaxQRPayloadSize bounds the encoded JSON so the result stays scannable.
const MaxQRPayloadSize = 2048

var (
	// ErrQRTooLarge means the encoded bundle exceeds MaxQRPayloadSize.
	ErrQRTooLarge = errors.New("slpkg: bundle too large for a QR payload")

	// ErrQRBinaryItems means the bundle carries binary items, which never
	// fit in a QR code.
	ErrQRBinaryItems = errors.New("slpkg: bundles with binary items cannot be QR-encoded")

	// ErrNotQRPayload marks text that is not a staticlink QR envelope.
	ErrNotQRPayload = errors.New("slpkg: not a staticlink QR payload")
)

type qrEnvelope struct {
	StaticlinkQR bool       `json:"staticlink_qr"`
	Bundle       BundleData `json:"bundle"`
}

// EncodeQRPayload renders a small bundle as the JSON envelope embedded in
// shareable QR codes. Item ids and timestamps are stripped to save space.
func EncodeQRPayload(b *entity.Bundle) ([]byte, error) {
	items := make([]entity.Item, 0, len(b.Items))
	for _, item := range b.Items {
		if item.IsBinary() {
			return nil, ErrQRBinaryItems
		}
		item = item.Clone()
		item.Id = uuid.Nil
		item.CreatedAt = time.Time{}
		items = append(items, item)
	}

	payload, err := json.Marshal(qrEnvelope{
		StaticlinkQR: true,
		Bundle:       BundleData{Title: b.Title, Items: items},
	})
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxQRPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrQRTooLarge, len(payload))
	}
	return payload, nil
}

// DecodeQRPayload parses scanned text back into bundle data.
func DecodeQRPayload(data []byte) (*BundleData, error) {
	var env qrEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotQRPayload, err)
	}
	if !env.StaticlinkQR {
		return nil, ErrNotQRPayload
	}
	return &env.Bundle, nil
}
