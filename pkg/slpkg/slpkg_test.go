package slpkg

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticlink-core/internal/entity"
	"staticlink-core/pkg/codec"
)

func fileBundle(t *testing.T, payload []byte) *entity.Bundle {
	t.Helper()

	fileItem, err := entity.WrapItem(entity.ItemTypeFile, "photo", entity.BinaryContent{
		FileName: "photo.png",
		MimeType: "image/png",
		Size:     int64(len(payload)),
		Content:  codec.EncodeDataURI(payload, "image/png"),
		Checksum: codec.Checksum(payload),
	})
	require.NoError(t, err)

	noteItem, err := entity.WrapItem(entity.ItemTypeNote, "readme", entity.Note{Text: "# hi"})
	require.NoError(t, err)

	now := time.Now()
	return &entity.Bundle{
		Id:        uuid.New(),
		Title:     "Trip",
		Items:     []entity.Item{fileItem, noteItem},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPackageRoundTrip(t *testing.T) {
	payload := []byte("not really a png, but bytes are bytes")
	b := fileBundle(t, payload)

	data, err := CreatePackage(b)
	require.NoError(t, err)

	parsed, err := ReadPackage(data)
	require.NoError(t, err)
	assert.Equal(t, "Trip", parsed.Title)
	require.Len(t, parsed.Items, 2)

	bin, err := parsed.Items[0].Binary()
	require.NoError(t, err)
	decoded, mime, err := codec.DecodeDataURI(bin.Content)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, codec.Checksum(payload), codec.Checksum(decoded))
	assert.Equal(t, bin.Checksum, codec.Checksum(decoded))
}

func TestCreatePackageStripsContentFromManifest(t *testing.T) {
	payload := []byte("binary payload")
	data, err := CreatePackage(fileBundle(t, payload))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var manifest Manifest
	var sawBlob bool
	for _, f := range zr.File {
		switch f.Name {
		case ManifestName:
			rc, err := f.Open()
			require.NoError(t, err)
			require.NoError(t, json.NewDecoder(rc).Decode(&manifest))
			rc.Close()
		case "photo.png":
			sawBlob = true
		}
	}

	assert.True(t, sawBlob, "binary entry should be stored under the item filename")
	assert.Equal(t, 1, manifest.FormatVersion)
	assert.False(t, manifest.Encrypted)
	require.Len(t, manifest.Items, 2)

	bin, err := manifest.Items[0].Binary()
	require.NoError(t, err)
	assert.Empty(t, bin.Content, "manifest must not duplicate binary content")
	assert.Equal(t, "photo.png", bin.FileName)
	assert.Equal(t, int64(len(payload)), bin.Size)
	assert.NotEmpty(t, bin.Checksum)
}

func TestReadPackageMissingManifest(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("something.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ReadPackage(buf.Bytes())
	assert.ErrorIs(t, err, ErrMissingManifest)
}

func TestReadPackageNotAnArchive(t *testing.T) {
	_, err := ReadPackage([]byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestReadPackageMissingBinaryEntryKeepsItem(t *testing.T) {
	b := fileBundle(t, []byte("payload"))
	data, err := CreatePackage(b)
	require.NoError(t, err)

	// Rebuild the archive without the binary entry.
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		_, err = io.Copy(w, rc)
		require.NoError(t, err)
		rc.Close()
	}
	require.NoError(t, zw.Close())

	parsed, err := ReadPackage(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, parsed.Items, 2)

	bin, err := parsed.Items[0].Binary()
	require.NoError(t, err)
	assert.Empty(t, bin.Content, "missing container entry leaves the item contentless")
	assert.Equal(t, "photo.png", bin.FileName)
}

func TestQRPayloadRoundTrip(t *testing.T) {
	linkItem, err := entity.WrapItem(entity.ItemTypeLink, "home", entity.Link{URL: "https://example.com"})
	require.NoError(t, err)

	b := &entity.Bundle{Id: uuid.New(), Title: "Small", Items: []entity.Item{linkItem}}
	payload, err := EncodeQRPayload(b)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(payload), MaxQRPayloadSize)

	parsed, err := DecodeQRPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "Small", parsed.Title)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, uuid.Nil, parsed.Items[0].Id, "item ids are stripped")
}

func TestQRPayloadRejectsBinaryItems(t *testing.T) {
	b := fileBundle(t, []byte("payload"))
	_, err := EncodeQRPayload(b)
	assert.ErrorIs(t, err, ErrQRBinaryItems)
}

func TestQRPayloadRejectsOversized(t *testing.T) {
	big := make([]byte, MaxQRPayloadSize)
	for i := range big {
		big[i] = 'a'
	}
	noteItem, err := entity.WrapItem(entity.ItemTypeNote, "big", entity.Note{Text: string(big)})
	require.NoError(t, err)

	b := &entity.Bundle{Id: uuid.New(), Title: "Big", Items: []entity.Item{noteItem}}
	_, err = EncodeQRPayload(b)
	assert.ErrorIs(t, err, ErrQRTooLarge)
}

func TestDecodeQRPayloadRejectsForeignJSON(t *testing.T) {
	_, err := DecodeQRPayload([]byte(`{"hello":"world"}`))
	assert.ErrorIs(t, err, ErrNotQRPayload)
}
