package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"syntech_importer/lib"
	"syntech_importer/structs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestMediaService(t *testing.T, store CatalogStore) *MediaService {
	t.Helper()
	cfg := testConfig("")
	cfg.Media = &structs.MediaConfig{
		Dir:     t.TempDir(),
		TempDir: t.TempDir(),
	}
	return NewMediaService(testLogger(), cfg, store)
}

func TestSyncImageStoresAssetWithMetadata(t *testing.T) {
	payload := pngBytes(t, 4, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	store := newFakeStore()
	ms := newTestMediaService(t, store)
	productID := uuid.New()

	asset, err := ms.SyncImage(context.Background(), productID, server.URL+"/images/router.png", true)

	require.NoError(t, err)
	assert.Equal(t, productID, asset.ProductID)
	assert.Equal(t, "router", asset.Title)
	assert.Equal(t, "image/png", asset.MimeType)
	assert.Equal(t, 4, asset.Width)
	assert.Equal(t, 2, asset.Height)
	assert.NotEmpty(t, asset.Checksum)
	assert.True(t, asset.IsFeatured)

	// Permanent file exists and holds the downloaded bytes
	data, err := os.ReadFile(asset.FilePath)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	require.Len(t, store.assets, 1)
	assert.Equal(t, asset.ID, store.assets[0].ID)
}

func TestSyncImageRejectsInvalidURL(t *testing.T) {
	ms := newTestMediaService(t, newFakeStore())

	_, err := ms.SyncImage(context.Background(), uuid.New(), "not a url", false)
	assert.ErrorIs(t, err, lib.ErrInvalidImageURL)

	_, err = ms.SyncImage(context.Background(), uuid.New(), "/relative/path.jpg", false)
	assert.ErrorIs(t, err, lib.ErrInvalidImageURL)

	_, err = ms.SyncImage(context.Background(), uuid.New(), "https://cdn.example.com", false)
	assert.ErrorIs(t, err, lib.ErrInvalidImageURL, "url without a file name")
}

func TestSyncImageTransportFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := newFakeStore()
	ms := newTestMediaService(t, store)

	_, err := ms.SyncImage(context.Background(), uuid.New(), server.URL+"/missing.jpg", false)

	require.Error(t, err)
	assert.Empty(t, store.assets, "no asset recorded on failed download")
}

func TestSyncImageNonImagePayloadKeepsZeroDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer server.Close()

	ms := newTestMediaService(t, newFakeStore())

	asset, err := ms.SyncImage(context.Background(), uuid.New(), server.URL+"/file.jpg", false)

	require.NoError(t, err)
	assert.Zero(t, asset.Width)
	assert.Zero(t, asset.Height)
	assert.NotEmpty(t, asset.Checksum, "checksum derived even for undecodable payloads")
}
