package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syntech_importer/lib"
	"syntech_importer/structs"
	"syntech_importer/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// MediaSyncer downloads one product image into permanent asset storage.
// Errors are non-fatal per image: the caller records them and moves on.
type MediaSyncer interface {
	SyncImage(ctx context.Context, productID uuid.UUID, rawURL string, isFeatured bool) (*tables.MediaAsset, error)
}

// MediaService is the filesystem-backed MediaSyncer. Downloads stage through
// a temp file and are moved into the media directory once complete, so a
// failed transfer never leaves a partial permanent file.
type MediaService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	store  CatalogStore
	client *http.Client
}

func NewMediaService(logger *gecho.Logger, cfg *structs.Config, store CatalogStore) *MediaService {
	return &MediaService{
		logger: logger,
		cfg:    cfg,
		store:  store,
		client: &http.Client{
			Timeout: cfg.Feed.ImageTimeout,
		},
	}
}

func (ms *MediaService) SyncImage(ctx context.Context, productID uuid.UUID, rawURL string, isFeatured bool) (*tables.MediaAsset, error) {
	rawURL = strings.TrimSpace(rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", lib.ErrInvalidImageURL, rawURL)
	}

	baseName := path.Base(parsed.Path)
	if baseName == "." || baseName == "/" {
		return nil, fmt.Errorf("%w: no file name in %q", lib.ErrInvalidImageURL, rawURL)
	}

	tempPath, contentType, err := ms.download(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("image download failed for %s: %w", baseName, err)
	}
	defer os.Remove(tempPath)

	permPath, err := ms.storePermanently(tempPath, baseName)
	if err != nil {
		return nil, fmt.Errorf("failed to store image %s: %w", baseName, err)
	}

	asset := &tables.MediaAsset{
		ID:         uuid.New(),
		ProductID:  productID,
		Title:      strings.TrimSuffix(baseName, filepath.Ext(baseName)),
		SourceURL:  rawURL,
		FilePath:   permPath,
		MimeType:   resolveMimeType(contentType, baseName),
		IsFeatured: isFeatured,
	}

	// Derived representation metadata: dimensions and content checksum
	if err := ms.deriveMetadata(asset); err != nil {
		ms.logger.Warn("Failed to derive asset metadata",
			gecho.Field("file", permPath),
			gecho.Field("error", err),
		)
	}

	if err := ms.store.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	ms.logger.Debug("Stored media asset",
		gecho.Field("asset_id", asset.ID),
		gecho.Field("product_id", productID),
		gecho.Field("featured", isFeatured),
	)

	return asset, nil
}

// download fetches the image into a temp file and returns its path plus the
// reported content type.
func (ms *MediaService) download(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := ms.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	temp, err := os.CreateTemp(ms.cfg.Media.TempDir, "syntech-img-*")
	if err != nil {
		return "", "", err
	}

	if _, err := io.Copy(temp, resp.Body); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", "", err
	}

	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return "", "", err
	}

	return temp.Name(), resp.Header.Get("Content-Type"), nil
}

// storePermanently moves a staged download into the media directory under a
// slugged, collision-free name.
func (ms *MediaService) storePermanently(tempPath, baseName string) (string, error) {
	if err := os.MkdirAll(ms.cfg.Media.Dir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(baseName)
	name := slug.Make(strings.TrimSuffix(baseName, ext))
	unique := uuid.New().String()[:8]
	permPath := filepath.Join(ms.cfg.Media.Dir, fmt.Sprintf("%s-%s%s", name, unique, ext))

	src, err := os.Open(tempPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(permPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(permPath)
		return "", err
	}

	if err := dst.Close(); err != nil {
		os.Remove(permPath)
		return "", err
	}

	return permPath, nil
}

func (ms *MediaService) deriveMetadata(asset *tables.MediaAsset) error {
	file, err := os.Open(asset.FilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}
	asset.Checksum = hex.EncodeToString(hash.Sum(nil))

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		// Non-image payloads keep zero dimensions
		return err
	}
	asset.Width = cfg.Width
	asset.Height = cfg.Height

	return nil
}

func resolveMimeType(contentType, baseName string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(filepath.Ext(baseName))
}
