package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syntech_importer/config"
	"syntech_importer/lib"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
)

// feedEnvelope mirrors the supplier's top-level JSON shape.
type feedEnvelope struct {
	SyntechStock struct {
		Products []structs.ProductRecord `json:"products"`
	} `json:"syntechstock"`
}

// FeedService fetches and parses the supplier product feed.
type FeedService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *http.Client
}

func NewFeedService(logger *gecho.Logger, cfg *structs.Config) *FeedService {
	return &FeedService{
		logger: logger,
		cfg:    cfg,
		client: &http.Client{
			Timeout: cfg.Feed.FetchTimeout,
		},
	}
}

// Fetch downloads the raw feed bytes. A transport failure here is fatal for
// the whole run; the caller surfaces it as the run's terminal error.
func (fs *FeedService) Fetch(ctx context.Context) ([]byte, error) {
	feedCfg := fs.cfg.Feed
	if feedCfg.URL == "" {
		return nil, fmt.Errorf("feed url is not configured")
	}

	// Log the endpoint without the supplier key
	fs.logger.Info("Fetching supplier feed", gecho.Field("endpoint", config.RedactURL(feedCfg.URL)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedCfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := fs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, feedCfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	fs.logger.Info("Feed downloaded", gecho.Field("bytes", len(body)))

	return body, nil
}

// Parse decodes the raw feed into product records, preserving feed order.
// Duplicate SKUs are not collapsed here; the reconciler processes records
// sequentially so a later duplicate wins.
func (fs *FeedService) Parse(raw []byte) ([]structs.ProductRecord, error) {
	var envelope feedEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", lib.ErrMalformedFeed, err)
	}

	products := envelope.SyntechStock.Products
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: product list missing or empty", lib.ErrMalformedFeed)
	}

	return products, nil
}
