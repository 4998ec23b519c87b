package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"syntech_importer/lib"
	"syntech_importer/structs"
	"syntech_importer/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// ImportService drives one full pass over the supplier feed and reconciles
// every record against the catalog. Records are processed sequentially in
// feed order; a single run holds the run lock for its whole duration, which
// also serializes reconciliation per SKU.
type ImportService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	store  CatalogStore
	media  MediaSyncer
	feed   *FeedService
	cache  *CacheService
	email  *EmailService

	runMu sync.Mutex
}

func NewImportService(
	logger *gecho.Logger,
	cfg *structs.Config,
	store CatalogStore,
	media MediaSyncer,
	feed *FeedService,
	cache *CacheService,
	email *EmailService,
) *ImportService {
	return &ImportService{
		logger: logger,
		cfg:    cfg,
		store:  store,
		media:  media,
		feed:   feed,
		cache:  cache,
		email:  email,
	}
}

// recordWarning is a partial failure on a record that still persisted.
type recordWarning struct {
	media  bool
	reason string
}

// Start launches a run in the background. It fails fast with
// ErrRunInProgress when another run holds the lock. A non-empty notify list
// overrides the configured report recipients for this run only.
func (is *ImportService) Start(notify []string) error {
	if !is.runMu.TryLock() {
		return lib.ErrRunInProgress
	}

	go func() {
		defer is.runMu.Unlock()
		if _, err := is.execute(context.Background(), notify); err != nil {
			is.logger.Error("Import run terminated with fatal error", gecho.Field("error", err))
		}
	}()

	return nil
}

// Run executes a full import synchronously and returns its summary.
func (is *ImportService) Run(ctx context.Context) (*structs.RunSummary, error) {
	if !is.runMu.TryLock() {
		return nil, lib.ErrRunInProgress
	}
	defer is.runMu.Unlock()

	return is.execute(ctx, nil)
}

// Running reports whether a run currently holds the lock.
func (is *ImportService) Running() bool {
	if is.runMu.TryLock() {
		is.runMu.Unlock()
		return false
	}
	return true
}

func (is *ImportService) execute(ctx context.Context, notify []string) (*structs.RunSummary, error) {
	summary := &structs.RunSummary{StartedAt: time.Now()}

	if is.cache != nil {
		is.cache.SetRunActive(ctx, true)
		defer is.cache.SetRunActive(ctx, false)
	}

	raw, err := is.feed.Fetch(ctx)
	if err != nil {
		return is.finish(ctx, summary, notify, err)
	}

	records, err := is.feed.Parse(raw)
	if err != nil {
		return is.finish(ctx, summary, notify, err)
	}

	is.logger.Info("Starting reconciliation pass", gecho.Field("records", len(records)))

	for i := range records {
		// Stop before the next record once the run is cancelled
		if ctx.Err() != nil {
			return is.finish(ctx, summary, notify, ctx.Err())
		}

		record := &records[i]
		summary.RecordsSeen++

		outcome, warnings, err := is.reconcile(ctx, record)
		sku := strings.TrimSpace(record.SKU)

		switch outcome {
		case structs.OutcomeCreated:
			summary.Created++
		case structs.OutcomeUpdated:
			summary.Updated++
		case structs.OutcomeSkipped:
			summary.Skipped++
		case structs.OutcomeFailed:
			summary.Failed++
		}

		if err != nil {
			summary.Failures = append(summary.Failures, structs.RecordFailure{
				SKU:     sku,
				Outcome: outcome,
				Reason:  err.Error(),
			})
			is.logger.Warn("Record not reconciled",
				gecho.Field("sku", sku),
				gecho.Field("outcome", outcome),
				gecho.Field("reason", err.Error()),
			)
		}

		for _, warning := range warnings {
			if warning.media {
				summary.MediaErrors++
			}
			summary.Warnings = append(summary.Warnings, structs.RecordFailure{
				SKU:     sku,
				Outcome: outcome,
				Reason:  warning.reason,
			})
		}
	}

	return is.finish(ctx, summary, notify, nil)
}

func (is *ImportService) finish(ctx context.Context, summary *structs.RunSummary, notify []string, fatal error) (*structs.RunSummary, error) {
	summary.FinishedAt = time.Now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)
	if fatal != nil {
		summary.FatalError = fatal.Error()
	}

	is.logger.Info("Import run finished",
		gecho.Field("records", summary.RecordsSeen),
		gecho.Field("created", summary.Created),
		gecho.Field("updated", summary.Updated),
		gecho.Field("skipped", summary.Skipped),
		gecho.Field("failed", summary.Failed),
		gecho.Field("media_errors", summary.MediaErrors),
		gecho.Field("duration", summary.Duration),
	)

	if is.cache != nil {
		// Status endpoint reads this; the run result itself does not depend on it
		_ = is.cache.StoreRunSummary(ctx, summary)
	}
	if is.email != nil {
		is.email.SendRunReport(summary, notify)
	}

	return summary, fatal
}

// reconcile maps one feed record onto the catalog:
// Lookup -> Create|Load -> Populate -> Persist -> SyncMedia -> Persist.
// The returned warnings are recovered partial failures (a category path or
// single image that could not be processed) on an otherwise saved record.
func (is *ImportService) reconcile(ctx context.Context, record *structs.ProductRecord) (structs.RecordOutcome, []recordWarning, error) {
	sku := strings.TrimSpace(record.SKU)
	if sku == "" {
		return structs.OutcomeSkipped, nil, lib.ErrMissingSKU
	}

	product, err := is.store.FindProductBySKU(ctx, sku)
	if err != nil {
		return structs.OutcomeFailed, nil, fmt.Errorf("product lookup failed: %w", err)
	}

	created := false
	if product == nil {
		product = &tables.Product{ID: uuid.New(), SKU: sku}
		created = true
	}

	var warnings []recordWarning
	if populateErr := is.populate(ctx, product, record); populateErr != nil {
		warnings = append(warnings, recordWarning{reason: populateErr.Error()})
	}

	// Initial persist: media attachment needs a stable product identifier
	if created {
		err = is.store.CreateProduct(ctx, product)
	} else {
		err = is.store.UpdateProduct(ctx, product)
	}
	if err != nil {
		return structs.OutcomeFailed, warnings, err
	}

	for _, reason := range is.syncMedia(ctx, product, record) {
		warnings = append(warnings, recordWarning{media: true, reason: reason})
	}

	// Final persist commits the featured and gallery asset ids
	if err := is.store.UpdateProduct(ctx, product); err != nil {
		return structs.OutcomeFailed, warnings, fmt.Errorf("final persist failed: %w", err)
	}

	if created {
		return structs.OutcomeCreated, warnings, nil
	}
	return structs.OutcomeUpdated, warnings, nil
}

// populate applies all non-media fields from the record. The feed is the
// source of truth per run: attributes and categories replace prior state
// rather than merging into it. A category resolution failure is returned as
// a non-fatal warning; the record keeps its prior assignment.
func (is *ImportService) populate(ctx context.Context, product *tables.Product, record *structs.ProductRecord) error {
	product.Name = lib.SanitizePlainText(record.Name)
	product.Description = lib.SanitizeRichText(record.Description)
	if record.ShortDescription != "" {
		product.ShortDescription = lib.SanitizeRichText(record.ShortDescription)
	}

	is.applyPricing(product, record)

	// Dimensions are copied verbatim when present and left untouched when absent
	if record.Weight != nil {
		product.Weight = floatPtr(*record.Weight)
	}
	if record.Length != nil {
		product.Length = floatPtr(*record.Length)
	}
	if record.Width != nil {
		product.Width = floatPtr(*record.Width)
	}
	if record.Height != nil {
		product.Height = floatPtr(*record.Height)
	}

	var warnErr error
	if strings.TrimSpace(record.CategoryTree) != "" {
		ids, err := is.resolveCategories(ctx, record.CategoryTree)
		if err != nil {
			// The record keeps its previously-assigned categories
			is.logger.Warn("Category resolution failed, keeping prior assignment",
				gecho.Field("sku", product.SKU),
				gecho.Field("path", record.CategoryTree),
				gecho.Field("error", err),
			)
			warnErr = fmt.Errorf("category resolution failed for %q, prior assignment kept: %w", record.CategoryTree, err)
		} else if len(ids) > 0 {
			product.CategoryIDs = ids
		}
	}

	product.Attributes = mapAttributes(record.Attributes)

	return warnErr
}

func (is *ImportService) applyPricing(product *tables.Product, record *structs.ProductRecord) {
	if rrp := float64(record.RRPInclTax); rrp > 0 {
		product.RegularPrice = toCents(rrp)
	}

	if promo := float64(record.PromoPrice); promo > 0 {
		sale := toCents(promo)
		product.SalePrice = &sale
	} else {
		product.SalePrice = nil
	}

	// Cost is an operational reference value and is always written, even 0
	product.CostPrice = toCents(float64(record.CostPrice))

	product.Stock = record.TotalStock()
	product.ManageStock = true
}

// resolveCategories walks the `>`-delimited path left to right, resolving
// each trimmed segment to a node under the previous one. The full ordered id
// list replaces the product's category assignment.
func (is *ImportService) resolveCategories(ctx context.Context, tree string) ([]uuid.UUID, error) {
	segments := strings.Split(tree, ">")

	var parentID *uuid.UUID
	ids := make([]uuid.UUID, 0, len(segments))

	for _, segment := range segments {
		name := strings.TrimSpace(segment)
		if name == "" {
			continue
		}

		var nodeID uuid.UUID
		cached := false
		if is.cache != nil {
			nodeID, cached = is.cache.GetCategoryID(ctx, name, parentID)
		}

		if !cached {
			node, err := is.store.FindOrCreateCategory(ctx, name, parentID)
			if err != nil {
				return nil, err
			}
			nodeID = node.ID
			if is.cache != nil {
				is.cache.SetCategoryID(ctx, name, parentID, nodeID)
			}
		}

		ids = append(ids, nodeID)
		parent := nodeID
		parentID = &parent
	}

	return ids, nil
}

// syncMedia downloads the featured image and the gallery. The gallery skips
// any URL equal to the featured one and is replaced with the ids created in
// this run only.
func (is *ImportService) syncMedia(ctx context.Context, product *tables.Product, record *structs.ProductRecord) []string {
	var warnings []string

	featured := strings.TrimSpace(record.FeaturedImage)
	if featured != "" {
		asset, err := is.media.SyncImage(ctx, product.ID, featured, true)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			product.FeaturedAssetID = &asset.ID
		}
	}

	gallery := record.GalleryURLs()
	if len(gallery) == 0 {
		return warnings
	}

	ids := make([]uuid.UUID, 0, len(gallery))
	for _, rawURL := range gallery {
		if rawURL == featured {
			continue
		}

		asset, err := is.media.SyncImage(ctx, product.ID, rawURL, false)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		ids = append(ids, asset.ID)
	}
	product.GalleryAssetIDs = ids

	return warnings
}

// mapAttributes rebuilds the attribute list from the feed pairs. Pairs with
// empty values are dropped; the result is sorted by name so reruns produce
// identical lists.
func mapAttributes(attributes map[string]structs.FlexString) []structs.AttributeEntry {
	if len(attributes) == 0 {
		return nil
	}

	names := make([]string, 0, len(attributes))
	for name := range attributes {
		if strings.TrimSpace(string(attributes[name])) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]structs.AttributeEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, structs.AttributeEntry{
			Name:      lib.CapitalizeFirst(name),
			Options:   []string{string(attributes[name])},
			Position:  0,
			Visible:   true,
			Variation: false,
		})
	}

	return entries
}

func toCents(value float64) uint64 {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return uint64(math.Round(value * 100))
}

func floatPtr(f structs.FlexFloat) *float64 {
	v := float64(f)
	return &v
}
