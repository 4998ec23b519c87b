package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"syntech_importer/lib"
	"syntech_importer/structs"
	"syntech_importer/structs/tables"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory CatalogStore. Reads return copies so mutations
// only reach the store through Create/Update, matching database semantics.
type fakeStore struct {
	mu         sync.Mutex
	products   map[string]tables.Product
	categories map[string]tables.Category
	assets     []tables.MediaAsset

	categoryErr     error
	createErr       error
	categoryCreates int
	productCreates  int
	productUpdates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[string]tables.Product),
		categories: make(map[string]tables.Category),
	}
}

func (s *fakeStore) FindProductBySKU(_ context.Context, sku string) (*tables.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.products[sku]; ok {
		copied := product
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateProduct(_ context.Context, product *tables.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.products[product.SKU]; ok {
		return lib.ErrConflict
	}
	s.productCreates++
	s.products[product.SKU] = *product
	return nil
}

func (s *fakeStore) UpdateProduct(_ context.Context, product *tables.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productUpdates++
	s.products[product.SKU] = *product
	return nil
}

func (s *fakeStore) FindOrCreateCategory(_ context.Context, name string, parentID *uuid.UUID) (*tables.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryErr != nil {
		return nil, s.categoryErr
	}

	key := name + "|root"
	if parentID != nil {
		key = name + "|" + parentID.String()
	}

	if category, ok := s.categories[key]; ok {
		copied := category
		return &copied, nil
	}

	s.categoryCreates++
	category := tables.Category{ID: uuid.New(), Name: name, ParentID: parentID}
	s.categories[key] = category
	return &category, nil
}

func (s *fakeStore) CreateAsset(_ context.Context, asset *tables.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = append(s.assets, *asset)
	return nil
}

func (s *fakeStore) product(t *testing.T, sku string) tables.Product {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[sku]
	require.True(t, ok, "product %s not in store", sku)
	return product
}

// fakeMedia records sync calls and can fail selected URLs.
type fakeMedia struct {
	mu       sync.Mutex
	calls    []string
	failURLs map[string]bool
}

func (m *fakeMedia) SyncImage(_ context.Context, productID uuid.UUID, rawURL string, isFeatured bool) (*tables.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, rawURL)
	if m.failURLs[rawURL] {
		return nil, fmt.Errorf("image download failed for %s: timeout", rawURL)
	}
	return &tables.MediaAsset{ID: uuid.New(), ProductID: productID, SourceURL: rawURL, IsFeatured: isFeatured}, nil
}

func (m *fakeMedia) callCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call == url {
			count++
		}
	}
	return count
}

func newTestImporter(t *testing.T, feedJSON string, store CatalogStore, media MediaSyncer) *ImportService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedJSON))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	logger := testLogger()
	feed := NewFeedService(logger, cfg)

	return NewImportService(logger, cfg, store, media, feed, nil, nil)
}

func feedWith(records ...string) string {
	out := `{"syntechstock": {"products": [`
	for i, record := range records {
		if i > 0 {
			out += ","
		}
		out += record
	}
	return out + `]}}`
}

const fullRecord = `{
	"sku": "SYN-100",
	"name": "Mesh Router <script>alert(1)</script>",
	"description": "<p>Tri-band mesh</p><script>x()</script>",
	"shortdesc": "<b>Fast</b>",
	"rrp_incl": "1999.90",
	"price": 1500,
	"promo_price": 1799.90,
	"cptstock": 3,
	"jhbstock": 5,
	"dbnstock": "bad",
	"weight": 1.2,
	"categorytree": "Networking & security > Routers & mesh",
	"attributes": {"brand": "Mecer", "warranty": "24 months", "colour": ""},
	"featured_image": "https://cdn.example.com/router.jpg",
	"all_images": "https://cdn.example.com/router.jpg | https://cdn.example.com/router-side.jpg"
}`

func TestRunReconcilesFullRecord(t *testing.T) {
	store := newFakeStore()
	media := &fakeMedia{}
	importer := newTestImporter(t, feedWith(fullRecord), store, media)

	summary, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecordsSeen)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Failed)

	product := store.product(t, "SYN-100")
	assert.Equal(t, "Mesh Router", product.Name, "unsafe markup stripped from name")
	assert.Contains(t, product.Description, "<p>Tri-band mesh</p>")
	assert.NotContains(t, product.Description, "<script>")
	assert.Equal(t, uint64(199990), product.RegularPrice)
	require.NotNil(t, product.SalePrice)
	assert.Equal(t, uint64(179990), *product.SalePrice)
	assert.Equal(t, uint64(150000), product.CostPrice)
	assert.Equal(t, 8, product.Stock, "non-numeric branch count coerces to 0")
	assert.True(t, product.ManageStock)
	require.NotNil(t, product.Weight)
	assert.InDelta(t, 1.2, *product.Weight, 0.001)
	assert.Nil(t, product.Length, "absent dimensions stay unset")
	assert.Len(t, product.CategoryIDs, 2)
	require.Len(t, product.Attributes, 2, "empty attribute values dropped")
	assert.Equal(t, "Brand", product.Attributes[0].Name)
	assert.Equal(t, []string{"Mecer"}, product.Attributes[0].Options)
	assert.False(t, product.Attributes[0].Variation)
	require.NotNil(t, product.FeaturedAssetID)
	assert.Len(t, product.GalleryAssetIDs, 1, "featured url excluded from gallery")
}

func TestRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	media := &fakeMedia{}
	importer := newTestImporter(t, feedWith(fullRecord), store, media)

	first, err := importer.Run(context.Background())
	require.NoError(t, err)
	afterFirst := store.product(t, "SYN-100")

	second, err := importer.Run(context.Background())
	require.NoError(t, err)
	afterSecond := store.product(t, "SYN-100")

	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Zero(t, second.Created)

	assert.Equal(t, afterFirst.SKU, afterSecond.SKU)
	assert.Equal(t, afterFirst.Name, afterSecond.Name)
	assert.Equal(t, afterFirst.RegularPrice, afterSecond.RegularPrice)
	assert.Equal(t, afterFirst.Stock, afterSecond.Stock)
	assert.Equal(t, afterFirst.CategoryIDs, afterSecond.CategoryIDs, "category ids stable across runs")
	assert.Equal(t, afterFirst.Attributes, afterSecond.Attributes)
	assert.Equal(t, 2, store.categoryCreates, "no duplicate category nodes on rerun")
}

func TestDuplicateSKULastWriteWins(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(t, feedWith(
		`{"sku": "SYN-200", "name": "First pass", "rrp_incl": 100}`,
		`{"sku": "SYN-200", "name": "Second pass", "rrp_incl": 200}`,
	), store, &fakeMedia{})

	summary, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)

	product := store.product(t, "SYN-200")
	assert.Equal(t, "Second pass", product.Name)
	assert.Equal(t, uint64(20000), product.RegularPrice)
}

func TestMissingSKUSkippedRunContinues(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(t, feedWith(
		`{"name": "No SKU here"}`,
		`{"sku": "SYN-300", "name": "Valid"}`,
	), store, &fakeMedia{})

	summary, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordsSeen)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, structs.OutcomeSkipped, summary.Failures[0].Outcome)
	assert.Contains(t, summary.Failures[0].Reason, "missing sku")
}

func TestMalformedFeedAbortsBeforeAnyRecord(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(t, `{}`, store, &fakeMedia{})

	summary, err := importer.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrMalformedFeed)
	assert.Zero(t, summary.RecordsSeen)
	assert.Zero(t, store.productCreates)
	assert.NotEmpty(t, summary.FatalError)
}

func TestCategoryPathResolvesToStableChain(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(t, feedWith(fullRecord), store, &fakeMedia{})

	first, err := importer.resolveCategories(context.Background(), "A > B > C")
	require.NoError(t, err)
	second, err := importer.resolveCategories(context.Background(), "A > B > C")
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second, "same ids both times")
	assert.Equal(t, 3, store.categoryCreates, "no duplicate nodes created")
}

func TestCategoryPathDiscardsEmptySegments(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(t, feedWith(fullRecord), store, &fakeMedia{})

	ids, err := importer.resolveCategories(context.Background(), " A >  > B > ")

	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 2, store.categoryCreates)
}

func TestCategoryFailureKeepsPriorAssignment(t *testing.T) {
	store := newFakeStore()
	prior := []uuid.UUID{uuid.New()}
	store.products["SYN-100"] = tables.Product{ID: uuid.New(), SKU: "SYN-100", CategoryIDs: prior}
	store.categoryErr = errors.New("store unavailable")

	importer := newTestImporter(t, feedWith(fullRecord), store, &fakeMedia{})

	summary, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	product := store.product(t, "SYN-100")
	assert.Equal(t, prior, product.CategoryIDs, "record retains previously-assigned categories")

	// The recovered failure must be attributable in the summary, not just logged
	require.NotEmpty(t, summary.Warnings)
	assert.Equal(t, "SYN-100", summary.Warnings[0].SKU)
	assert.Contains(t, summary.Warnings[0].Reason, "category resolution failed")
	assert.Zero(t, summary.MediaErrors, "category failures are not media errors")
}

func TestFeaturedURLNotDownloadedTwice(t *testing.T) {
	store := newFakeStore()
	media := &fakeMedia{}
	importer := newTestImporter(t, feedWith(fullRecord), store, media)

	_, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, media.callCount("https://cdn.example.com/router.jpg"))
	assert.Equal(t, 1, media.callCount("https://cdn.example.com/router-side.jpg"))

	product := store.product(t, "SYN-100")
	require.NotNil(t, product.FeaturedAssetID)
	for _, id := range product.GalleryAssetIDs {
		assert.NotEqual(t, *product.FeaturedAssetID, id)
	}
}

func TestImageFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	media := &fakeMedia{failURLs: map[string]bool{"https://cdn.example.com/router-side.jpg": true}}
	importer := newTestImporter(t, feedWith(fullRecord), store, media)

	summary, err := importer.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created, "record still saves without the image")
	assert.Equal(t, 1, summary.MediaErrors)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, "SYN-100", summary.Warnings[0].SKU)

	product := store.product(t, "SYN-100")
	assert.Equal(t, uint64(199990), product.RegularPrice, "other fields persisted")
	assert.Empty(t, product.GalleryAssetIDs)
}

func TestPersistenceFailureMarksRecordFailed(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("write failed")
	importer := newTestImporter(t, feedWith(
		fullRecord,
		`{"sku": "SYN-999", "name": "Also fails"}`,
	), store, &fakeMedia{})

	summary, err := importer.Run(context.Background())

	require.NoError(t, err, "persistence errors do not abort the run")
	assert.Equal(t, 2, summary.Failed)
	assert.Len(t, summary.Failures, 2)
}

func TestSecondRunRejectedWhileFirstActive(t *testing.T) {
	importer := newTestImporter(t, feedWith(fullRecord), newFakeStore(), &fakeMedia{})

	require.True(t, importer.runMu.TryLock())
	defer importer.runMu.Unlock()

	_, err := importer.Run(context.Background())
	assert.ErrorIs(t, err, lib.ErrRunInProgress)
	assert.True(t, importer.Running())
}

func TestMapAttributes(t *testing.T) {
	entries := mapAttributes(map[string]structs.FlexString{
		"brand":    "Mecer",
		"warranty": "24 months",
		"colour":   "",
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "Brand", entries[0].Name)
	assert.Equal(t, "Warranty", entries[1].Name)
	for _, entry := range entries {
		assert.Len(t, entry.Options, 1)
		assert.Zero(t, entry.Position)
		assert.True(t, entry.Visible)
		assert.False(t, entry.Variation)
	}
}

func TestApplyPricingLeavesRegularPriceWhenRRPZero(t *testing.T) {
	importer := newTestImporter(t, feedWith(fullRecord), newFakeStore(), &fakeMedia{})

	existing := uint64(12345)
	sale := uint64(999)
	product := &tables.Product{RegularPrice: existing, SalePrice: &sale}
	record := &structs.ProductRecord{RRPInclTax: 0, PromoPrice: 0, CostPrice: 0}

	importer.applyPricing(product, record)

	assert.Equal(t, existing, product.RegularPrice, "existing price not cleared")
	assert.Nil(t, product.SalePrice, "absent promo clears the sale price")
	assert.Zero(t, product.CostPrice, "cost written even when zero")
	assert.True(t, product.ManageStock)
}
