package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"syntech_importer/database"
	"syntech_importer/lib"
	"syntech_importer/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CatalogStore is the capability set the reconciler consumes from the
// persistent catalog. The reconciler never touches the database directly.
type CatalogStore interface {
	// FindProductBySKU returns the product for an exact SKU match, or nil
	// when the catalog holds none.
	FindProductBySKU(ctx context.Context, sku string) (*tables.Product, error)
	CreateProduct(ctx context.Context, product *tables.Product) error
	UpdateProduct(ctx context.Context, product *tables.Product) error
	// FindOrCreateCategory resolves a (name, parent) pair to exactly one
	// node, creating it when absent. Safe under concurrent creation.
	FindOrCreateCategory(ctx context.Context, name string, parentID *uuid.UUID) (*tables.Category, error)
	CreateAsset(ctx context.Context, asset *tables.MediaAsset) error
}

// CatalogService is the bun-backed CatalogStore implementation.
type CatalogService struct {
	logger *gecho.Logger
	db     *database.DB
}

func NewCatalogService(logger *gecho.Logger, db *database.DB) *CatalogService {
	return &CatalogService{
		logger: logger,
		db:     db,
	}
}

func (cs *CatalogService) FindProductBySKU(ctx context.Context, sku string) (*tables.Product, error) {
	var product tables.Product

	err := database.WithRetry(ctx, func() error {
		return cs.db.NewSelect().
			Model(&product).
			Where("sku = ?", sku).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}

	return &product, nil
}

func (cs *CatalogService) CreateProduct(ctx context.Context, product *tables.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := database.WithRetry(ctx, func() error {
		_, err := cs.db.NewInsert().Model(product).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.SKU, lib.MapPgError(err))
	}

	return nil
}

func (cs *CatalogService) UpdateProduct(ctx context.Context, product *tables.Product) error {
	product.UpdatedAt = time.Now()

	err := database.WithRetry(ctx, func() error {
		_, err := cs.db.NewUpdate().Model(product).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.SKU, lib.MapPgError(err))
	}

	return nil
}

// FindOrCreateCategory looks up a node by exact name under the given parent
// and creates it when missing. The (name, parent_id) unique constraint is the
// authority under races: a conflicting insert falls back to a second lookup.
func (cs *CatalogService) FindOrCreateCategory(ctx context.Context, name string, parentID *uuid.UUID) (*tables.Category, error) {
	existing, err := cs.findCategory(ctx, name, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	category := &tables.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug.Make(name),
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}

	err = database.WithRetry(ctx, func() error {
		_, err := cs.db.NewInsert().Model(category).Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(lib.MapPgError(err), lib.ErrConflict) {
			// Another run created the node between lookup and insert
			existing, lookupErr := cs.findCategory(ctx, name, parentID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}

	cs.logger.Debug("Created category node",
		gecho.Field("name", name),
		gecho.Field("id", category.ID),
	)

	return category, nil
}

func (cs *CatalogService) findCategory(ctx context.Context, name string, parentID *uuid.UUID) (*tables.Category, error) {
	var category tables.Category

	err := database.WithRetry(ctx, func() error {
		query := cs.db.NewSelect().
			Model(&category).
			Where("name = ?", name).
			Limit(1)
		if parentID == nil {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", *parentID)
		}
		return query.Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category %q: %w", name, err)
	}

	return &category, nil
}

func (cs *CatalogService) CreateAsset(ctx context.Context, asset *tables.MediaAsset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.CreatedAt = time.Now()

	err := database.WithRetry(ctx, func() error {
		_, err := cs.db.NewInsert().Model(asset).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create media asset: %w", lib.MapPgError(err))
	}

	return nil
}
