package tables

import (
	"syntech_importer/structs"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	tableName        struct{}                 `bun:"table:products,alias:p"`
	ID               uuid.UUID                `bun:"id,pk,type:uuid" json:"id"`
	SKU              string                   `bun:"sku,notnull,unique" json:"sku"` // natural key correlating feed records to catalog products
	Name             string                   `bun:"name,notnull" json:"name"`
	Description      string                   `bun:"description" json:"description,omitempty"`
	ShortDescription string                   `bun:"short_description" json:"short_description,omitempty"`
	RegularPrice     uint64                   `bun:"regular_price" json:"regular_price"` // stored in cents
	SalePrice        *uint64                  `bun:"sale_price" json:"sale_price,omitempty"`
	CostPrice        uint64                   `bun:"cost_price" json:"cost_price"` // supplier cost ex VAT, internal reference only
	Stock            int                      `bun:"stock" json:"stock"`
	ManageStock      bool                     `bun:"manage_stock,notnull" json:"manage_stock"`
	Weight           *float64                 `bun:"weight" json:"weight,omitempty"`
	Length           *float64                 `bun:"length" json:"length,omitempty"`
	Width            *float64                 `bun:"width" json:"width,omitempty"`
	Height           *float64                 `bun:"height" json:"height,omitempty"`
	CategoryIDs      []uuid.UUID              `bun:"category_ids,array" json:"category_ids,omitempty"`
	Attributes       []structs.AttributeEntry `bun:"attributes,type:jsonb" json:"attributes,omitempty"`
	FeaturedAssetID  *uuid.UUID               `bun:"featured_asset_id,type:uuid" json:"featured_asset_id,omitempty"`
	GalleryAssetIDs  []uuid.UUID              `bun:"gallery_asset_ids,array" json:"gallery_asset_ids,omitempty"`
	CreatedAt        time.Time                `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt        time.Time                `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

// Category is one node of the product category tree. Root nodes have a nil
// parent. The (name, parent_id) pair is unique so concurrent find-or-create
// cannot produce duplicate nodes.
type Category struct {
	tableName struct{}   `bun:"table:product_categories,alias:pc"`
	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull,unique:name_parent" json:"name"`
	Slug      string     `bun:"slug,notnull" json:"slug"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid,unique:name_parent" json:"parent_id,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:now()" json:"created_at"`
}

// MediaAsset is a downloaded product image held in permanent storage.
// Assets are never deleted by the importer, even once unreferenced.
type MediaAsset struct {
	tableName  struct{}  `bun:"table:product_media,alias:pm"`
	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductID  uuid.UUID `bun:"product_id,type:uuid,notnull" json:"product_id"`
	Title      string    `bun:"title,notnull" json:"title"`
	SourceURL  string    `bun:"source_url,notnull" json:"source_url"`
	FilePath   string    `bun:"file_path,notnull" json:"file_path"`
	MimeType   string    `bun:"mime_type" json:"mime_type,omitempty"`
	Width      int       `bun:"width" json:"width,omitempty"`
	Height     int       `bun:"height" json:"height,omitempty"`
	Checksum   string    `bun:"checksum" json:"checksum,omitempty"`
	IsFeatured bool      `bun:"is_featured,notnull" json:"is_featured"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
}
