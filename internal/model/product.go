package model

import "fmt"

// Category classifies a product into one of a closed set of kinds.
// The set is closed on purpose: parsing an unknown value is an error
// rather than a silent fallthrough, so a new category added to the
// database without a matching bucket mapping is caught loudly.
type Category string

const (
	CategoryAdmission Category = "ADMISSION" // entry to a session
	CategoryHire      Category = "HIRE"      // equipment hire (e.g. skates)
	CategoryAddon     Category = "ADDON"     // extras sold alongside admission
	CategoryMerch     Category = "MERCH"     // merchandise
)

// Bucket names the dashboard column a category is displayed under.
// Admission and hire share the "event" column.
type Bucket string

const (
	BucketEvent Bucket = "event"
	BucketAddon Bucket = "addon"
	BucketMerch Bucket = "merch"
)

// ParseCategory validates a raw category string from the database or a
// request body.  Unknown values return an error.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryAdmission, CategoryHire, CategoryAddon, CategoryMerch:
		return Category(raw), nil
	}
	return "", fmt.Errorf("unknown product category %q", raw)
}

// Bucket maps the category to its dashboard display bucket.  The
// mapping is total over the closed category set.
func (c Category) Bucket() Bucket {
	switch c {
	case CategoryAdmission, CategoryHire:
		return BucketEvent
	case CategoryAddon:
		return BucketAddon
	default:
		return BucketMerch
	}
}

// Product is a sellable item.  A product carries no price of its own;
// pricing always comes from a SessionProduct row for a specific
// session type.  ShowOnDashboard hides a product from the POS cart UI
// without deactivating it for historical orders.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name; unique together with SKU.
//  SKU             – optional stock keeping unit.
//  Category        – closed category enum (see Category).
//  IsActive        – whether the product can currently be sold.
//  ShowOnDashboard – whether the product appears on the POS dashboard.
type Product struct {
	ID              uint64   `json:"id"`                // products.id
	Name            string   `json:"name"`              // products.name
	SKU             string   `json:"sku"`               // products.sku
	Category        Category `json:"category"`          // products.category
	IsActive        bool     `json:"is_active"`         // products.is_active
	ShowOnDashboard bool     `json:"show_on_dashboard"` // products.show_on_dashboard
}
