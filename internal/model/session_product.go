package model

import "github.com/shopspring/decimal"

// SessionProduct is the join of a SessionType and a Product carrying
// the authoritative price for that pairing.  A cart add resolves its
// price here; Product itself has no price column.  The pair
// (session_type_id, product_id) is unique.
//
// Fields:
//  ID            – primary key identifier.
//  SessionTypeID – session type being priced.
//  ProductID     – product being priced.
//  Price         – decimal price with two fractional digits.
//  IsActive      – whether this price row is currently sellable.
type SessionProduct struct {
	ID            uint64          `json:"id"`              // session_products.id
	SessionTypeID uint64          `json:"session_type_id"` // session_products.session_type_id
	ProductID     uint64          `json:"product_id"`      // session_products.product_id
	Price         decimal.Decimal `json:"price"`           // session_products.price DECIMAL(8,2)
	IsActive      bool            `json:"is_active"`       // session_products.is_active
}

// PricedProduct pairs a dashboard-visible product with its price for
// the currently selected session type.  It is the unit the dashboard
// view groups into display buckets.
type PricedProduct struct {
	Product Product         `json:"product"`
	Price   decimal.Decimal `json:"price"`
}
