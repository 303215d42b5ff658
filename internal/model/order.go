package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable record created by a successful checkout.
// The total is derived from the order's items at checkout time and is
// never user-supplied.  Session type and user references are
// delete-protected so historical orders stay resolvable.
//
// Fields:
//  ID            – primary key identifier.
//  CreatedAt     – set once at insert, immutable.
//  SessionTypeID – session type the cart was keyed to.
//  UserID        – staff member who performed the checkout.
//  Total         – exact sum of the items' line totals.
type Order struct {
	ID            uint64          `json:"id"`              // orders.id
	CreatedAt     time.Time       `json:"created_at"`      // orders.created_at
	SessionTypeID uint64          `json:"session_type_id"` // orders.session_type_id
	UserID        uint64          `json:"user_id"`         // orders.user_id
	Total         decimal.Decimal `json:"total"`           // orders.total DECIMAL(10,2)
}

// OrderItem is a single line of an order.  Name and unit price are
// denormalized snapshots taken from the cart at checkout so the
// historical record is frozen even if the catalog later changes.
// Items cascade-delete with their order; the product reference is
// delete-protected.
//
// Fields:
//  ID          – primary key identifier.
//  OrderID     – owning order.
//  ProductID   – product sold (delete-protected reference).
//  ProductName – product name snapshot at checkout.
//  UnitPrice   – price snapshot at checkout.
//  Quantity    – positive integer quantity.
//  LineTotal   – UnitPrice × Quantity, exact.
type OrderItem struct {
	ID          uint64          `json:"id"`           // order_items.id
	OrderID     uint64          `json:"order_id"`     // order_items.order_id
	ProductID   uint64          `json:"product_id"`   // order_items.product_id
	ProductName string          `json:"product_name"` // order_items.product_name
	UnitPrice   decimal.Decimal `json:"unit_price"`   // order_items.unit_price DECIMAL(8,2)
	Quantity    uint32          `json:"quantity"`     // order_items.quantity
	LineTotal   decimal.Decimal `json:"line_total"`   // order_items.line_total DECIMAL(10,2)
}
