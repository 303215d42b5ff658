package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/venuehq/pos-dashboard/internal/model"
)

// SessionProductRepo manages the per-session-type price list.  It is
// the authoritative price source for cart adds: a product with no
// active session_products row for the current session type simply
// cannot be sold in that session.
type SessionProductRepo struct {
	db *sql.DB
}

// NewSessionProductRepo constructs a SessionProductRepo with the given DB handle.
func NewSessionProductRepo(db *sql.DB) *SessionProductRepo { return &SessionProductRepo{db: db} }

// Upsert creates or replaces the price row for a (session type,
// product) pair.  The pair is unique, so a second upsert overwrites
// price and is_active in place.  Foreign key violations (unknown
// session type or product) surface as ErrConflict.
func (r *SessionProductRepo) Upsert(ctx context.Context, sp *model.SessionProduct) error {
	const q = `INSERT INTO session_products (session_type_id, product_id, price, is_active)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE price = VALUES(price), is_active = VALUES(is_active)`
	res, err := r.db.ExecContext(ctx, q, sp.SessionTypeID, sp.ProductID, sp.Price.StringFixed(2), sp.IsActive)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		sp.ID = uint64(id)
	}
	return nil
}

// ResolveForCart looks up the price row a cart add needs.  All of the
// following must hold or the lookup fails with ErrPriceNotFound: the
// session type is active, the price row is active, the product is
// active, and the product is visible on the dashboard.  On success it
// returns the product name and the exact decimal price to snapshot
// into the cart line.
func (r *SessionProductRepo) ResolveForCart(ctx context.Context, sessionTypeID, productID uint64) (name string, price decimal.Decimal, err error) {
	const q = `SELECT p.name, sp.price
	           FROM session_products sp
	           JOIN session_types st ON st.id = sp.session_type_id
	           JOIN products p ON p.id = sp.product_id
	           WHERE sp.session_type_id = ? AND sp.product_id = ?
	             AND sp.is_active = TRUE
	             AND st.is_active = TRUE
	             AND p.is_active = TRUE
	             AND p.show_on_dashboard = TRUE`
	err = r.db.QueryRowContext(ctx, q, sessionTypeID, productID).Scan(&name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return "", decimal.Decimal{}, ErrPriceNotFound
	}
	return name, price, err
}

// ListForDashboard returns the active, dashboard-visible priced
// products for a session type, ordered by (category, name) the way
// the dashboard buckets them.
func (r *SessionProductRepo) ListForDashboard(ctx context.Context, sessionTypeID uint64) ([]model.PricedProduct, error) {
	const q = `SELECT p.id, p.name, p.sku, p.category, p.is_active, p.show_on_dashboard, sp.price
	           FROM session_products sp
	           JOIN products p ON p.id = sp.product_id
	           WHERE sp.session_type_id = ?
	             AND sp.is_active = TRUE
	             AND p.is_active = TRUE
	             AND p.show_on_dashboard = TRUE
	           ORDER BY p.category, p.name`
	rows, err := r.db.QueryContext(ctx, q, sessionTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PricedProduct, 0)
	for rows.Next() {
		var pp model.PricedProduct
		var rawCategory string
		if err := rows.Scan(&pp.Product.ID, &pp.Product.Name, &pp.Product.SKU, &rawCategory,
			&pp.Product.IsActive, &pp.Product.ShowOnDashboard, &pp.Price); err != nil {
			return nil, err
		}
		category, err := model.ParseCategory(rawCategory)
		if err != nil {
			return nil, err
		}
		pp.Product.Category = category
		out = append(out, pp)
	}
	return out, rows.Err()
}

// isForeignKeyViolation reports whether err is a MySQL foreign key
// error (errno 1452 on inserts referencing a missing parent row,
// 1451 on deletes of a referenced parent).
func isForeignKeyViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "1452") || strings.Contains(err.Error(), "1451"))
}
