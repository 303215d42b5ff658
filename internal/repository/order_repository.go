package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venuehq/pos-dashboard/internal/model"
)

// OrderRepo persists orders and their items.  All write methods take
// an external *sql.Tx: checkout is a single all-or-nothing
// transaction orchestrated by the handler, and the repository never
// commits or rolls back on its own.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new order row inside the caller's transaction and
// populates the generated ID and created_at on the given order.  The
// total is inserted as passed; checkout inserts zero first and fixes
// it up with UpdateTotalTx once all items are written.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (session_type_id, user_id, total) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, o.SessionTypeID, o.UserID, o.Total.StringFixed(2))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back created_at so the caller sees the DB-assigned value.
	const sel = `SELECT created_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt)
}

// CreateItemsBulkTx inserts all order items in a single statement
// inside the caller's transaction.  The caller must set OrderID on
// every item.  An empty slice has no effect and returns nil.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total) VALUES `
	args := make([]interface{}, 0, len(items)*6)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, it.OrderID, it.ProductID, it.ProductName,
			it.UnitPrice.StringFixed(2), it.Quantity, it.LineTotal.StringFixed(2))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// UpdateTotalTx rewrites the order's derived total inside the
// caller's transaction.
func (r *OrderRepo) UpdateTotalTx(ctx context.Context, tx *sql.Tx, orderID uint64, total decimal.Decimal) error {
	const q = `UPDATE orders SET total = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, total.StringFixed(2), orderID)
	return err
}

// OrderSummaryRow is one order as listed on the recent-orders view:
// the order plus its session type name and item count.
type OrderSummaryRow struct {
	ID              uint64          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	SessionTypeName string          `json:"session_type"`
	Total           decimal.Decimal `json:"total"`
	ItemCount       int             `json:"item_count"`
}

// ListRecent returns the newest orders first, capped at limit.
func (r *OrderRepo) ListRecent(ctx context.Context, limit int) ([]OrderSummaryRow, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT o.id, o.created_at, st.name, o.total,
	                  (SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi WHERE oi.order_id = o.id)
	           FROM orders o
	           JOIN session_types st ON st.id = o.session_type_id
	           ORDER BY o.created_at DESC, o.id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]OrderSummaryRow, 0)
	for rows.Next() {
		var row OrderSummaryRow
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.SessionTypeName, &row.Total, &row.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
