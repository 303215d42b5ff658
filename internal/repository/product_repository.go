package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/venuehq/pos-dashboard/internal/model"
)

// ProductRepo manages persistence for products.  Products carry no
// price; pricing lives in session_products.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the given DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, sku, category, is_active, show_on_dashboard`

func scanProduct(row interface{ Scan(...any) error }, p *model.Product) error {
	var rawCategory string
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &rawCategory, &p.IsActive, &p.ShowOnDashboard); err != nil {
		return err
	}
	category, err := model.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	p.Category = category
	return nil
}

// Create inserts a new product.  A duplicate (name, sku) pair
// surfaces as ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products (name, sku, category, is_active, show_on_dashboard) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.SKU, string(p.Category), p.IsActive, p.ShowOnDashboard)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites the mutable fields of a product.  Returns
// ErrProductNotFound when the row does not exist and ErrConflict on
// a duplicate (name, sku) pair.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	const q = `UPDATE products SET name = ?, sku = ?, category = ?, is_active = ?, show_on_dashboard = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.SKU, string(p.Category), p.IsActive, p.ShowOnDashboard, p.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
	}
	return nil
}

// List returns every product ordered by name.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID loads a product regardless of its active or visibility
// flags.  Returns ErrProductNotFound when missing.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id = ?`
	var p model.Product
	if err := scanProduct(r.db.QueryRowContext(ctx, q, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ExistsTx reports whether the product row still exists, inside the
// caller's transaction.  Checkout re-resolves every cart line through
// this check; a vanished product fails the whole transaction.
func (r *ProductRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// Delete removes a product that no order item references.  Products
// referenced by order items are delete-protected and surface as
// ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	var referenced bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = ?)`, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
