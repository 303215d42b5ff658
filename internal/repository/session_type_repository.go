package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/venuehq/pos-dashboard/internal/model"
)

// SessionTypeRepo manages persistence for session types.  Session
// types are read on every dashboard view and written only through
// the manager catalog surface, so reads dominate.
type SessionTypeRepo struct {
	db *sql.DB
}

// NewSessionTypeRepo constructs a SessionTypeRepo with the given DB handle.
func NewSessionTypeRepo(db *sql.DB) *SessionTypeRepo { return &SessionTypeRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *SessionTypeRepo) DB() *sql.DB { return r.db }

const sessionTypeCols = `id, name, slug, is_active, sort_order`

func scanSessionType(row interface{ Scan(...any) error }, st *model.SessionType) error {
	return row.Scan(&st.ID, &st.Name, &st.Slug, &st.IsActive, &st.SortOrder)
}

// Create inserts a new session type and assigns the generated ID back
// to the struct.  Duplicate name or slug surfaces as ErrConflict.
func (r *SessionTypeRepo) Create(ctx context.Context, st *model.SessionType) error {
	const q = `INSERT INTO session_types (name, slug, is_active, sort_order) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, st.Name, st.Slug, st.IsActive, st.SortOrder)
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
	st.ID = uint64(id)
	return nil
}

// Update rewrites the mutable fields of a session type.  Returns
// ErrSessionTypeNotFound when the row does not exist.
func (r *SessionTypeRepo) Update(ctx context.Context, st *model.SessionType) error {
	const q = `UPDATE session_types SET name = ?, slug = ?, is_active = ?, sort_order = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, st.Name, st.Slug, st.IsActive, st.SortOrder, st.ID)
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
		// Distinguish "row missing" from "no column changed".
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM session_types WHERE id = ?)`, st.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrSessionTypeNotFound
		}
	}
	return nil
}

// List returns every session type ordered by (sort_order, name).
func (r *SessionTypeRepo) List(ctx context.Context) ([]model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types ORDER BY sort_order, name`
	return r.list(ctx, q)
}

// ListActive returns active session types ordered by (sort_order, name).
// This is the set the dashboard offers for selection.
func (r *SessionTypeRepo) ListActive(ctx context.Context) ([]model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types WHERE is_active = TRUE ORDER BY sort_order, name`
	return r.list(ctx, q)
}

func (r *SessionTypeRepo) list(ctx context.Context, q string) ([]model.SessionType, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SessionType, 0)
	for rows.Next() {
		var st model.SessionType
		if err := scanSessionType(rows, &st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetByID loads a session type regardless of its active flag.  The
// manager surface uses it so inactive rows stay editable.
func (r *SessionTypeRepo) GetByID(ctx context.Context, id uint64) (*model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types WHERE id = ?`
	var st model.SessionType
	if err := scanSessionType(r.db.QueryRowContext(ctx, q, id), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetActiveByID loads a single active session type.  It returns
// ErrSessionTypeNotFound for missing or inactive rows.
func (r *SessionTypeRepo) GetActiveByID(ctx context.Context, id uint64) (*model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types WHERE id = ? AND is_active = TRUE`
	var st model.SessionType
	if err := scanSessionType(r.db.QueryRowContext(ctx, q, id), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetActiveByIDTx is GetActiveByID inside an existing transaction.
// Checkout uses it to re-validate the cart's session type atomically
// with the order write.
func (r *SessionTypeRepo) GetActiveByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types WHERE id = ? AND is_active = TRUE`
	var st model.SessionType
	if err := scanSessionType(tx.QueryRowContext(ctx, q, id), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// FirstActive returns the first active session type in display order,
// or ErrSessionTypeNotFound when none are configured.  The dashboard
// defaults to it when neither the query parameter nor the cart names
// a session type.
func (r *SessionTypeRepo) FirstActive(ctx context.Context) (*model.SessionType, error) {
	const q = `SELECT ` + sessionTypeCols + ` FROM session_types WHERE is_active = TRUE ORDER BY sort_order, name LIMIT 1`
	var st model.SessionType
	if err := scanSessionType(r.db.QueryRowContext(ctx, q), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Delete removes a session type that no order references.  Session
// types referenced by orders are delete-protected and surface as
// ErrConflict; staff should deactivate them instead.
func (r *SessionTypeRepo) Delete(ctx context.Context, id uint64) error {
	var referenced bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE session_type_id = ?)`, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_types WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionTypeNotFound
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (errno 1062 on unique constraint violations).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
