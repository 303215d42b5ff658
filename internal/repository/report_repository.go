package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ReportRepo aggregates persisted orders and order items into the
// read-only financial views.  It never mutates anything.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// DateRange is an optional inclusive calendar-date filter.  A nil
// bound means unbounded on that side.  Filtering compares against
// DATE(orders.created_at), so the granularity is whole days.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// where renders the range as a SQL fragment over the given column
// plus its arguments.  The fragment starts with " WHERE" or is empty.
func (dr DateRange) where(col string) (string, []interface{}) {
	clause := ""
	args := []interface{}{}
	if dr.Start != nil {
		clause += " WHERE DATE(" + col + ") >= ?"
		args = append(args, dr.Start.Format("2006-01-02"))
	}
	if dr.End != nil {
		if clause == "" {
			clause = " WHERE"
		} else {
			clause += " AND"
		}
		clause += " DATE(" + col + ") <= ?"
		args = append(args, dr.End.Format("2006-01-02"))
	}
	return clause, args
}

// DayRevenue is one row of the revenue-by-day view.
type DayRevenue struct {
	Day   string          `json:"day"` // calendar date, YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// SessionTypeRevenue is one row of the revenue-by-session-type view.
type SessionTypeRevenue struct {
	SessionTypeID   uint64          `json:"session_type_id"`
	SessionTypeName string          `json:"session_type"`
	Total           decimal.Decimal `json:"total"`
}

// CategoryRevenue is one row of the revenue-by-category view.  The
// total sums order_items.line_total, not orders.total, so it reflects
// how each product category contributed.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// OverallTotal sums orders.total over the filtered range.  Zero when
// no orders match.
func (r *ReportRepo) OverallTotal(ctx context.Context, dr DateRange) (decimal.Decimal, error) {
	clause, args := dr.where("created_at")
	q := `SELECT COALESCE(SUM(total), 0) FROM orders` + clause
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return decimal.Decimal{}, err
	}
	return total, nil
}

// RevenueByDay groups orders.total by the calendar date of
// created_at, ascending.
func (r *ReportRepo) RevenueByDay(ctx context.Context, dr DateRange) ([]DayRevenue, error) {
	clause, args := dr.where("created_at")
	q := `SELECT DATE(created_at) AS day, SUM(total) FROM orders` + clause +
		` GROUP BY day ORDER BY day`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DayRevenue, 0)
	for rows.Next() {
		var row DayRevenue
		if err := rows.Scan(&row.Day, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RevenueBySessionType groups orders.total by session type, ordered
// by session type name.
func (r *ReportRepo) RevenueBySessionType(ctx context.Context, dr DateRange) ([]SessionTypeRevenue, error) {
	clause, args := dr.where("o.created_at")
	q := `SELECT st.id, st.name, SUM(o.total)
	      FROM orders o
	      JOIN session_types st ON st.id = o.session_type_id` + clause +
		` GROUP BY st.id, st.name ORDER BY st.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionTypeRevenue, 0)
	for rows.Next() {
		var row SessionTypeRevenue
		if err := rows.Scan(&row.SessionTypeID, &row.SessionTypeName, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RevenueByCategory sums order_items.line_total for items belonging
// to orders in the filtered range, grouped by product category.
func (r *ReportRepo) RevenueByCategory(ctx context.Context, dr DateRange) ([]CategoryRevenue, error) {
	clause, args := dr.where("o.created_at")
	q := `SELECT p.category, SUM(oi.line_total)
	      FROM order_items oi
	      JOIN orders o ON o.id = oi.order_id
	      JOIN products p ON p.id = oi.product_id` + clause +
		` GROUP BY p.category ORDER BY p.category`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CategoryRevenue, 0)
	for rows.Next() {
		var row CategoryRevenue
		if err := rows.Scan(&row.Category, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
