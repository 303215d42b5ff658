package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func mustDate(t *testing.T, raw string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t.Fatalf("bad test date %q: %v", raw, err)
	}
	return &d
}

func TestOverallTotalUnfiltered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total), 0) FROM orders`)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("123.45"))

	total, err := NewReportRepo(db).OverallTotal(context.Background(), DateRange{})
	if err != nil {
		t.Fatalf("OverallTotal: %v", err)
	}
	if got := total.StringFixed(2); got != "123.45" {
		t.Fatalf("total = %s, want 123.45", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOverallTotalInclusiveBounds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE DATE(created_at) >= ? AND DATE(created_at) <= ?`)).
		WithArgs("2026-01-01", "2026-01-31").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("50.00"))

	dr := DateRange{Start: mustDate(t, "2026-01-01"), End: mustDate(t, "2026-01-31")}
	total, err := NewReportRepo(db).OverallTotal(context.Background(), dr)
	if err != nil {
		t.Fatalf("OverallTotal: %v", err)
	}
	if got := total.StringFixed(2); got != "50.00" {
		t.Fatalf("total = %s, want 50.00", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevenueByDayStartOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT DATE(created_at) AS day, SUM(total) FROM orders WHERE DATE(created_at) >= ? GROUP BY day ORDER BY day`)).
		WithArgs("2026-02-01").
		WillReturnRows(sqlmock.NewRows([]string{"day", "total"}).
			AddRow("2026-02-01", "10.00").
			AddRow("2026-02-03", "23.50"))

	out, err := NewReportRepo(db).RevenueByDay(context.Background(), DateRange{Start: mustDate(t, "2026-02-01")})
	if err != nil {
		t.Fatalf("RevenueByDay: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[1].Day != "2026-02-03" || out[1].Total.StringFixed(2) != "23.50" {
		t.Fatalf("row 1 = %s/%s", out[1].Day, out[1].Total.StringFixed(2))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevenueByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.category, SUM(oi.line_total)`)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("ADDON", "3.50").
			AddRow("ADMISSION", "20.00"))

	out, err := NewReportRepo(db).RevenueByCategory(context.Background(), DateRange{})
	if err != nil {
		t.Fatalf("RevenueByCategory: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Category != "ADDON" || out[0].Total.StringFixed(2) != "3.50" {
		t.Fatalf("row 0 = %s/%s", out[0].Category, out[0].Total.StringFixed(2))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
