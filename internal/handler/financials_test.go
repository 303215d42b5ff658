package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/repository"
)

func TestParseReportDate(t *testing.T) {
	if got := parseReportDate(""); got != nil {
		t.Fatalf("empty input: got %v, want nil", got)
	}
	if got := parseReportDate("not-a-date"); got != nil {
		t.Fatalf("unparsable input: got %v, want nil", got)
	}
	if got := parseReportDate("31/01/2026"); got != nil {
		t.Fatalf("wrong layout: got %v, want nil", got)
	}
	got := parseReportDate("2026-01-31")
	if got == nil {
		t.Fatal("valid date: got nil")
	}
	if got.Format("2006-01-02") != "2026-01-31" {
		t.Fatalf("valid date: got %v", got)
	}
}

// Unparsable date filters must degrade to the unfiltered report, not
// reject the request.
func TestFinancialsIgnoresBadDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	h := NewFinancialsHandler(repository.NewReportRepo(db))

	// None of the four queries carries a WHERE clause or arguments.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total), 0) FROM orders`)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("23.50"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DATE(created_at) AS day, SUM(total) FROM orders GROUP BY day ORDER BY day`)).
		WillReturnRows(sqlmock.NewRows([]string{"day", "total"}).AddRow("2026-08-31", "23.50"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT st.id, st.name, SUM(o.total)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total"}).AddRow(3, "Public Session", "23.50"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.category, SUM(oi.line_total)`)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("ADDON", "3.50").
			AddRow("ADMISSION", "20.00"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/financials/?start_date=banana&end_date=2026-13-99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)

	if err := h.Financials(c); err != nil {
		t.Fatalf("Financials: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OverallTotal string `json:"overall_total"`
		ByDay        []struct {
			Day   string `json:"day"`
			Total string `json:"total"`
		} `json:"revenue_by_day"`
		ByCategory []struct {
			Category string `json:"category"`
			Total    string `json:"total"`
		} `json:"revenue_by_category"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OverallTotal != "23.50" {
		t.Fatalf("overall_total = %q", resp.OverallTotal)
	}
	if len(resp.ByDay) != 1 || resp.ByDay[0].Day != "2026-08-31" {
		t.Fatalf("revenue_by_day = %#v", resp.ByDay)
	}
	if len(resp.ByCategory) != 2 {
		t.Fatalf("revenue_by_category = %#v", resp.ByCategory)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
