package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/repository"
)

func newCatalogHandler(t *testing.T) (*CatalogHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewCatalogHandler(
		repository.NewSessionTypeRepo(db),
		repository.NewProductRepo(db),
		repository.NewSessionProductRepo(db),
		repository.NewOrderRepo(db))
	return h, mock
}

func jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)
	return c, rec
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	h, mock := newCatalogHandler(t)
	e := echo.New()

	c, rec := jsonRequest(e, http.MethodPost, "/v1/admin/products",
		`{"name":"Mystery Box","category":"FOOD"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateProductDuplicateConflict(t *testing.T) {
	h, mock := newCatalogHandler(t)
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO products (name, sku, category, is_active, show_on_dashboard) VALUES (?, ?, ?, ?, ?)`)).
		WithArgs("Adult Admission", "", "ADMISSION", true, true).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'Adult Admission-' for key 'products.name_sku'"))

	c, rec := jsonRequest(e, http.MethodPost, "/v1/admin/products",
		`{"name":"Adult Admission","category":"admission"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteSessionTypeWithOrdersConflict(t *testing.T) {
	h, mock := newCatalogHandler(t)
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM orders WHERE session_type_id = ?)`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/session-types/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("user_id", testUserID)

	if err := h.DeleteSessionType(c); err != nil {
		t.Fatalf("DeleteSessionType: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteProductReferencedByOrderItems(t *testing.T) {
	h, mock := newCatalogHandler(t)
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = ?)`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/products/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", testUserID)

	if err := h.DeleteProduct(c); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
