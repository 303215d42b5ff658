package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/venuehq/pos-dashboard/internal/cart"
	"github.com/venuehq/pos-dashboard/internal/repository"
)

const testUserID = uint64(7)

// newCartHandler wires a CartHandler onto a sqlmock database and an
// in-memory cart store.
func newCartHandler(t *testing.T) (*CartHandler, sqlmock.Sqlmock, *cart.MemoryStore, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := cart.NewMemoryStore()
	h := NewCartHandler(store,
		repository.NewSessionTypeRepo(db),
		repository.NewSessionProductRepo(db),
		repository.NewProductRepo(db),
		repository.NewOrderRepo(db))
	return h, mock, store, db
}

// postForm builds an authenticated echo context for a form POST.
func postForm(e *echo.Echo, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)
	return c, rec
}

// seedCart stores a cart for the test user.
func seedCart(t *testing.T, store *cart.MemoryStore, build func(*cart.Cart)) {
	t.Helper()
	userCart := cart.New()
	build(userCart)
	if err := store.Save(context.Background(), testUserID, userCart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func loadCart(t *testing.T, store *cart.MemoryStore) *cart.Cart {
	t.Helper()
	userCart, err := store.Load(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return userCart
}

func TestCartAddRequiresSessionType(t *testing.T) {
	h, mock, _, _ := newCartHandler(t)
	e := echo.New()

	c, rec := postForm(e, "/api/cart/add/", url.Values{"product_id": {"5"}})
	if err := h.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); got != "No session type selected" {
		t.Fatalf("body = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCartAddMissingProductID(t *testing.T) {
	h, _, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) { c.SelectSessionType(3) })

	c, rec := postForm(e, "/api/cart/add/", url.Values{})
	if err := h.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); got != "Missing product_id" {
		t.Fatalf("body = %q", got)
	}
}

func TestCartAddSnapshotsNameAndPrice(t *testing.T) {
	h, mock, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) { c.SelectSessionType(3) })

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, slug, is_active, sort_order FROM session_types WHERE id = ? AND is_active = TRUE`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "is_active", "sort_order"}).
			AddRow(3, "Public Session", "public-session", true, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.name, sp.price`)).
		WithArgs(uint64(3), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price"}).AddRow("Adult Admission", "10.00"))

	// quantity 0 must be coerced to 1.
	c, rec := postForm(e, "/api/cart/add/", url.Values{"product_id": {"5"}, "quantity": {"0"}})
	if err := h.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	saved := loadCart(t, store)
	item, ok := saved.Items["5"]
	if !ok {
		t.Fatalf("product 5 not in cart: %#v", saved.Items)
	}
	if item.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", item.Quantity)
	}
	if item.Name != "Adult Admission" || item.Price.StringFixed(2) != "10.00" {
		t.Fatalf("snapshot = %q/%s", item.Name, item.Price.StringFixed(2))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	h, mock, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) { c.SelectSessionType(3) })

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, slug, is_active, sort_order FROM session_types WHERE id = ? AND is_active = TRUE`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "is_active", "sort_order"}).
			AddRow(3, "Public Session", "public-session", true, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.name, sp.price`)).
		WithArgs(uint64(3), uint64(99)).
		WillReturnError(sql.ErrNoRows)

	c, rec := postForm(e, "/api/cart/add/", url.Values{"product_id": {"99"}})
	if err := h.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "Product not available for this session type" {
		t.Fatalf("body = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCartUpdateNotInCart(t *testing.T) {
	h, _, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) { c.SelectSessionType(3) })

	c, rec := postForm(e, "/api/cart/update/", url.Values{"product_id": {"5"}, "quantity": {"2"}})
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); got != "Product not in cart" {
		t.Fatalf("body = %q", got)
	}
}

func TestCartUpdateZeroRemovesLine(t *testing.T) {
	h, _, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) {
		c.SelectSessionType(3)
		_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 2)
	})

	c, rec := postForm(e, "/api/cart/update/", url.Values{"product_id": {"5"}, "quantity": {"0"}})
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	saved := loadCart(t, store)
	if len(saved.Items) != 0 {
		t.Fatalf("items remain: %#v", saved.Items)
	}
	if saved.SessionTypeID != 3 {
		t.Fatalf("session type lost: %d", saved.SessionTypeID)
	}
}

func TestCartClearKeepsSessionType(t *testing.T) {
	h, _, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) {
		c.SelectSessionType(3)
		_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 2)
	})

	c, rec := postForm(e, "/api/cart/clear/", url.Values{})
	if err := h.Clear(c); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	saved := loadCart(t, store)
	if len(saved.Items) != 0 || saved.SessionTypeID != 3 {
		t.Fatalf("cart after clear: %#v", saved)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	h, _, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) { c.SelectSessionType(3) })

	c, rec := postForm(e, "/api/cart/checkout/", url.Values{})
	if err := h.Checkout(c); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); got != "Cart is empty" {
		t.Fatalf("body = %q", got)
	}
}

func TestCheckoutPersistsOrderAndClearsCart(t *testing.T) {
	h, mock, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) {
		c.SelectSessionType(3)
		_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 2)
		_ = c.Add(9, "Slushie", decimal.RequireFromString("3.50"), 1)
	})

	created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, slug, is_active, sort_order FROM session_types WHERE id = ? AND is_active = TRUE`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "is_active", "sort_order"}).
			AddRow(3, "Public Session", "public-session", true, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders (session_type_id, user_id, total) VALUES (?, ?, ?)`)).
		WithArgs(uint64(3), testUserID, "0.00").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM orders WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	// Lines are written in product id order: 5 then 9.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`)).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total) VALUES (?, ?, ?, ?, ?, ?),(?, ?, ?, ?, ?, ?)`)).
		WithArgs(
			uint64(42), uint64(5), "Adult Admission", "10.00", uint32(2), "20.00",
			uint64(42), uint64(9), "Slushie", "3.50", uint32(1), "3.50",
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET total = ? WHERE id = ?`)).
		WithArgs("23.50", uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := postForm(e, "/api/cart/checkout/", url.Values{})
	if err := h.Checkout(c); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OrderID uint64       `json:"order_id"`
		Summary cart.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderID != 42 {
		t.Fatalf("order_id = %d, want 42", resp.OrderID)
	}
	if resp.Summary.Total != "0.00" || resp.Summary.ItemCount != 0 {
		t.Fatalf("summary after checkout = %#v", resp.Summary)
	}

	saved := loadCart(t, store)
	if len(saved.Items) != 0 {
		t.Fatalf("cart not cleared: %#v", saved.Items)
	}
	if saved.SessionTypeID != 3 {
		t.Fatalf("session type lost: %d", saved.SessionTypeID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCheckoutRollsBackWhenProductVanishes(t *testing.T) {
	h, mock, store, _ := newCartHandler(t)
	e := echo.New()
	seedCart(t, store, func(c *cart.Cart) {
		c.SelectSessionType(3)
		_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 2)
	})

	created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, slug, is_active, sort_order FROM session_types WHERE id = ? AND is_active = TRUE`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "is_active", "sort_order"}).
			AddRow(3, "Public Session", "public-session", true, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders (session_type_id, user_id, total) VALUES (?, ?, ?)`)).
		WithArgs(uint64(3), testUserID, "0.00").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM orders WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	c, rec := postForm(e, "/api/cart/checkout/", url.Values{})
	if err := h.Checkout(c); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "Product no longer exists" {
		t.Fatalf("body = %q", got)
	}

	// The failed checkout must leave the cart intact for a retry.
	saved := loadCart(t, store)
	if len(saved.Items) != 1 {
		t.Fatalf("cart lost its items: %#v", saved.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
