package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/venuehq/pos-dashboard/internal/model"
	"github.com/venuehq/pos-dashboard/internal/repository"
)

// CatalogHandler bundles the repositories managers use to administer
// the catalog: session types, products and the per-session-type price
// list.  Role enforcement (MANAGER) happens in middleware before any
// of these methods run.
type CatalogHandler struct {
	SessionTypes    *repository.SessionTypeRepo
	Products        *repository.ProductRepo
	SessionProducts *repository.SessionProductRepo
	Orders          *repository.OrderRepo
}

// NewCatalogHandler constructs a CatalogHandler and panics if any
// dependency is nil.
func NewCatalogHandler(sessionTypes *repository.SessionTypeRepo, products *repository.ProductRepo, sessionProducts *repository.SessionProductRepo, orders *repository.OrderRepo) *CatalogHandler {
	if sessionTypes == nil || products == nil || sessionProducts == nil || orders == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{
		SessionTypes:    sessionTypes,
		Products:        products,
		SessionProducts: sessionProducts,
		Orders:          orders,
	}
}

// ----- session types -----

type sessionTypeReq struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	IsActive  *bool   `json:"is_active"`
	SortOrder *uint32 `json:"sort_order"`
}

// ListSessionTypes handles GET /v1/admin/session-types.  Unlike the
// dashboard it includes inactive rows so managers can re-enable them.
func (h *CatalogHandler) ListSessionTypes(c echo.Context) error {
	items, err := h.SessionTypes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session types"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateSessionType handles POST /v1/admin/session-types.
func (h *CatalogHandler) CreateSessionType(c echo.Context) error {
	var req sessionTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and slug are required"})
	}
	st := model.SessionType{Name: req.Name, Slug: req.Slug, IsActive: true}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		st.SortOrder = *req.SortOrder
	}
	if err := h.SessionTypes.Create(c.Request().Context(), &st); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name or slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session type"})
	}
	return c.JSON(http.StatusCreated, st)
}

// UpdateSessionType handles PATCH /v1/admin/session-types/:id.  Only
// the fields present in the body are changed.
func (h *CatalogHandler) UpdateSessionType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	current, err := h.SessionTypes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSessionTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session type"})
	}
	var req sessionTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		current.Name = name
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		current.Slug = slug
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		current.SortOrder = *req.SortOrder
	}
	if err := h.SessionTypes.Update(ctx, current); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name or slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update session type"})
	}
	return c.JSON(http.StatusOK, current)
}

// DeleteSessionType handles DELETE /v1/admin/session-types/:id.
// Session types referenced by orders are delete-protected; the
// response suggests deactivating instead.
func (h *CatalogHandler) DeleteSessionType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	switch err := h.SessionTypes.Delete(c.Request().Context(), id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrSessionTypeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session type not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "session type has orders; deactivate it instead"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete session type"})
	}
}

// ----- products -----

type productReq struct {
	Name            string `json:"name"`
	SKU             *string `json:"sku"`
	Category        string `json:"category"`
	IsActive        *bool  `json:"is_active"`
	ShowOnDashboard *bool  `json:"show_on_dashboard"`
}

// ListProducts handles GET /v1/admin/products.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	items, err := h.Products.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateProduct handles POST /v1/admin/products.  The category must
// be one of the closed set; anything else is rejected.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	category, err := model.ParseCategory(strings.ToUpper(strings.TrimSpace(req.Category)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	p := model.Product{Name: req.Name, Category: category, IsActive: true, ShowOnDashboard: true}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.ShowOnDashboard != nil {
		p.ShowOnDashboard = *req.ShowOnDashboard
	}
	if err := h.Products.Create(c.Request().Context(), &p); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product with this name and sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PATCH /v1/admin/products/:id.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	current, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load product"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		current.Name = name
	}
	if req.SKU != nil {
		current.SKU = strings.TrimSpace(*req.SKU)
	}
	if raw := strings.TrimSpace(req.Category); raw != "" {
		category, err := model.ParseCategory(strings.ToUpper(raw))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		current.Category = category
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if req.ShowOnDashboard != nil {
		current.ShowOnDashboard = *req.ShowOnDashboard
	}
	if err := h.Products.Update(ctx, current); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product with this name and sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, current)
}

// DeleteProduct handles DELETE /v1/admin/products/:id.  Products
// referenced by order items are delete-protected.
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	switch err := h.Products.Delete(c.Request().Context(), id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrProductNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "product has order items; deactivate it instead"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
}

// ----- session products -----

type sessionProductReq struct {
	SessionTypeID uint64 `json:"session_type_id"`
	ProductID     uint64 `json:"product_id"`
	Price         string `json:"price"`
	IsActive      *bool  `json:"is_active"`
}

// UpsertSessionProduct handles PUT /v1/admin/session-products.  It
// creates or replaces the price for a (session type, product) pair.
func (h *CatalogHandler) UpsertSessionProduct(c echo.Context) error {
	var req sessionProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SessionTypeID == 0 || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_type_id and product_id are required"})
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}
	sp := model.SessionProduct{
		SessionTypeID: req.SessionTypeID,
		ProductID:     req.ProductID,
		Price:         price,
		IsActive:      true,
	}
	if req.IsActive != nil {
		sp.IsActive = *req.IsActive
	}
	if err := h.SessionProducts.Upsert(c.Request().Context(), &sp); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "unknown session type or product"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save price"})
	}
	return c.JSON(http.StatusOK, sp)
}

// ----- orders -----

// ListRecentOrders handles GET /v1/admin/orders.  The optional limit
// query parameter caps the number of rows (default 50).
func (h *CatalogHandler) ListRecentOrders(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	items, err := h.Orders.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
