package handler

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/venuehq/pos-dashboard/internal/cart"
	"github.com/venuehq/pos-dashboard/internal/model"
	"github.com/venuehq/pos-dashboard/internal/queue"
	"github.com/venuehq/pos-dashboard/internal/repository"
)

// CartHandler implements the cart API: add, update, clear and
// checkout.  Cart preconditions that fail report a 400 with a short
// plain-text reason and change no state; unresolvable catalog
// references report a 404.  Checkout runs the order write inside a
// single transaction so a failure partway leaves zero rows written
// and the cart intact.
type CartHandler struct {
	Carts           cart.Store
	SessionTypes    *repository.SessionTypeRepo
	SessionProducts *repository.SessionProductRepo
	Products        *repository.ProductRepo
	Orders          *repository.OrderRepo

	// PublishOrderCompleted, when set, is invoked after a successful
	// checkout commit.  Publishing is best effort and must never fail
	// the request.
	PublishOrderCompleted func(ctx context.Context, ev queue.OrderCompletedEvent)
}

// NewCartHandler constructs a CartHandler with the provided
// dependencies.  All repositories and the store must be non-nil.
func NewCartHandler(carts cart.Store, sessionTypes *repository.SessionTypeRepo, sessionProducts *repository.SessionProductRepo, products *repository.ProductRepo, orders *repository.OrderRepo) *CartHandler {
	if carts == nil || sessionTypes == nil || sessionProducts == nil || products == nil || orders == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{
		Carts:           carts,
		SessionTypes:    sessionTypes,
		SessionProducts: sessionProducts,
		Products:        products,
		Orders:          orders,
	}
}

// cartResponse is the JSON body returned by every cart mutation.
func cartResponse(c echo.Context, status int, userCart *cart.Cart) error {
	return c.JSON(status, echo.Map{
		"cart":    userCart,
		"summary": userCart.Summarize(),
	})
}

// Add handles POST /api/cart/add/.  Form fields: product_id
// (required), quantity (optional, default 1; non-positive coerced to
// 1).  The (session type, product) price is resolved through the
// catalog; the cart line snapshots name and price at add time.
func (h *CartHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	userCart, err := h.Carts.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}
	if userCart.SessionTypeID == 0 {
		return c.String(http.StatusBadRequest, "No session type selected")
	}

	rawProductID := c.FormValue("product_id")
	if rawProductID == "" {
		return c.String(http.StatusBadRequest, "Missing product_id")
	}
	productID, err := strconv.ParseUint(rawProductID, 10, 64)
	if err != nil || productID == 0 {
		return c.String(http.StatusBadRequest, "Missing product_id")
	}
	qty, err := formQuantity(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid quantity")
	}

	// The cart's session type must still be an active one.
	if _, err := h.SessionTypes.GetActiveByID(ctx, userCart.SessionTypeID); err != nil {
		if err == repository.ErrSessionTypeNotFound {
			return c.String(http.StatusNotFound, "Session type not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session type"})
	}

	name, price, err := h.SessionProducts.ResolveForCart(ctx, userCart.SessionTypeID, productID)
	if err != nil {
		if err == repository.ErrPriceNotFound {
			return c.String(http.StatusNotFound, "Product not available for this session type")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve price"})
	}

	if err := userCart.Add(productID, name, price, qty); err != nil {
		return c.String(http.StatusBadRequest, "No session type selected")
	}
	if err := h.Carts.Save(ctx, userID, userCart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save cart"})
	}
	return cartResponse(c, http.StatusOK, userCart)
}

// Update handles POST /api/cart/update/.  Form fields: product_id
// (required, must already be in the cart), quantity (optional,
// default 1; zero or less removes the line).
func (h *CartHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	userCart, err := h.Carts.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}

	rawProductID := c.FormValue("product_id")
	if rawProductID == "" {
		return c.String(http.StatusBadRequest, "Missing product_id")
	}
	productID, err := strconv.ParseUint(rawProductID, 10, 64)
	if err != nil || productID == 0 {
		return c.String(http.StatusBadRequest, "Missing product_id")
	}
	qty, err := formQuantity(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid quantity")
	}

	if err := userCart.Update(productID, qty); err != nil {
		return c.String(http.StatusBadRequest, "Product not in cart")
	}
	if err := h.Carts.Save(ctx, userID, userCart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save cart"})
	}
	return cartResponse(c, http.StatusOK, userCart)
}

// Clear handles POST /api/cart/clear/.  It empties the cart's items
// while keeping the selected session type.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	userCart, err := h.Carts.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}
	userCart.Clear()
	if err := h.Carts.Save(ctx, userID, userCart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save cart"})
	}
	return cartResponse(c, http.StatusOK, userCart)
}

// Checkout handles POST /api/cart/checkout/.  It snapshots the cart
// into a persisted order inside one transaction: create the order
// with a zero total, insert every line with the cart's stored
// name/price (the snapshot wins over current catalog pricing),
// re-verifying for each line that the product row still exists, then
// fix up the order total and commit.  Only after a successful commit
// are the cart's items cleared; the session type is retained.  Any
// failure rolls the whole transaction back and leaves the cart
// untouched so the user can retry.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	userCart, err := h.Carts.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}
	if userCart.SessionTypeID == 0 {
		return c.String(http.StatusBadRequest, "No session type selected")
	}
	if len(userCart.Items) == 0 {
		return c.String(http.StatusBadRequest, "Cart is empty")
	}

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sessionType, err := h.SessionTypes.GetActiveByIDTx(ctx, tx, userCart.SessionTypeID)
	if err != nil {
		if err == repository.ErrSessionTypeNotFound {
			return c.String(http.StatusNotFound, "Session type not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session type"})
	}

	order := &model.Order{
		SessionTypeID: sessionType.ID,
		UserID:        userID,
		Total:         decimal.Zero, // fixed up after the items are written
	}
	if err := h.Orders.CreateTx(ctx, tx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(userCart.Items))
	for _, line := range sortedLines(userCart) {
		exists, err := h.Products.ExistsTx(ctx, tx, line.ProductID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify product"})
		}
		if !exists {
			// Product vanished between add and checkout; the deferred
			// rollback discards the order row created above.
			return c.String(http.StatusNotFound, "Product no longer exists")
		}
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, model.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			UnitPrice:   line.Price,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
	}
	if err := h.Orders.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order items"})
	}
	if err := h.Orders.UpdateTotalTx(ctx, tx, order.ID, total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order total"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// The order is durable; clear the items but keep the session type.
	userCart.Clear()
	if err := h.Carts.Save(ctx, userID, userCart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save cart"})
	}

	if h.PublishOrderCompleted != nil {
		ev := queue.OrderCompletedEvent{
			OrderID:         order.ID,
			UserID:          userID,
			SessionTypeID:   sessionType.ID,
			SessionTypeName: sessionType.Name,
			Total:           total.StringFixed(2),
			ItemCount:       len(items),
			CompletedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		go h.PublishOrderCompleted(context.Background(), ev)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"summary":  userCart.Summarize(),
	})
}

// formQuantity parses the optional quantity form field, defaulting to
// 1 when absent.  A non-integer value is an error; non-positive
// values are returned as-is for the caller's coerce/remove semantics.
func formQuantity(c echo.Context) (int, error) {
	raw := c.FormValue("quantity")
	if raw == "" {
		return 1, nil
	}
	return strconv.Atoi(raw)
}

// sortedLines returns the cart lines ordered by product id so that
// order_items insert deterministically.
func sortedLines(userCart *cart.Cart) []cart.Item {
	lines := make([]cart.Item, 0, len(userCart.Items))
	for _, item := range userCart.Items {
		lines = append(lines, item)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}
