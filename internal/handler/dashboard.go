package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/cart"
	"github.com/venuehq/pos-dashboard/internal/model"
	"github.com/venuehq/pos-dashboard/internal/repository"
)

// DashboardHandler serves the POS dashboard view model: the selectable
// session types, the priced products for the current session type
// grouped into display buckets, and the caller's cart with its
// summary.  The cart is loaded at the start of the request and saved
// back whenever the session type resolution changes it.
type DashboardHandler struct {
	SessionTypes    *repository.SessionTypeRepo
	SessionProducts *repository.SessionProductRepo
	Carts           cart.Store
}

// NewDashboardHandler constructs a DashboardHandler.  All dependencies
// must be non-nil.
func NewDashboardHandler(sessionTypes *repository.SessionTypeRepo, sessionProducts *repository.SessionProductRepo, carts cart.Store) *DashboardHandler {
	if sessionTypes == nil || sessionProducts == nil || carts == nil {
		panic("nil dependency passed to NewDashboardHandler")
	}
	return &DashboardHandler{SessionTypes: sessionTypes, SessionProducts: sessionProducts, Carts: carts}
}

// Dashboard handles GET /.  The current session type is resolved from
// the optional ?session_type query parameter, falling back to the
// cart's own session type, falling back to the first active session
// type.  When the resolved session type differs from the cart's, the
// cart is reset and re-keyed so that all cart lines always share one
// session type.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	userCart, err := h.Carts.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}

	sessionTypes, err := h.SessionTypes.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session types"})
	}

	// Resolve the requested session type id: explicit query parameter,
	// else the cart's own, else the first active session type.  An
	// unparsable parameter is treated as absent.
	var requestedID uint64
	if raw := c.QueryParam("session_type"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			requestedID = n
		}
	}
	if requestedID == 0 {
		requestedID = userCart.SessionTypeID
	}
	if requestedID == 0 && len(sessionTypes) > 0 {
		requestedID = sessionTypes[0].ID
	}

	var current *model.SessionType
	if requestedID != 0 {
		current, err = h.SessionTypes.GetActiveByID(ctx, requestedID)
		if err != nil && err != repository.ErrSessionTypeNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session type"})
		}
	}

	// Re-key the cart when the session type changed; this clears items.
	if current != nil && userCart.SelectSessionType(current.ID) {
		if err := h.Carts.Save(ctx, userID, userCart); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save cart"})
		}
	}

	eventProducts := make([]model.PricedProduct, 0)
	addonProducts := make([]model.PricedProduct, 0)
	merchProducts := make([]model.PricedProduct, 0)
	if current != nil {
		priced, err := h.SessionProducts.ListForDashboard(ctx, current.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load products"})
		}
		for _, pp := range priced {
			switch pp.Product.Category.Bucket() {
			case model.BucketEvent:
				eventProducts = append(eventProducts, pp)
			case model.BucketAddon:
				addonProducts = append(addonProducts, pp)
			case model.BucketMerch:
				merchProducts = append(merchProducts, pp)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session_types":        sessionTypes,
		"current_session_type": current,
		"event_products":       eventProducts,
		"addon_products":       addonProducts,
		"merch_products":       merchProducts,
		"cart":                 userCart,
		"cart_summary":         userCart.Summarize(),
	})
}
