package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/repository"
)

// FinancialsHandler serves the read-only revenue report.
type FinancialsHandler struct {
	Reports *repository.ReportRepo
}

// NewFinancialsHandler constructs a FinancialsHandler.
func NewFinancialsHandler(reports *repository.ReportRepo) *FinancialsHandler {
	if reports == nil {
		panic("nil repository passed to NewFinancialsHandler")
	}
	return &FinancialsHandler{Reports: reports}
}

// Financials handles GET /financials/.  Optional start_date and
// end_date query parameters filter orders by the calendar date of
// created_at, inclusive on both ends.  Unparsable dates are ignored
// rather than rejected, so a bad filter degrades to the unfiltered
// report.
func (h *FinancialsHandler) Financials(c echo.Context) error {
	ctx := c.Request().Context()

	startRaw := c.QueryParam("start_date")
	endRaw := c.QueryParam("end_date")
	dr := repository.DateRange{
		Start: parseReportDate(startRaw),
		End:   parseReportDate(endRaw),
	}

	overall, err := h.Reports.OverallTotal(ctx, dr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute total"})
	}
	byDay, err := h.Reports.RevenueByDay(ctx, dr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute daily revenue"})
	}
	bySessionType, err := h.Reports.RevenueBySessionType(ctx, dr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute session type revenue"})
	}
	byCategory, err := h.Reports.RevenueByCategory(ctx, dr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute category revenue"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"overall_total":           overall.StringFixed(2),
		"revenue_by_day":          byDay,
		"revenue_by_session_type": bySessionType,
		"revenue_by_category":     byCategory,
		"start_date":              startRaw,
		"end_date":                endRaw,
	})
}

// parseReportDate parses an ISO calendar date.  Empty or unparsable
// input yields nil, meaning "no filter".
func parseReportDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
