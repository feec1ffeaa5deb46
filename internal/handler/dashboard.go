package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// DashboardHandler serves the read-only overview endpoints.
type DashboardHandler struct {
	Dashboard *repository.DashboardRepo
}

// NewDashboardHandler constructs a DashboardHandler and panics if the
// repository is nil.
func NewDashboardHandler(dashboard *repository.DashboardRepo) *DashboardHandler {
	if dashboard == nil {
		panic("nil repository passed to NewDashboardHandler")
	}
	return &DashboardHandler{Dashboard: dashboard}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.Dashboard.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, stats)
}

// StatusBreakdown handles GET /api/dashboard/status-breakdown.
func (h *DashboardHandler) StatusBreakdown(c echo.Context) error {
	items, err := h.Dashboard.StatusBreakdown(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// MonthlyRevenue handles GET /api/dashboard/revenue?months=N.
func (h *DashboardHandler) MonthlyRevenue(c echo.Context) error {
	months, _ := strconv.Atoi(c.QueryParam("months"))
	items, err := h.Dashboard.MonthlyRevenue(c.Request().Context(), months)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// RecentActivity handles GET /api/dashboard/activity?limit=N.
func (h *DashboardHandler) RecentActivity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.Dashboard.RecentActivity(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}
