package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// HistoryHandler serves the read side of the audit log. There is no write
// side over HTTP; entries only appear through request lifecycle
// operations.
type HistoryHandler struct {
	History *repository.HistoryRepo
}

// NewHistoryHandler constructs a HistoryHandler and panics if the
// repository is nil.
func NewHistoryHandler(history *repository.HistoryRepo) *HistoryHandler {
	if history == nil {
		panic("nil repository passed to NewHistoryHandler")
	}
	return &HistoryHandler{History: history}
}

// List handles GET /api/history, newest entries first. History pages are
// bigger than the other lists because the feed is append-only and dense.
func (h *HistoryHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 50)
	items, total, err := h.History.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// ByService handles GET /api/history/service/:id. Entries survive request
// deletion, so this works for closed requests too.
func (h *HistoryHandler) ByService(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	items, err := h.History.ListByService(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// ByCustomer handles GET /api/history/customer/:id.
func (h *HistoryHandler) ByCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	items, err := h.History.ListByCustomer(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}
