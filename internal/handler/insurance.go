package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// InsuranceHandler serves the insurance policy endpoints.
type InsuranceHandler struct {
	Policies *repository.InsuranceRepo
}

// NewInsuranceHandler constructs an InsuranceHandler and panics if the
// repository is nil.
func NewInsuranceHandler(policies *repository.InsuranceRepo) *InsuranceHandler {
	if policies == nil {
		panic("nil repository passed to NewInsuranceHandler")
	}
	return &InsuranceHandler{Policies: policies}
}

// List handles GET /api/insurance.
func (h *InsuranceHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Policies.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/insurance/:id.
func (h *InsuranceHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	item, err := h.Policies.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Create handles POST /api/insurance.
func (h *InsuranceHandler) Create(c echo.Context) error {
	var in repository.InsuranceInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Policies.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.Policies.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, item)
}

// Update handles PUT /api/insurance/:id.
func (h *InsuranceHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.InsuranceInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Policies.Update(c.Request().Context(), id, &in); err != nil {
		return respondError(c, err)
	}
	item, err := h.Policies.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Delete handles DELETE /api/insurance/:id.
func (h *InsuranceHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Policies.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}
