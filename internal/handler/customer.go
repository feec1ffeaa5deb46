package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// CustomerHandler serves the customer CRUD endpoints.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

// NewCustomerHandler constructs a CustomerHandler and panics if the
// repository is nil.
func NewCustomerHandler(customers *repository.CustomerRepo) *CustomerHandler {
	if customers == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: customers}
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Customers.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/customers/:id with the customer's vehicles.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	detail, err := h.Customers.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, detail)
}

// Create handles POST /api/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var in repository.CustomerInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Customers.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	detail, err := h.Customers.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, detail)
}

// Update handles PUT /api/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.CustomerInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Customers.Update(c.Request().Context(), id, &in); err != nil {
		return respondError(c, err)
	}
	detail, err := h.Customers.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, detail)
}

// Delete handles DELETE /api/customers/:id.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Customers.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}
