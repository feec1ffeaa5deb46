package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// EmployeeHandler serves the employee and technician endpoints.
type EmployeeHandler struct {
	Employees *repository.EmployeeRepo
}

// NewEmployeeHandler constructs an EmployeeHandler and panics if the
// repository is nil.
func NewEmployeeHandler(employees *repository.EmployeeRepo) *EmployeeHandler {
	if employees == nil {
		panic("nil repository passed to NewEmployeeHandler")
	}
	return &EmployeeHandler{Employees: employees}
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Employees.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/employees/:id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	item, err := h.Employees.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var in repository.EmployeeInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Employees.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.Employees.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, item)
}

// Update handles PUT /api/employees/:id.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.EmployeeInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Employees.Update(c.Request().Context(), id, &in); err != nil {
		return respondError(c, err)
	}
	item, err := h.Employees.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Delete handles DELETE /api/employees/:id.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Employees.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ListTechnicians handles GET /api/employees/technicians.
func (h *EmployeeHandler) ListTechnicians(c echo.Context) error {
	items, err := h.Employees.ListTechnicians(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// CreateTechnician handles POST /api/employees/technicians.
func (h *EmployeeHandler) CreateTechnician(c echo.Context) error {
	var in repository.TechnicianInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Employees.CreateTechnician(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, map[string]interface{}{"technician_id": id})
}
