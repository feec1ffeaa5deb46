package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// VehicleHandler serves the vehicle and vehicle model endpoints.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

// NewVehicleHandler constructs a VehicleHandler and panics if the
// repository is nil.
func NewVehicleHandler(vehicles *repository.VehicleRepo) *VehicleHandler {
	if vehicles == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: vehicles}
}

// List handles GET /api/vehicles. Supports ?customer_id= plus pagination.
func (h *VehicleHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	var customerID int64
	if p := c.QueryParam("customer_id"); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return respondBadRequest(c, "invalid customer_id")
		}
		customerID = id
	}
	items, total, err := h.Vehicles.List(c.Request().Context(), page, limit, customerID)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	item, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Create handles POST /api/vehicles.
func (h *VehicleHandler) Create(c echo.Context) error {
	var in repository.VehicleInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Vehicles.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, item)
}

// Update handles PUT /api/vehicles/:id.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.VehicleInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Vehicles.Update(c.Request().Context(), id, &in); err != nil {
		return respondError(c, err)
	}
	item, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// Delete handles DELETE /api/vehicles/:id.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Vehicles.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ListModels handles GET /api/vehicles/models.
func (h *VehicleHandler) ListModels(c echo.Context) error {
	items, err := h.Vehicles.ListModels(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// CreateModel handles POST /api/vehicles/models.
func (h *VehicleHandler) CreateModel(c echo.Context) error {
	var in repository.VehicleModelInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Vehicles.CreateModel(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, map[string]interface{}{"model_id": id})
}
