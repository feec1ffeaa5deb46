package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// InventoryHandler serves the parts catalog, supplier and stock endpoints.
type InventoryHandler struct {
	Inventory *repository.InventoryRepo
}

// NewInventoryHandler constructs an InventoryHandler and panics if the
// repository is nil.
func NewInventoryHandler(inventory *repository.InventoryRepo) *InventoryHandler {
	if inventory == nil {
		panic("nil repository passed to NewInventoryHandler")
	}
	return &InventoryHandler{Inventory: inventory}
}

// ListParts handles GET /api/inventory/parts.
func (h *InventoryHandler) ListParts(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Inventory.ListParts(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// GetPart handles GET /api/inventory/parts/:id.
func (h *InventoryHandler) GetPart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	item, err := h.Inventory.GetPart(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// CreatePart handles POST /api/inventory/parts.
func (h *InventoryHandler) CreatePart(c echo.Context) error {
	var in repository.PartInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Inventory.CreatePart(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.Inventory.GetPart(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, item)
}

// UpdatePart handles PUT /api/inventory/parts/:id.
func (h *InventoryHandler) UpdatePart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.PartInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Inventory.UpdatePart(c.Request().Context(), id, &in); err != nil {
		return respondError(c, err)
	}
	item, err := h.Inventory.GetPart(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// DeletePart handles DELETE /api/inventory/parts/:id.
func (h *InventoryHandler) DeletePart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Inventory.DeletePart(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}

// SetStock handles PUT /api/inventory/stock.
func (h *InventoryHandler) SetStock(c echo.Context) error {
	var in repository.StockInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := h.Inventory.SetStock(c.Request().Context(), &in); err != nil {
		return respondError(c, err)
	}
	item, err := h.Inventory.GetPart(c.Request().Context(), in.PartID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, item)
}

// LowStock handles GET /api/inventory/low-stock.
func (h *InventoryHandler) LowStock(c echo.Context) error {
	items, err := h.Inventory.LowStock(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// ListSuppliers handles GET /api/inventory/suppliers.
func (h *InventoryHandler) ListSuppliers(c echo.Context) error {
	items, err := h.Inventory.ListSuppliers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, items)
}

// CreateSupplier handles POST /api/inventory/suppliers.
func (h *InventoryHandler) CreateSupplier(c echo.Context) error {
	var in repository.SupplierInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Inventory.CreateSupplier(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, map[string]interface{}{"supplier_id": id})
}
