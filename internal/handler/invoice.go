package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// InvoiceHandler serves the billing endpoints.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
}

// NewInvoiceHandler constructs an InvoiceHandler and panics if the
// repository is nil.
func NewInvoiceHandler(invoices *repository.InvoiceRepo) *InvoiceHandler {
	if invoices == nil {
		panic("nil repository passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Invoices: invoices}
}

// List handles GET /api/invoices. Supports ?pending=true|false plus
// pagination.
func (h *InvoiceHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	var pending *bool
	if p := c.QueryParam("pending"); p != "" {
		v, err := strconv.ParseBool(p)
		if err != nil {
			return respondBadRequest(c, "pending must be true or false")
		}
		pending = &v
	}
	items, total, err := h.Invoices.List(c.Request().Context(), page, limit, pending)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/invoices/:id with the payment list included.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	detail, err := h.Invoices.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, detail)
}

// Create handles POST /api/invoices. The total is computed server-side
// from the request's pricing and parts; a second invoice for the same
// request comes back 409.
func (h *InvoiceHandler) Create(c echo.Context) error {
	var in repository.InvoiceInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Invoices.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	detail, err := h.Invoices.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, detail)
}

// invoiceUpdateBody is the JSON shape for direct invoice edits.
type invoiceUpdateBody struct {
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentPending bool            `json:"payment_pending"`
	Date           string          `json:"date"`
	DueDate        string          `json:"due_date"`
}

// Update handles PUT /api/invoices/:id. This is an operator-level
// overwrite; the stored total is replaced with whatever the caller sends.
func (h *InvoiceHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var body invoiceUpdateBody
	if err := c.Bind(&body); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if body.TotalAmount.IsNegative() {
		return respondBadRequest(c, "total amount must not be negative")
	}
	ctx := c.Request().Context()
	if err := h.Invoices.Update(ctx, id, body.TotalAmount, body.PaymentPending, body.Date, body.DueDate); err != nil {
		return respondError(c, err)
	}
	detail, err := h.Invoices.GetDetail(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, detail)
}

// CreatePayment handles POST /api/invoices/:id/payments. The insert, the
// running total and the pending-flag flip happen in one transaction, so a
// payment that crosses the total always clears the invoice.
func (h *InvoiceHandler) CreatePayment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var in repository.PaymentInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	in.InvoiceID = id
	if in.Date == "" {
		in.Date = nowUTC()
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	paymentID, err := h.Invoices.CreatePayment(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	payment, err := h.Invoices.GetPayment(c.Request().Context(), paymentID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, payment)
}

// ListPayments handles GET /api/invoices/:id/payments.
func (h *InvoiceHandler) ListPayments(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	payments, err := h.Invoices.PaymentsByInvoice(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, payments)
}
