package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/auto-service-desk/internal/audit"
	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/queue"
	"github.com/iliyamo/auto-service-desk/internal/repository"
	event_publisher "github.com/iliyamo/auto-service-desk/internal/service"
)

// ServiceHandler bundles the collaborators of the service request
// lifecycle: the request repo, the parts usage repo, the history repo for
// the synchronous close entry, and the async audit recorder.
type ServiceHandler struct {
	Requests *repository.ServiceRequestRepo
	Parts    *repository.PartsRepo
	History  *repository.HistoryRepo
	Recorder *audit.Recorder
}

// NewServiceHandler constructs a ServiceHandler and panics if any
// dependency is nil.
func NewServiceHandler(requests *repository.ServiceRequestRepo, parts *repository.PartsRepo, history *repository.HistoryRepo, recorder *audit.Recorder) *ServiceHandler {
	if requests == nil || parts == nil || history == nil || recorder == nil {
		panic("nil dependency passed to NewServiceHandler")
	}
	return &ServiceHandler{Requests: requests, Parts: parts, History: history, Recorder: recorder}
}

// serviceRequestBody is the JSON shape clients send. Several field aliases
// are accepted for the description because older clients used different
// names; Notes wins, then Issues, then Description.
type serviceRequestBody struct {
	CustomerID    int64            `json:"customer_id"`
	VehicleID     int64            `json:"vehicle_id"`
	EmployeeID    *int64           `json:"employee_id"`
	RequestedDate string           `json:"requested_date"`
	ServiceType   string           `json:"service_type"`
	Status        string           `json:"status"`
	ServicePrice  *decimal.Decimal `json:"service_price"`
	ExtraCharges  *decimal.Decimal `json:"extra_charges"`
	Notes         *string          `json:"notes"`
	Issues        *string          `json:"issues"`
	Description   *string          `json:"description"`
	PartsUsed     []partBody       `json:"parts_used"`
}

// partBody is one part usage line. PartPrice falls back to Price, then to
// zero; a missing or non-positive quantity means one unit.
type partBody struct {
	PartID    int64            `json:"part_id"`
	PartPrice *decimal.Decimal `json:"part_price"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  int              `json:"quantity"`
}

func (b *serviceRequestBody) toInput() *repository.ServiceRequestInput {
	in := &repository.ServiceRequestInput{
		CustomerID:    b.CustomerID,
		VehicleID:     b.VehicleID,
		EmployeeID:    b.EmployeeID,
		RequestedDate: strings.TrimSpace(b.RequestedDate),
		ServiceType:   strings.TrimSpace(b.ServiceType),
		Status:        model.ResolveStatus(strings.TrimSpace(b.Status)),
		Notes:         b.resolveNotes(),
	}
	if b.ServicePrice != nil {
		in.ServicePrice = *b.ServicePrice
	}
	if b.ExtraCharges != nil {
		in.ExtraCharges = *b.ExtraCharges
	}
	return in
}

func (b *serviceRequestBody) resolveNotes() *string {
	for _, s := range []*string{b.Notes, b.Issues, b.Description} {
		if s != nil && strings.TrimSpace(*s) != "" {
			return s
		}
	}
	return nil
}

func (b *serviceRequestBody) partInputs() []repository.PartUsedInput {
	parts := make([]repository.PartUsedInput, 0, len(b.PartsUsed))
	for _, p := range b.PartsUsed {
		price := decimal.Zero
		if p.PartPrice != nil {
			price = *p.PartPrice
		} else if p.Price != nil {
			price = *p.Price
		}
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		parts = append(parts, repository.PartUsedInput{PartID: p.PartID, Price: price, Quantity: qty})
	}
	return parts
}

// List handles GET /api/services. Supports ?status= plus pagination.
func (h *ServiceHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Requests.List(c.Request().Context(), page, limit, c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Get handles GET /api/services/:id with the full detail view.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	detail, err := h.Requests.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, detail)
}

// Create handles POST /api/services. The request row and its part usage
// rows are written in one transaction; the Created audit entry and the
// broker event follow after commit and never fail the request.
func (h *ServiceHandler) Create(c echo.Context) error {
	var body serviceRequestBody
	if err := c.Bind(&body); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	in := body.toInput()
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id, err := h.Requests.CreateTx(ctx, tx, in)
	if err != nil {
		return respondError(c, err)
	}
	if parts := body.partInputs(); len(parts) > 0 {
		if err := h.Parts.InsertForRequestTx(ctx, tx, id, parts); err != nil {
			return respondError(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	status := in.Status
	h.Recorder.Record(repository.HistoryEntry{
		ServiceID:  id,
		CustomerID: in.CustomerID,
		VehicleID:  in.VehicleID,
		Action:     model.ActionCreated,
		NewStatus:  &status,
	})
	h.publish(id, in.CustomerID, in.VehicleID, in.ServiceType, "created", "", status)

	created, err := h.Requests.GetListItem(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, created)
}

// Update handles PUT /api/services/:id. When the body carries parts_used
// the usage rows are replaced wholesale inside the same transaction, so
// retrying the call converges on the same state. A status transition is
// recorded as StatusChanged, any other edit as Updated.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var body serviceRequestBody
	if err := c.Bind(&body); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	in := body.toInput()
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prevStatus, _, _, err := h.Requests.StatusInfoTx(ctx, tx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Requests.UpdateTx(ctx, tx, id, in); err != nil {
		return respondError(c, err)
	}
	if body.PartsUsed != nil {
		if err := h.Parts.ReplaceForRequestTx(ctx, tx, id, body.partInputs()); err != nil {
			return respondError(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	newStatus := in.Status
	entry := repository.HistoryEntry{
		ServiceID:  id,
		CustomerID: in.CustomerID,
		VehicleID:  in.VehicleID,
		Action:     model.ActionUpdated,
		NewStatus:  &newStatus,
	}
	if prevStatus != newStatus {
		entry.Action = model.ActionStatusChanged
		entry.PreviousStatus = &prevStatus
	}
	h.Recorder.Record(entry)
	h.publish(id, in.CustomerID, in.VehicleID, in.ServiceType, "updated", prevStatus, newStatus)

	updated, err := h.Requests.GetListItem(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/services/:id. The Closed audit entry is
// written in the same transaction as the delete, before the row
// disappears, so closure is never lost even if the process dies right
// after commit.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prevStatus, customerID, vehicleID, err := h.Requests.StatusInfoTx(ctx, tx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.History.InsertTx(ctx, tx, repository.HistoryEntry{
		ServiceID:      id,
		CustomerID:     customerID,
		VehicleID:      vehicleID,
		Action:         model.ActionClosed,
		PreviousStatus: &prevStatus,
	}); err != nil {
		return respondError(c, err)
	}
	if err := h.Requests.DeleteTx(ctx, tx, id); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	h.publish(id, customerID, vehicleID, "", "closed", prevStatus, "")
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}

// recordBody is the JSON shape for technician completion records.
type recordBody struct {
	ServiceRequestID int64   `json:"service_request_id"`
	TechnicianID     int64   `json:"technician_id"`
	DateCompleted    string  `json:"date_completed"`
	Notes            *string `json:"notes"`
	LaborHours       float64 `json:"labor_hours"`
}

func (b *recordBody) validate() error {
	if b.TechnicianID <= 0 {
		return errors.New("technician ID is required")
	}
	if strings.TrimSpace(b.DateCompleted) == "" {
		return errors.New("completion date is required")
	}
	if b.LaborHours < 0 {
		return errors.New("labor hours must not be negative")
	}
	return nil
}

// CreateRecord handles POST /api/services/:id/record. Filing the record
// also marks the request Completed in the same transaction; the status
// transition is audited like any other.
func (h *ServiceHandler) CreateRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var body recordBody
	if err := c.Bind(&body); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := body.validate(); err != nil {
		return respondBadRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prevStatus, customerID, vehicleID, err := h.Requests.StatusInfoTx(ctx, tx, id)
	if err != nil {
		return respondError(c, err)
	}
	rec := &model.ServiceRecord{
		ServiceRequestID: id,
		TechnicianID:     body.TechnicianID,
		DateCompleted:    body.DateCompleted,
		Notes:            body.Notes,
		LaborHours:       body.LaborHours,
	}
	recordID, err := h.Requests.CreateRecordTx(ctx, tx, rec)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Requests.MarkCompletedTx(ctx, tx, id); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	// Filing a record on an already-Completed request is not a transition
	// and appends nothing to the audit log.
	completed := model.StatusCompleted
	if prevStatus != completed {
		h.Recorder.Record(repository.HistoryEntry{
			ServiceID:      id,
			CustomerID:     customerID,
			VehicleID:      vehicleID,
			Action:         model.ActionStatusChanged,
			PreviousStatus: &prevStatus,
			NewStatus:      &completed,
		})
		h.publish(id, customerID, vehicleID, "", "completed", prevStatus, completed)
	}

	rec.ID = recordID
	return respondData(c, http.StatusCreated, rec)
}

// UpdateRecord handles PUT /api/services/records/:id.
func (h *ServiceHandler) UpdateRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var body recordBody
	if err := c.Bind(&body); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := body.validate(); err != nil {
		return respondBadRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	rec := &model.ServiceRecord{
		TechnicianID:  body.TechnicianID,
		DateCompleted: body.DateCompleted,
		Notes:         body.Notes,
		LaborHours:    body.LaborHours,
	}
	if err := h.Requests.UpdateRecord(ctx, id, rec); err != nil {
		return respondError(c, err)
	}
	updated, err := h.Requests.GetRecord(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, updated)
}

// publish sends the lifecycle event to the broker on a background
// goroutine. Failures are logged inside the publisher and ignored here.
func (h *ServiceHandler) publish(id, customerID, vehicleID int64, serviceType, action, prev, next string) {
	ev := queue.ServiceLifecycleEvent{
		ServiceRequestID: id,
		CustomerID:       customerID,
		VehicleID:        vehicleID,
		ServiceType:      serviceType,
		Action:           action,
		PreviousStatus:   prev,
		NewStatus:        next,
		OccurredAt:       nowUTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = event_publisher.PublishServiceLifecycle(ctx, ev)
	}()
}
