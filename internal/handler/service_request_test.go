package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/audit"
	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/repository"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

type serviceFixture struct {
	db       *sql.DB
	handler  *ServiceHandler
	history  *repository.HistoryRepo
	recorder *audit.Recorder
	custID   int64
}

func newServiceFixture(t *testing.T) *serviceFixture {
	db := testutil.SetupTestDB(t)
	requests := repository.NewServiceRequestRepo(db)
	parts := repository.NewPartsRepo(db)
	history := repository.NewHistoryRepo(db)
	recorder := audit.NewRecorder(history)
	return &serviceFixture{
		db:       db,
		handler:  NewServiceHandler(requests, parts, history, recorder),
		history:  history,
		recorder: recorder,
		custID:   testutil.SeedCustomer(t, db, "dana"),
	}
}

// invoke runs one handler function against a synthetic request and returns
// the recorder plus the decoded envelope.
func invoke(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, h(c))

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestServiceCreateWritesPartsAndHistory(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	partID := testutil.SeedPart(t, f.db, "BRK-100", "25.00")

	body := fmt.Sprintf(`{
		"customer_id": %d,
		"vehicle_id": %d,
		"requested_date": "2024-04-01 09:00:00",
		"service_type": "Brake Service",
		"service_price": "120.00",
		"issues": "squealing on braking",
		"parts_used": [{"part_id": %d, "price": "25.00", "quantity": 2}]
	}`, f.custID, veh, partID)

	rec, env := invoke(t, f.handler.Create, http.MethodPost, "/api/services", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, env["success"])

	data := env["data"].(map[string]interface{})
	id := int64(data["service_request_id"].(float64))
	assert.Equal(t, model.StatusPending, data["status"])
	assert.Equal(t, "dana", data["customer_name"])

	var notes string
	require.NoError(t, f.db.QueryRow(`SELECT notes FROM Service_Request WHERE service_request_id = ?`, id).Scan(&notes))
	assert.Equal(t, "squealing on braking", notes)

	var partRows int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM Service_Parts_Used WHERE service_request_id = ?`, id).Scan(&partRows))
	assert.Equal(t, 1, partRows)

	f.recorder.Wait()
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionCreated, items[0].Action)
	require.NotNil(t, items[0].NewStatus)
	assert.Equal(t, model.StatusPending, *items[0].NewStatus)
}

func TestServiceCreateRejectsUnknownPart(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)

	body := fmt.Sprintf(`{
		"customer_id": %d,
		"vehicle_id": %d,
		"requested_date": "2024-04-01 09:00:00",
		"service_type": "Brake Service",
		"parts_used": [{"part_id": 9999, "quantity": 1}]
	}`, f.custID, veh)

	rec, env := invoke(t, f.handler.Create, http.MethodPost, "/api/services", body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, env["success"])

	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM Service_Request`).Scan(&count))
	assert.Equal(t, 0, count, "failed create must leave no request row behind")
}

func TestServiceCreateValidation(t *testing.T) {
	f := newServiceFixture(t)

	rec, env := invoke(t, f.handler.Create, http.MethodPost, "/api/services",
		`{"vehicle_id": 1, "requested_date": "2024-04-01", "service_type": "Oil Change"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["message"], "customer ID")
}

func TestServiceUpdateRecordsStatusChange(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	id := testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusPending, "100.00", "0")

	body := fmt.Sprintf(`{
		"customer_id": %d,
		"vehicle_id": %d,
		"requested_date": "2024-04-01 09:00:00",
		"service_type": "Oil Change",
		"status": "In Progress"
	}`, f.custID, veh)

	rec, env := invoke(t, f.handler.Update, http.MethodPut, "/api/services/1", body,
		map[string]string{"id": fmt.Sprint(id)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, env["success"])

	f.recorder.Wait()
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionStatusChanged, items[0].Action)
	require.NotNil(t, items[0].PreviousStatus)
	assert.Equal(t, model.StatusPending, *items[0].PreviousStatus)
	require.NotNil(t, items[0].NewStatus)
	assert.Equal(t, model.StatusInProgress, *items[0].NewStatus)
}

func TestServiceUpdateWithoutStatusChangeRecordsUpdated(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	id := testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusPending, "100.00", "0")

	body := fmt.Sprintf(`{
		"customer_id": %d,
		"vehicle_id": %d,
		"requested_date": "2024-04-01 09:00:00",
		"service_type": "Oil Change",
		"status": "Pending",
		"notes": "customer will wait on site"
	}`, f.custID, veh)

	_, env := invoke(t, f.handler.Update, http.MethodPut, "/api/services/1", body,
		map[string]string{"id": fmt.Sprint(id)})
	require.Equal(t, true, env["success"])

	f.recorder.Wait()
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionUpdated, items[0].Action)
	assert.Nil(t, items[0].PreviousStatus)
}

func TestServiceDeleteWritesClosedEntry(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	id := testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusInProgress, "100.00", "0")

	rec, env := invoke(t, f.handler.Delete, http.MethodDelete, "/api/services/1", "",
		map[string]string{"id": fmt.Sprint(id)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, env["success"])

	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM Service_Request WHERE service_request_id = ?`, id).Scan(&count))
	assert.Equal(t, 0, count)

	// No Wait needed: the Closed entry is written inside the delete
	// transaction, not through the recorder.
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionClosed, items[0].Action)
	require.NotNil(t, items[0].PreviousStatus)
	assert.Equal(t, model.StatusInProgress, *items[0].PreviousStatus)
}

func TestServiceGetUnknownReturnsNotFound(t *testing.T) {
	f := newServiceFixture(t)

	rec, env := invoke(t, f.handler.Get, http.MethodGet, "/api/services/77", "",
		map[string]string{"id": "77"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, env["success"])
}

func TestServiceGetRejectsMalformedID(t *testing.T) {
	f := newServiceFixture(t)

	rec, _ := invoke(t, f.handler.Get, http.MethodGet, "/api/services/abc", "",
		map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceCreateRecordCompletesRequest(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	id := testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusInProgress, "100.00", "0")
	techID := testutil.SeedTechnician(t, f.db, "frank")

	body := fmt.Sprintf(`{
		"technician_id": %d,
		"date_completed": "2024-04-02 17:30:00",
		"labor_hours": 2.5,
		"notes": "replaced pads and rotors"
	}`, techID)

	rec, env := invoke(t, f.handler.CreateRecord, http.MethodPost, "/api/services/1/record", body,
		map[string]string{"id": fmt.Sprint(id)})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, env["success"])

	var status string
	require.NoError(t, f.db.QueryRow(`SELECT status FROM Service_Request WHERE service_request_id = ?`, id).Scan(&status))
	assert.Equal(t, model.StatusCompleted, status)

	f.recorder.Wait()
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionStatusChanged, items[0].Action)
	require.NotNil(t, items[0].NewStatus)
	assert.Equal(t, model.StatusCompleted, *items[0].NewStatus)
}

func TestServiceCreateRecordOnCompletedRequestAddsNoHistory(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	id := testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusCompleted, "100.00", "0")
	techID := testutil.SeedTechnician(t, f.db, "grace")

	body := fmt.Sprintf(`{
		"technician_id": %d,
		"date_completed": "2024-04-02 17:30:00",
		"labor_hours": 1.0
	}`, techID)

	rec, env := invoke(t, f.handler.CreateRecord, http.MethodPost, "/api/services/1/record", body,
		map[string]string{"id": fmt.Sprint(id)})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, env["success"])

	// The status did not transition, so the audit log stays untouched.
	f.recorder.Wait()
	items, err := f.history.ListByService(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServiceListPaginationEnvelope(t *testing.T) {
	f := newServiceFixture(t)
	veh := testutil.SeedVehicle(t, f.db, f.custID)
	for i := 0; i < 3; i++ {
		testutil.SeedServiceRequest(t, f.db, f.custID, veh, model.StatusPending, "50.00", "0")
	}

	rec, env := invoke(t, f.handler.List, http.MethodGet, "/api/services?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, env["success"])

	pagination := env["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["totalPages"])
	assert.Len(t, env["data"].([]interface{}), 2)
}
