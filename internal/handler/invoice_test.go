package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/repository"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func TestInvoiceCreateDerivesTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewInvoiceHandler(repository.NewInvoiceRepo(db))
	custID := testutil.SeedCustomer(t, db, "maya")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "200.00", "15.50")

	body := fmt.Sprintf(`{"service_request_id": %d, "date": "2024-04-03 12:00:00", "due_date": "2024-05-03 12:00:00"}`, reqID)
	rec, env := invoke(t, h.Create, http.MethodPost, "/api/invoices", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, env["success"])

	data := env["data"].(map[string]interface{})
	total, err := decimal.NewFromString(data["total_amount"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("215.50")), "got total %s", total)
	assert.Equal(t, true, data["payment_pending"])
}

func TestInvoiceCreateUnknownRequestMapsTo404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewInvoiceHandler(repository.NewInvoiceRepo(db))

	rec, env := invoke(t, h.Create, http.MethodPost, "/api/invoices",
		`{"service_request_id": 999, "date": "2024-04-03 12:00:00", "due_date": "2024-05-03 12:00:00"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, env["success"])
}

func TestInvoiceCreateDuplicateMapsTo409(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewInvoiceHandler(repository.NewInvoiceRepo(db))
	custID := testutil.SeedCustomer(t, db, "maya")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "200.00", "0")

	body := fmt.Sprintf(`{"service_request_id": %d, "date": "2024-04-03 12:00:00", "due_date": "2024-05-03 12:00:00"}`, reqID)
	rec, _ := invoke(t, h.Create, http.MethodPost, "/api/invoices", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := invoke(t, h.Create, http.MethodPost, "/api/invoices", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, env["success"])
}

func TestInvoiceCreateRequiresDueDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewInvoiceHandler(repository.NewInvoiceRepo(db))
	custID := testutil.SeedCustomer(t, db, "maya")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "50.00", "0")

	body := fmt.Sprintf(`{"service_request_id": %d, "date": "2024-04-03 12:00:00"}`, reqID)
	rec, env := invoke(t, h.Create, http.MethodPost, "/api/invoices", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["message"], "due date")
}

func TestPaymentDefaultsDateAndClearsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewInvoiceHandler(repository.NewInvoiceRepo(db))
	custID := testutil.SeedCustomer(t, db, "maya")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "100.00", "0")

	body := fmt.Sprintf(`{"service_request_id": %d, "date": "2024-04-03 12:00:00", "due_date": "2024-05-03 12:00:00"}`, reqID)
	rec, env := invoke(t, h.Create, http.MethodPost, "/api/invoices", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	invoiceID := int64(env["data"].(map[string]interface{})["invoice_id"].(float64))

	// No date in the body: the handler stamps the current time.
	payment := `{"method": "card", "amount_paid": "100.00"}`
	rec, env = invoke(t, h.CreatePayment, http.MethodPost, "/api/invoices/1/payments", payment,
		map[string]string{"id": fmt.Sprint(invoiceID)})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, env["success"])
	assert.NotEmpty(t, env["data"].(map[string]interface{})["date"])

	var pending int
	require.NoError(t, db.QueryRow(`SELECT payment_pending FROM Invoice WHERE invoice_id = ?`, invoiceID).Scan(&pending))
	assert.Equal(t, 0, pending, "full payment must clear the pending flag")
}
