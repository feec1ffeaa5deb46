package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func TestDashboardStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard := NewDashboardRepo(db)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "pam")
	vehID := testutil.SeedVehicle(t, db, custID)
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "10.00", "0")
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusInProgress, "20.00", "0")
	doneID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "100.00", "0")

	invID, err := invoices.Create(ctx, &InvoiceInput{
		ServiceRequestID: doneID,
		Date:             "2024-03-10 09:00:00",
		DueDate:          "2024-04-10 09:00:00",
	})
	require.NoError(t, err)
	_, err = invoices.CreatePayment(ctx, &PaymentInput{
		InvoiceID: invID, Method: "cash", AmountPaid: dec(t, "40.00"), Date: "2024-03-11 09:00:00",
	})
	require.NoError(t, err)

	partID := testutil.SeedPart(t, db, "LOW-1", "5.00")
	_, err = db.Exec(`INSERT INTO Inventory (part_id, quantity, reorder_level, last_restocked) VALUES (?, 2, 5, '')`, partID)
	require.NoError(t, err)

	for _, rating := range []int{4, 5} {
		_, err = db.Exec(`INSERT INTO Feedback (customer_id, service_request_id, rating, created_at) VALUES (?, ?, ?, '2024-03-12 09:00:00')`, custID, doneID, rating)
		require.NoError(t, err)
	}

	stats, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCustomers)
	assert.Equal(t, 1, stats.TotalVehicles)
	assert.Equal(t, 1, stats.PendingRequests)
	assert.Equal(t, 1, stats.InProgressRequests)
	assert.Equal(t, 1, stats.CompletedRequests)
	assert.Equal(t, 1, stats.OpenInvoices)
	assert.Equal(t, 1, stats.LowStockParts)
	assert.True(t, stats.CollectedRevenue.Equal(dec(t, "40.00")), "got %s", stats.CollectedRevenue)
	// 100 invoiced, 40 paid against the still-open invoice
	assert.True(t, stats.OutstandingAmount.Equal(dec(t, "60.00")), "got %s", stats.OutstandingAmount)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
}

func TestDashboardStatusBreakdown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard := NewDashboardRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "quinn")
	vehID := testutil.SeedVehicle(t, db, custID)
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "1.00", "0")
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "1.00", "0")
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCancelled, "1.00", "0")

	counts, err := dashboard.StatusBreakdown(ctx)
	require.NoError(t, err)
	byStatus := map[string]int{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, 2, byStatus[model.StatusPending])
	assert.Equal(t, 1, byStatus[model.StatusCancelled])
}

func TestDashboardMonthlyRevenue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard := NewDashboardRepo(db)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "rita")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "300.00", "0")
	invID, err := invoices.Create(ctx, &InvoiceInput{
		ServiceRequestID: reqID,
		Date:             "2024-01-05 09:00:00",
		DueDate:          "2024-06-01 09:00:00",
	})
	require.NoError(t, err)

	for _, p := range []struct{ amount, date string }{
		{"50.00", "2024-01-10 09:00:00"},
		{"25.00", "2024-01-20 09:00:00"},
		{"100.00", "2024-02-15 09:00:00"},
	} {
		_, err := invoices.CreatePayment(ctx, &PaymentInput{
			InvoiceID: invID, Method: "card", AmountPaid: dec(t, p.amount), Date: p.date,
		})
		require.NoError(t, err)
	}

	months, err := dashboard.MonthlyRevenue(ctx, 12)
	require.NoError(t, err)
	require.Len(t, months, 2)
	// Newest first.
	assert.Equal(t, "2024-02", months[0].Month)
	assert.True(t, months[0].Revenue.Equal(dec(t, "100.00")))
	assert.Equal(t, "2024-01", months[1].Month)
	assert.True(t, months[1].Revenue.Equal(dec(t, "75.00")))
}

func TestDashboardRecentActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard := NewDashboardRepo(db)
	history := NewHistoryRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "sam")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "5.00", "0")

	require.NoError(t, history.Insert(ctx, HistoryEntry{
		ServiceID: reqID, CustomerID: custID, VehicleID: vehID,
		Action: model.ActionCreated, NewStatus: strptr(model.StatusPending),
	}))

	items, err := dashboard.RecentActivity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionCreated, items[0].Action)

	_, err = db.Exec(`DROP TABLE Service_History`)
	require.NoError(t, err)
	items, err = dashboard.RecentActivity(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}
