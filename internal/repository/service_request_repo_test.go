package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newRequestInput(customerID, vehicleID int64) *ServiceRequestInput {
	return &ServiceRequestInput{
		CustomerID:    customerID,
		VehicleID:     vehicleID,
		RequestedDate: "2024-03-02",
		ServiceType:   "Brake Inspection",
		Status:        model.StatusPending,
		ServicePrice:  decimal.NewFromInt(100),
		ExtraCharges:  decimal.NewFromInt(20),
	}
}

func createRequest(t *testing.T, repo *ServiceRequestRepo, parts *PartsRepo, in *ServiceRequestInput, lines []PartUsedInput) int64 {
	t.Helper()
	ctx := context.Background()
	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	id, err := repo.CreateTx(ctx, tx, in)
	require.NoError(t, err)
	require.NoError(t, parts.InsertForRequestTx(ctx, tx, id, lines))
	require.NoError(t, tx.Commit())
	return id
}

func TestServiceRequestInputValidate(t *testing.T) {
	in := newRequestInput(0, 1)
	err := in.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "customer ID")

	in = newRequestInput(1, 1)
	in.ServiceType = ""
	require.ErrorIs(t, in.Validate(), ErrValidation)

	require.NoError(t, newRequestInput(1, 1).Validate())
}

func TestCreateWithPartsIsAtomic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	parts := NewPartsRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "alice")
	vehID := testutil.SeedVehicle(t, db, custID)

	// A line item naming a part that does not exist must fail the insert
	// and roll the whole transaction back, leaving no request behind.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	id, err := repo.CreateTx(ctx, tx, newRequestInput(custID, vehID))
	require.NoError(t, err)
	err = parts.InsertForRequestTx(ctx, tx, id, []PartUsedInput{
		{PartID: 9999, Price: dec(t, "15.00"), Quantity: 2},
	})
	require.ErrorIs(t, err, ErrBadReference)
	require.NoError(t, tx.Rollback())

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Service_Request`).Scan(&n))
	assert.Zero(t, n)

	// With a real part the same flow commits both rows.
	partID := testutil.SeedPart(t, db, "BP-100", "15.00")
	id = createRequest(t, repo, parts, newRequestInput(custID, vehID), []PartUsedInput{
		{PartID: partID, Price: dec(t, "15.00"), Quantity: 2},
	})

	detail, err := repo.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.CustomerName)
	assert.Equal(t, model.StatusPending, detail.Status)
	require.Len(t, detail.PartsUsed, 1)
	assert.Equal(t, 2, detail.PartsUsed[0].Quantity)
}

func TestListFiltersByStatusAndPaginates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "bob")
	vehID := testutil.SeedVehicle(t, db, custID)
	for i := 0; i < 3; i++ {
		testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "50.00", "0")
	}
	testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "80.00", "0")

	items, total, err := repo.List(ctx, 1, 2, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)

	items, total, err = repo.List(ctx, 2, 2, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)

	_, total, err = repo.List(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestReplacePartsIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	parts := NewPartsRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "carol")
	vehID := testutil.SeedVehicle(t, db, custID)
	partA := testutil.SeedPart(t, db, "PA-1", "10.00")
	partB := testutil.SeedPart(t, db, "PB-2", "20.00")

	reqID := createRequest(t, repo, parts, newRequestInput(custID, vehID), []PartUsedInput{
		{PartID: partA, Price: dec(t, "10.00"), Quantity: 1},
	})

	replace := func() {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, parts.ReplaceForRequestTx(ctx, tx, reqID, []PartUsedInput{
			{PartID: partB, Price: dec(t, "20.00"), Quantity: 3},
		}))
		require.NoError(t, tx.Commit())
	}
	// Running the same replacement twice must converge on one line item.
	replace()
	replace()

	sum, err := parts.SumForRequest(ctx, reqID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec(t, "60.00")), "got %s", sum)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Service_Parts_Used WHERE service_request_id = ?`, reqID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUpdateMissingRequestReturnsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "dave")
	vehID := testutil.SeedVehicle(t, db, custID)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	err = repo.UpdateTx(ctx, tx, 12345, newRequestInput(custID, vehID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRecordMarksRequestCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "erin")
	vehID := testutil.SeedVehicle(t, db, custID)
	techID := testutil.SeedTechnician(t, db, "frank")
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusInProgress, "100.00", "0")

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	recID, err := repo.CreateRecordTx(ctx, tx, &model.ServiceRecord{
		ServiceRequestID: reqID,
		TechnicianID:     techID,
		DateCompleted:    "2024-03-05",
		LaborHours:       2.5,
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkCompletedTx(ctx, tx, reqID))
	require.NoError(t, tx.Commit())

	detail, err := repo.GetDetail(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, detail.Status)
	require.NotNil(t, detail.ServiceRecord)
	assert.Equal(t, recID, detail.ServiceRecord.ID)
	assert.Equal(t, "frank", detail.ServiceRecord.TechnicianName)
}

func TestCreateStampsRowTimestamps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewServiceRequestRepo(db)
	parts := NewPartsRepo(db)

	custID := testutil.SeedCustomer(t, db, "gwen")
	vehID := testutil.SeedVehicle(t, db, custID)
	id := createRequest(t, repo, parts, newRequestInput(custID, vehID), nil)

	var created, updated string
	require.NoError(t, db.QueryRow(
		`SELECT created_at, updated_at FROM Service_Request WHERE service_request_id = ?`, id).
		Scan(&created, &updated))
	assert.NotEmpty(t, created)
	assert.Equal(t, created, updated)
}
