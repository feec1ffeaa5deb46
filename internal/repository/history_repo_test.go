package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func strptr(s string) *string { return &s }

func TestHistoryInsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	history := NewHistoryRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "luke")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusInProgress, "60.00", "0")

	require.NoError(t, history.Insert(ctx, HistoryEntry{
		ServiceID:  reqID,
		CustomerID: custID,
		VehicleID:  vehID,
		Action:     model.ActionCreated,
		NewStatus:  strptr(model.StatusPending),
	}))
	require.NoError(t, history.Insert(ctx, HistoryEntry{
		ServiceID:      reqID,
		CustomerID:     custID,
		VehicleID:      vehID,
		Action:         model.ActionStatusChanged,
		PreviousStatus: strptr(model.StatusPending),
		NewStatus:      strptr(model.StatusInProgress),
	}))

	items, total, err := history.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "luke", items[0].CustomerName)
	assert.Equal(t, model.StatusInProgress, items[0].CurrentStatus)

	byService, err := history.ListByService(ctx, reqID)
	require.NoError(t, err)
	assert.Len(t, byService, 2)

	byCustomer, err := history.ListByCustomer(ctx, custID)
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)
}

func TestHistorySurvivesRequestDeletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	history := NewHistoryRepo(db)
	requests := NewServiceRequestRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "mary")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "30.00", "0")

	// Closed entry lands in the same transaction as the delete.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, history.InsertTx(ctx, tx, HistoryEntry{
		ServiceID:      reqID,
		CustomerID:     custID,
		VehicleID:      vehID,
		Action:         model.ActionClosed,
		PreviousStatus: strptr(model.StatusPending),
	}))
	require.NoError(t, requests.DeleteTx(ctx, tx, reqID))
	require.NoError(t, tx.Commit())

	_, err = requests.GetDetail(ctx, reqID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := history.ListByService(ctx, reqID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ActionClosed, items[0].Action)
	require.NotNil(t, items[0].PreviousStatus)
	assert.Equal(t, model.StatusPending, *items[0].PreviousStatus)
	// Joined display fields degrade to empty once the request is gone.
	assert.Empty(t, items[0].ServiceType)
}

func TestHistoryMissingTableYieldsEmptyResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	history := NewHistoryRepo(db)
	ctx := context.Background()

	_, err := db.Exec(`DROP TABLE Service_History`)
	require.NoError(t, err)

	items, total, err := history.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
