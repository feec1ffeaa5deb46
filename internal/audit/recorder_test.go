package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/repository"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func TestRecorderWritesInBackground(t *testing.T) {
	db := testutil.SetupTestDB(t)
	history := repository.NewHistoryRepo(db)
	recorder := NewRecorder(history)

	custID := testutil.SeedCustomer(t, db, "tess")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusPending, "10.00", "0")

	status := model.StatusPending
	for i := 0; i < 5; i++ {
		recorder.Record(repository.HistoryEntry{
			ServiceID:  reqID,
			CustomerID: custID,
			VehicleID:  vehID,
			Action:     model.ActionCreated,
			NewStatus:  &status,
		})
	}
	recorder.Wait()

	items, err := history.ListByService(context.Background(), reqID)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	history := repository.NewHistoryRepo(db)
	recorder := NewRecorder(history)

	_, err := db.Exec(`DROP TABLE Service_History`)
	require.NoError(t, err)

	// The write fails against the dropped table; Record must not panic
	// and Wait must still return.
	recorder.Record(repository.HistoryEntry{ServiceID: 1, CustomerID: 1, VehicleID: 1, Action: model.ActionCreated})
	recorder.Wait()
}
