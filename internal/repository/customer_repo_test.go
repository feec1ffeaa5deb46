package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func TestCustomerCRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	customers := NewCustomerRepo(db)
	ctx := context.Background()

	email := "nina@example.com"
	id, err := customers.Create(ctx, &CustomerInput{Name: "Nina", Phone: "555-0101", Email: &email})
	require.NoError(t, err)

	detail, err := customers.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Nina", detail.Name)
	assert.Empty(t, detail.Vehicles)

	testutil.SeedVehicle(t, db, id)
	detail, err = customers.GetDetail(ctx, id)
	require.NoError(t, err)
	require.Len(t, detail.Vehicles, 1)
	assert.Equal(t, "Toyota", detail.Vehicles[0].Brand)

	require.NoError(t, customers.Update(ctx, id, &CustomerInput{Name: "Nina B", Phone: "555-0102"}))
	detail, err = customers.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Nina B", detail.Name)
	assert.Nil(t, detail.Email)

	assert.ErrorIs(t, customers.Update(ctx, 999, &CustomerInput{Name: "x", Phone: "y"}), ErrNotFound)
	assert.ErrorIs(t, customers.Delete(ctx, 999), ErrNotFound)
}

func TestCustomerDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	customers := NewCustomerRepo(db)
	ctx := context.Background()

	email := "dup@example.com"
	_, err := customers.Create(ctx, &CustomerInput{Name: "First", Phone: "1", Email: &email})
	require.NoError(t, err)

	_, err = customers.Create(ctx, &CustomerInput{Name: "Second", Phone: "2", Email: &email})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCustomerDeleteBlockedByRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	customers := NewCustomerRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "oscar")
	vehID := testutil.SeedVehicle(t, db, custID)
	testutil.SeedServiceRequest(t, db, custID, vehID, "Pending", "10.00", "0")

	err := customers.Delete(ctx, custID)
	assert.ErrorIs(t, err, ErrBadReference)
}

func TestCustomerListPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	customers := NewCustomerRepo(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		testutil.SeedCustomer(t, db, name)
	}

	items, total, err := customers.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, items, 2)

	items, _, err = customers.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
