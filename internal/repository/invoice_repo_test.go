package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auto-service-desk/internal/model"
	"github.com/iliyamo/auto-service-desk/internal/testutil"
)

func TestInvoiceTotalDerivedFromRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)
	requests := NewServiceRequestRepo(db)
	parts := NewPartsRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "grace")
	vehID := testutil.SeedVehicle(t, db, custID)
	partID := testutil.SeedPart(t, db, "FL-7", "15.00")

	in := newRequestInput(custID, vehID) // price 100, extras 20
	reqID := createRequest(t, requests, parts, in, []PartUsedInput{
		{PartID: partID, Price: dec(t, "15.00"), Quantity: 2},
	})

	invID, err := invoices.Create(ctx, &InvoiceInput{
		ServiceRequestID: reqID,
		Date:             "2024-03-10 09:00:00",
		DueDate:          "2024-04-10 09:00:00",
	})
	require.NoError(t, err)

	detail, err := invoices.GetDetail(ctx, invID)
	require.NoError(t, err)
	// 100 base + 20 extras + 2 * 15 parts
	assert.True(t, detail.TotalAmount.Equal(dec(t, "150.00")), "got %s", detail.TotalAmount)
	assert.True(t, detail.PaymentPending)
	assert.Equal(t, "grace", detail.CustomerName)
	assert.Empty(t, detail.Payments)
}

func TestInvoiceCreateExplicitlySettled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "heidi")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "75.00", "0")

	settled := false
	invID, err := invoices.Create(ctx, &InvoiceInput{
		ServiceRequestID: reqID,
		PaymentPending:   &settled,
		Date:             "2024-03-10 09:00:00",
		DueDate:          "2024-04-10 09:00:00",
	})
	require.NoError(t, err)

	detail, err := invoices.GetDetail(ctx, invID)
	require.NoError(t, err)
	assert.False(t, detail.PaymentPending)
}

func TestInvoiceUniquePerRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "ivan")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "75.00", "0")

	in := &InvoiceInput{ServiceRequestID: reqID, Date: "2024-03-10 09:00:00", DueDate: "2024-04-10 09:00:00"}
	_, err := invoices.Create(ctx, in)
	require.NoError(t, err)

	_, err = invoices.Create(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestInvoiceCreateUnknownRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)

	_, err := invoices.Create(context.Background(), &InvoiceInput{
		ServiceRequestID: 4242,
		Date:             "2024-03-10 09:00:00",
		DueDate:          "2024-04-10 09:00:00",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentsClearPendingAtThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "judy")
	vehID := testutil.SeedVehicle(t, db, custID)
	reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "100.00", "0")

	invID, err := invoices.Create(ctx, &InvoiceInput{
		ServiceRequestID: reqID,
		Date:             "2024-03-10 09:00:00",
		DueDate:          "2024-04-10 09:00:00",
	})
	require.NoError(t, err)

	pay := func(amount, date string) {
		t.Helper()
		_, err := invoices.CreatePayment(ctx, &PaymentInput{
			InvoiceID:  invID,
			Method:     "card",
			AmountPaid: dec(t, amount),
			Date:       date,
		})
		require.NoError(t, err)
	}

	// A partial payment leaves the invoice open.
	pay("40.00", "2024-03-11 12:00:00")
	detail, err := invoices.GetDetail(ctx, invID)
	require.NoError(t, err)
	assert.True(t, detail.PaymentPending)
	assert.Len(t, detail.Payments, 1)

	// Crossing the total flips it in the same transaction as the insert.
	pay("60.00", "2024-03-12 12:00:00")
	detail, err = invoices.GetDetail(ctx, invID)
	require.NoError(t, err)
	assert.False(t, detail.PaymentPending)
	assert.Len(t, detail.Payments, 2)
	// Newest first.
	assert.Equal(t, "2024-03-12 12:00:00", detail.Payments[0].Date)
}

func TestPaymentValidation(t *testing.T) {
	in := &PaymentInput{InvoiceID: 1, Method: "cash", AmountPaid: dec(t, "0"), Date: "2024-03-10"}
	err := in.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "amount")

	in.AmountPaid = dec(t, "-5.00")
	require.ErrorIs(t, in.Validate(), ErrValidation)

	in.AmountPaid = dec(t, "5.00")
	require.NoError(t, in.Validate())
}

func TestPaymentForUnknownInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)

	_, err := invoices.CreatePayment(context.Background(), &PaymentInput{
		InvoiceID:  999,
		Method:     "cash",
		AmountPaid: dec(t, "10.00"),
		Date:       "2024-03-10 09:00:00",
	})
	assert.ErrorIs(t, err, ErrBadReference)
}

func TestInvoiceListPendingFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoices := NewInvoiceRepo(db)
	ctx := context.Background()

	custID := testutil.SeedCustomer(t, db, "kate")
	vehID := testutil.SeedVehicle(t, db, custID)
	settled := false
	for i, pending := range []*bool{nil, nil, &settled} {
		reqID := testutil.SeedServiceRequest(t, db, custID, vehID, model.StatusCompleted, "50.00", "0")
		_, err := invoices.Create(ctx, &InvoiceInput{
			ServiceRequestID: reqID,
			PaymentPending:   pending,
			Date:             "2024-03-10 09:00:00",
			DueDate:          "2024-04-10 09:00:00",
		})
		require.NoError(t, err, "invoice %d", i)
	}

	open := true
	items, total, err := invoices.List(ctx, 1, 10, &open)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	_, total, err = invoices.List(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
