package model

import "github.com/shopspring/decimal"

// Invoice is the billable total derived from a service request. At most
// one exists per request (unique constraint on service_request_id). The
// total is always computed in full from the request's price, extra charges
// and the parts sum; it is never partially updated.
type Invoice struct {
	ID               int64           `json:"invoice_id"`         // Invoice.invoice_id
	ServiceRequestID int64           `json:"service_request_id"` // Invoice.service_request_id
	TotalAmount      decimal.Decimal `json:"total_amount"`       // Invoice.total_amount
	PaymentPending   bool            `json:"payment_pending"`    // Invoice.payment_pending
	Date             string          `json:"date"`               // Invoice.date
	DueDate          string          `json:"due_date"`           // Invoice.due_date
}

// Payment is one partial or full remittance applied against an invoice.
// Rows are append-only; once cumulative payments reach the invoice total,
// the invoice's payment_pending flag is cleared.
type Payment struct {
	ID                   int64           `json:"payment_id"`            // Payment.payment_id
	InvoiceID            int64           `json:"invoice_id"`            // Payment.invoice_id
	Method               string          `json:"method"`                // Payment.method
	AmountPaid           decimal.Decimal `json:"amount_paid"`           // Payment.amount_paid
	Date                 string          `json:"date"`                  // Payment.date
	TransactionReference *string         `json:"transaction_reference"` // Payment.transaction_reference (nullable)
}
