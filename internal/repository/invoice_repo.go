package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// InvoiceRepo derives invoices from service requests and accumulates
// payments against them. An invoice's total is always computed in full
// from the request's price, extra charges and parts sum at creation time;
// the payment_pending flag is owned by the payment path, which flips it
// inside the same transaction that records the payment so the flag can
// never disagree with the recorded payments.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns an InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions.
func (r *InvoiceRepo) DB() *sql.DB { return r.db }

// InvoiceInput carries the client-supplied fields for creating an invoice.
// The total is never supplied; it is derived from the service request.
type InvoiceInput struct {
	ServiceRequestID int64  `json:"service_request_id"`
	PaymentPending   *bool  `json:"payment_pending"`
	Date             string `json:"date"`
	DueDate          string `json:"due_date"`
}

// Validate enforces invoice creation preconditions.
func (in *InvoiceInput) Validate() error {
	if in.ServiceRequestID == 0 {
		return fmt.Errorf("%w: service request ID is required", ErrValidation)
	}
	if in.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if in.DueDate == "" {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	return nil
}

// PaymentInput carries the client-supplied fields for recording a payment.
type PaymentInput struct {
	InvoiceID            int64           `json:"invoice_id"`
	Method               string          `json:"method"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	Date                 string          `json:"date"`
	TransactionReference *string         `json:"transaction_reference"`
}

// Validate enforces payment preconditions: a payment must name an invoice
// and a method and carry a positive amount.
func (in *PaymentInput) Validate() error {
	if in.InvoiceID == 0 {
		return fmt.Errorf("%w: invoice ID is required", ErrValidation)
	}
	if in.Method == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	if !in.AmountPaid.IsPositive() {
		return fmt.Errorf("%w: amount paid must be positive", ErrValidation)
	}
	if in.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

// InvoiceListItem is an invoice joined with its service request and
// customer for list and detail responses.
type InvoiceListItem struct {
	ID               int64           `json:"invoice_id"`
	ServiceRequestID int64           `json:"service_request_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentPending   bool            `json:"payment_pending"`
	Date             string          `json:"date"`
	DueDate          string          `json:"due_date"`
	ServiceType      string          `json:"service_type"`
	ServiceStatus    string          `json:"service_status"`
	CustomerID       int64           `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
}

// InvoiceDetail extends InvoiceListItem with the customer's email and the
// payments recorded against the invoice, newest first.
type InvoiceDetail struct {
	InvoiceListItem
	CustomerEmail *string         `json:"customer_email"`
	Payments      []model.Payment `json:"payments"`
}

const invoiceJoin = ` FROM Invoice i
 INNER JOIN Service_Request sr ON i.service_request_id = sr.service_request_id
 INNER JOIN Customer c ON sr.customer_id = c.customer_id`

// List returns a page of invoices, newest first, optionally filtered by
// the payment_pending flag.
func (r *InvoiceRepo) List(ctx context.Context, page, limit int, pending *bool) ([]InvoiceListItem, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM Invoice`
	dataQuery := `SELECT i.invoice_id, i.service_request_id, i.total_amount, i.payment_pending, i.date, i.due_date,
       sr.service_type, sr.status,
       c.customer_id, c.name, c.phone` + invoiceJoin
	countArgs := []interface{}{}
	dataArgs := []interface{}{}
	if pending != nil {
		countQuery += ` WHERE payment_pending = ?`
		dataQuery += ` WHERE i.payment_pending = ?`
		countArgs = append(countArgs, *pending)
		dataArgs = append(dataArgs, *pending)
	}
	dataQuery += ` ORDER BY i.date DESC, i.invoice_id DESC LIMIT ? OFFSET ?`
	dataArgs = append(dataArgs, limit, offset)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]InvoiceListItem, 0)
	for rows.Next() {
		var item InvoiceListItem
		if err := rows.Scan(
			&item.ID, &item.ServiceRequestID, &item.TotalAmount, &item.PaymentPending, &item.Date, &item.DueDate,
			&item.ServiceType, &item.ServiceStatus,
			&item.CustomerID, &item.CustomerName, &item.CustomerPhone,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetDetail returns one invoice with its payments.
func (r *InvoiceRepo) GetDetail(ctx context.Context, id int64) (*InvoiceDetail, error) {
	q := `SELECT i.invoice_id, i.service_request_id, i.total_amount, i.payment_pending, i.date, i.due_date,
       sr.service_type, sr.status,
       c.customer_id, c.name, c.phone, c.email` + invoiceJoin + ` WHERE i.invoice_id = ?`
	var det InvoiceDetail
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.ServiceRequestID, &det.TotalAmount, &det.PaymentPending, &det.Date, &det.DueDate,
		&det.ServiceType, &det.ServiceStatus,
		&det.CustomerID, &det.CustomerName, &det.CustomerPhone, &email,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if email.Valid {
		e := email.String
		det.CustomerEmail = &e
	}
	payments, err := r.PaymentsByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	det.Payments = payments
	return &det, nil
}

// Create derives the invoice total (service price + extra charges + the
// sum of part_price * quantity) and inserts the row. ErrNotFound is returned
// when the service request does not exist; ErrDuplicate when an invoice
// already exists for it.
func (r *InvoiceRepo) Create(ctx context.Context, in *InvoiceInput) (int64, error) {
	var price, extra decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT service_price, extra_charges FROM Service_Request WHERE service_request_id = ?`,
		in.ServiceRequestID).Scan(&price, &extra)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: service request", ErrNotFound)
	}
	if err != nil {
		return 0, err
	}

	var partsSum decimal.Decimal
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(part_price * quantity), 0) FROM Service_Parts_Used WHERE service_request_id = ?`,
		in.ServiceRequestID).Scan(&partsSum)
	if err != nil {
		return 0, err
	}

	total := price.Add(extra).Add(partsSum)

	// Only an explicit false leaves the invoice settled at creation.
	pending := in.PaymentPending == nil || *in.PaymentPending

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO Invoice (service_request_id, total_amount, payment_pending, date, due_date) VALUES (?, ?, ?, ?, ?)`,
		in.ServiceRequestID, total, pending, in.Date, in.DueDate)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites an invoice's fields directly. The caller-supplied
// total is trusted as-is and is not re-derived from the request; this is
// an operator-level overwrite. ErrNotFound is returned when no row
// matched.
func (r *InvoiceRepo) Update(ctx context.Context, id int64, total decimal.Decimal, pending bool, date, dueDate string) error {
	const q = `UPDATE Invoice SET total_amount = ?, payment_pending = ?, date = ?, due_date = ? WHERE invoice_id = ?`
	res, err := r.db.ExecContext(ctx, q, total, pending, date, dueDate, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePayment records one payment inside a single transaction: insert
// the row, recompute the cumulative paid amount, and clear the invoice's
// payment_pending flag once the cumulative amount covers the total. A
// failure at any step rolls back the whole operation so the flag never
// disagrees with the recorded payments.
func (r *InvoiceRepo) CreatePayment(ctx context.Context, in *PaymentInput) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO Payment (invoice_id, method, amount_paid, date, transaction_reference) VALUES (?, ?, ?, ?, ?)`,
		in.InvoiceID, in.Method, in.AmountPaid, in.Date, nullableText(in.TransactionReference))
	if err != nil {
		return 0, classifyConstraint(err)
	}
	paymentID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	var totalPaid decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_paid), 0) FROM Payment WHERE invoice_id = ?`, in.InvoiceID).Scan(&totalPaid)
	if err != nil {
		return 0, err
	}

	var totalAmount decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT total_amount FROM Invoice WHERE invoice_id = ?`, in.InvoiceID).Scan(&totalAmount)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: invoice", ErrNotFound)
	}
	if err != nil {
		return 0, err
	}

	if totalPaid.GreaterThanOrEqual(totalAmount) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE Invoice SET payment_pending = ? WHERE invoice_id = ?`, false, in.InvoiceID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return paymentID, nil
}

// GetPayment returns one payment row by ID.
func (r *InvoiceRepo) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `SELECT payment_id, invoice_id, method, amount_paid, date, transaction_reference
	             FROM Payment WHERE payment_id = ?`
	var p model.Payment
	var ref sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.InvoiceID, &p.Method, &p.AmountPaid, &p.Date, &ref)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		t := ref.String
		p.TransactionReference = &t
	}
	return &p, nil
}

// PaymentsByInvoice returns every payment for an invoice, newest first.
func (r *InvoiceRepo) PaymentsByInvoice(ctx context.Context, invoiceID int64) ([]model.Payment, error) {
	const q = `SELECT payment_id, invoice_id, method, amount_paid, date, transaction_reference
	             FROM Payment WHERE invoice_id = ? ORDER BY date DESC, payment_id DESC`
	rows, err := r.db.QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		var ref sql.NullString
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Method, &p.AmountPaid, &p.Date, &ref); err != nil {
			return nil, err
		}
		if ref.Valid {
			t := ref.String
			p.TransactionReference = &t
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
