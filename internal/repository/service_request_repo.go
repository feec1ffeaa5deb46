package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// ServiceRequestRepo provides the SQL for the service request lifecycle.
// Multi-statement operations are exposed as ...Tx methods that run inside
// a caller-owned transaction; the caller must commit or rollback. Reads
// return rows denormalized with customer, vehicle, model and employee
// names so handlers can respond without follow-up lookups.
type ServiceRequestRepo struct {
	db *sql.DB
}

// NewServiceRequestRepo returns a ServiceRequestRepo bound to the given database.
func NewServiceRequestRepo(db *sql.DB) *ServiceRequestRepo { return &ServiceRequestRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions.
func (r *ServiceRequestRepo) DB() *sql.DB { return r.db }

// ServiceRequestInput carries the client-supplied fields for creating or
// updating a service request. Status, price and charges default when
// empty; Notes holds the resolved description text.
type ServiceRequestInput struct {
	CustomerID    int64
	VehicleID     int64
	EmployeeID    *int64
	RequestedDate string
	ServiceType   string
	Status        string
	ServicePrice  decimal.Decimal
	ExtraCharges  decimal.Decimal
	Notes         *string
}

// Validate enforces the required-field preconditions shared by create and
// update. Each failure wraps ErrValidation with the field name.
func (in *ServiceRequestInput) Validate() error {
	if in.CustomerID == 0 {
		return fmt.Errorf("%w: customer ID is required", ErrValidation)
	}
	if in.VehicleID == 0 {
		return fmt.Errorf("%w: vehicle ID is required", ErrValidation)
	}
	if in.RequestedDate == "" {
		return fmt.Errorf("%w: requested date is required", ErrValidation)
	}
	if in.ServiceType == "" {
		return fmt.Errorf("%w: service type is required", ErrValidation)
	}
	return nil
}

// ServiceRequestListItem is the denormalized row shape used by list
// responses and returned from create/update so new rows render in the
// same table the list page shows.
type ServiceRequestListItem struct {
	ID             int64   `json:"service_request_id"`
	RequestedDate  string  `json:"requested_date"`
	ServiceType    string  `json:"service_type"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	CustomerID     int64   `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
	CustomerPhone  string  `json:"customer_phone"`
	VehicleID      int64   `json:"vehicle_id"`
	RegistrationNo string  `json:"registration_no"`
	VIN            string  `json:"vin"`
	Brand          string  `json:"brand"`
	ModelName      string  `json:"model_name"`
	Year           int     `json:"year"`
	EmployeeName   *string `json:"employee_name"`
}

// ServiceRecordDetail is a completion record joined with its technician's
// name and specialization.
type ServiceRecordDetail struct {
	ID               int64   `json:"service_record_id"`
	ServiceRequestID int64   `json:"service_request_id"`
	TechnicianID     int64   `json:"technician_id"`
	DateCompleted    string  `json:"date_completed"`
	Notes            *string `json:"notes"`
	LaborHours       float64 `json:"labor_hours"`
	TechnicianName   string  `json:"technician_name"`
	Specialization   string  `json:"specialization"`
}

// ServiceRequestDetail is the full row shape for single-request reads,
// including pricing, the resolved description and the completion record
// when one exists.
type ServiceRequestDetail struct {
	ID             int64                   `json:"service_request_id"`
	CustomerID     int64                   `json:"customer_id"`
	VehicleID      int64                   `json:"vehicle_id"`
	EmployeeID     *int64                  `json:"employee_id"`
	RequestedDate  string                  `json:"requested_date"`
	ServiceType    string                  `json:"service_type"`
	Status         string                  `json:"status"`
	ServicePrice   decimal.Decimal         `json:"service_price"`
	ExtraCharges   decimal.Decimal         `json:"extra_charges"`
	Notes          *string                 `json:"notes"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
	CustomerName   string                  `json:"customer_name"`
	CustomerPhone  string                  `json:"customer_phone"`
	CustomerEmail  *string                 `json:"customer_email"`
	RegistrationNo string                  `json:"registration_no"`
	VIN            string                  `json:"vin"`
	Brand          string                  `json:"brand"`
	ModelName      string                  `json:"model_name"`
	Year           int                     `json:"year"`
	EmployeeName   *string                 `json:"employee_name"`
	ServiceRecord  *ServiceRecordDetail    `json:"service_record"`
	PartsUsed      []model.ServicePartUsed `json:"parts_used"`
}

const listItemColumns = `sr.service_request_id, sr.requested_date, sr.service_type, sr.status, sr.created_at,
       c.customer_id, c.name, c.phone,
       v.vehicle_id, v.registration_no, v.vin,
       vm.brand, vm.model_name, vm.year,
       e.name
  FROM Service_Request sr
 INNER JOIN Customer c ON sr.customer_id = c.customer_id
 INNER JOIN Vehicle v ON sr.vehicle_id = v.vehicle_id
 INNER JOIN Vehicle_Model vm ON v.model_id = vm.model_id
  LEFT JOIN Employee e ON sr.employee_id = e.employee_id`

// List returns a page of denormalized service requests, newest requested
// date first, optionally filtered by status. The second return value is
// the unfiltered-by-page total for pagination.
func (r *ServiceRequestRepo) List(ctx context.Context, page, limit int, status string) ([]ServiceRequestListItem, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM Service_Request`
	dataQuery := `SELECT ` + listItemColumns
	countArgs := []interface{}{}
	dataArgs := []interface{}{}
	if status != "" {
		countQuery += ` WHERE status = ?`
		dataQuery += ` WHERE sr.status = ?`
		countArgs = append(countArgs, status)
		dataArgs = append(dataArgs, status)
	}
	dataQuery += ` ORDER BY sr.requested_date DESC LIMIT ? OFFSET ?`
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

	items := make([]ServiceRequestListItem, 0)
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListItem(row rowScanner) (*ServiceRequestListItem, error) {
	var item ServiceRequestListItem
	var employeeName sql.NullString
	err := row.Scan(
		&item.ID, &item.RequestedDate, &item.ServiceType, &item.Status, &item.CreatedAt,
		&item.CustomerID, &item.CustomerName, &item.CustomerPhone,
		&item.VehicleID, &item.RegistrationNo, &item.VIN,
		&item.Brand, &item.ModelName, &item.Year,
		&employeeName,
	)
	if err != nil {
		return nil, err
	}
	if employeeName.Valid {
		name := employeeName.String
		item.EmployeeName = &name
	}
	return &item, nil
}

// GetListItem returns a single request in the same denormalized shape as
// List. It is used by create and update responses.
func (r *ServiceRequestRepo) GetListItem(ctx context.Context, id int64) (*ServiceRequestListItem, error) {
	q := `SELECT ` + listItemColumns + ` WHERE sr.service_request_id = ?`
	item, err := scanListItem(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetDetail returns the full joined row for one service request, including
// the completion record and line items when they exist.
func (r *ServiceRequestRepo) GetDetail(ctx context.Context, id int64) (*ServiceRequestDetail, error) {
	const q = `SELECT sr.service_request_id, sr.customer_id, sr.vehicle_id, sr.employee_id,
	                  sr.requested_date, sr.service_type, sr.status, sr.service_price, sr.extra_charges,
	                  sr.notes, sr.created_at, sr.updated_at,
	                  c.name, c.phone, c.email,
	                  v.registration_no, v.vin,
	                  vm.brand, vm.model_name, vm.year,
	                  e.name
	             FROM Service_Request sr
	            INNER JOIN Customer c ON sr.customer_id = c.customer_id
	            INNER JOIN Vehicle v ON sr.vehicle_id = v.vehicle_id
	            INNER JOIN Vehicle_Model vm ON v.model_id = vm.model_id
	             LEFT JOIN Employee e ON sr.employee_id = e.employee_id
	            WHERE sr.service_request_id = ?`

	var det ServiceRequestDetail
	var employeeID sql.NullInt64
	var notes, customerEmail, employeeName sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.CustomerID, &det.VehicleID, &employeeID,
		&det.RequestedDate, &det.ServiceType, &det.Status, &det.ServicePrice, &det.ExtraCharges,
		&notes, &det.CreatedAt, &det.UpdatedAt,
		&det.CustomerName, &det.CustomerPhone, &customerEmail,
		&det.RegistrationNo, &det.VIN,
		&det.Brand, &det.ModelName, &det.Year,
		&employeeName,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if employeeID.Valid {
		eid := employeeID.Int64
		det.EmployeeID = &eid
	}
	if notes.Valid {
		n := notes.String
		det.Notes = &n
	}
	if customerEmail.Valid {
		e := customerEmail.String
		det.CustomerEmail = &e
	}
	if employeeName.Valid {
		n := employeeName.String
		det.EmployeeName = &n
	}

	rec, err := r.recordForRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	det.ServiceRecord = rec

	parts, err := r.partsForRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	det.PartsUsed = parts
	return &det, nil
}

func (r *ServiceRequestRepo) recordForRequest(ctx context.Context, requestID int64) (*ServiceRecordDetail, error) {
	const q = `SELECT rec.service_record_id, rec.service_request_id, rec.technician_id,
	                  rec.date_completed, rec.notes, rec.labor_hours,
	                  e.name, t.specialization
	             FROM Service_Record rec
	            INNER JOIN Technician t ON rec.technician_id = t.technician_id
	            INNER JOIN Employee e ON t.employee_id = e.employee_id
	            WHERE rec.service_request_id = ?`
	var rec ServiceRecordDetail
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, q, requestID).Scan(
		&rec.ID, &rec.ServiceRequestID, &rec.TechnicianID,
		&rec.DateCompleted, &notes, &rec.LaborHours,
		&rec.TechnicianName, &rec.Specialization,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		n := notes.String
		rec.Notes = &n
	}
	return &rec, nil
}

func (r *ServiceRequestRepo) partsForRequest(ctx context.Context, requestID int64) ([]model.ServicePartUsed, error) {
	const q = `SELECT id, service_request_id, part_id, part_price, quantity
	             FROM Service_Parts_Used WHERE service_request_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	parts := make([]model.ServicePartUsed, 0)
	for rows.Next() {
		var p model.ServicePartUsed
		if err := rows.Scan(&p.ID, &p.ServiceRequestID, &p.PartID, &p.PartPrice, &p.Quantity); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// CreateTx inserts a new service request within the scope of an existing
// transaction and returns the generated ID. Integrity-constraint failures
// (unknown customer, vehicle, employee) are classified onto ErrBadReference.
func (r *ServiceRequestRepo) CreateTx(ctx context.Context, tx *sql.Tx, in *ServiceRequestInput) (int64, error) {
	const q = `INSERT INTO Service_Request
	           (customer_id, vehicle_id, employee_id, requested_date, service_type, status, service_price, extra_charges, notes, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := nowStamp()
	res, err := tx.ExecContext(ctx, q,
		in.CustomerID, in.VehicleID, nullableID(in.EmployeeID),
		in.RequestedDate, in.ServiceType, model.ResolveStatus(in.Status),
		in.ServicePrice, in.ExtraCharges, nullableText(in.Notes), now, now,
	)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// StatusInfoTx reads a request's current status and owning customer and
// vehicle under the transaction. ErrNotFound is returned when the request
// does not exist.
func (r *ServiceRequestRepo) StatusInfoTx(ctx context.Context, tx *sql.Tx, id int64) (status string, customerID, vehicleID int64, err error) {
	const q = `SELECT status, customer_id, vehicle_id FROM Service_Request WHERE service_request_id = ?`
	err = tx.QueryRowContext(ctx, q, id).Scan(&status, &customerID, &vehicleID)
	if err == sql.ErrNoRows {
		err = ErrNotFound
	}
	return
}

// UpdateTx overwrites every mutable column of an existing request and
// bumps updated_at. ErrNotFound is returned when no row matched.
func (r *ServiceRequestRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id int64, in *ServiceRequestInput) error {
	const q = `UPDATE Service_Request
	              SET customer_id = ?, vehicle_id = ?, employee_id = ?, requested_date = ?,
	                  service_type = ?, status = ?, service_price = ?, extra_charges = ?,
	                  notes = ?, updated_at = ?
	            WHERE service_request_id = ?`
	res, err := tx.ExecContext(ctx, q,
		in.CustomerID, in.VehicleID, nullableID(in.EmployeeID),
		in.RequestedDate, in.ServiceType, model.ResolveStatus(in.Status),
		in.ServicePrice, in.ExtraCharges, nullableText(in.Notes),
		nowStamp(), id,
	)
	if err != nil {
		return classifyConstraint(err)
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

// DeleteTx removes a service request. Deletion is terminal; the caller
// records the Closed audit entry before invoking it.
func (r *ServiceRequestRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM Service_Request WHERE service_request_id = ?`, id)
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

// MarkCompletedTx forces a request's status to Completed. Used when a
// technician files the completion record.
func (r *ServiceRequestRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `UPDATE Service_Request SET status = ?, updated_at = ? WHERE service_request_id = ?`
	_, err := tx.ExecContext(ctx, q, model.StatusCompleted, nowStamp(), id)
	return err
}

// CreateRecordTx inserts a technician completion record for a request.
func (r *ServiceRequestRepo) CreateRecordTx(ctx context.Context, tx *sql.Tx, rec *model.ServiceRecord) (int64, error) {
	const q = `INSERT INTO Service_Record (service_request_id, technician_id, date_completed, notes, labor_hours)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		rec.ServiceRequestID, rec.TechnicianID, rec.DateCompleted, nullableText(rec.Notes), rec.LaborHours)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// UpdateRecord overwrites a completion record's fields. ErrNotFound is
// returned when no row matched.
func (r *ServiceRequestRepo) UpdateRecord(ctx context.Context, id int64, rec *model.ServiceRecord) error {
	const q = `UPDATE Service_Record
	              SET technician_id = ?, date_completed = ?, notes = ?, labor_hours = ?
	            WHERE service_record_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		rec.TechnicianID, rec.DateCompleted, nullableText(rec.Notes), rec.LaborHours, id)
	if err != nil {
		return classifyConstraint(err)
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

// GetRecord returns one completion record by its own ID.
func (r *ServiceRequestRepo) GetRecord(ctx context.Context, id int64) (*model.ServiceRecord, error) {
	const q = `SELECT service_record_id, service_request_id, technician_id, date_completed, notes, labor_hours
	             FROM Service_Record WHERE service_record_id = ?`
	var rec model.ServiceRecord
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.ServiceRequestID, &rec.TechnicianID, &rec.DateCompleted, &notes, &rec.LaborHours)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		n := notes.String
		rec.Notes = &n
	}
	return &rec, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableText(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nowStamp formats the current UTC time in the DATETIME literal format
// both supported engines accept.
func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
