package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// CustomerRepo persists customers.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// CustomerInput carries the writable customer fields.
type CustomerInput struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// Validate checks the required customer fields.
func (in *CustomerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// CustomerVehicle is a vehicle row enriched with its catalog model, embedded
// in the customer detail view.
type CustomerVehicle struct {
	ID             int64  `json:"vehicle_id"`
	RegistrationNo string `json:"registration_no"`
	VIN            string `json:"vin"`
	Brand          string `json:"brand"`
	ModelName      string `json:"model_name"`
	Year           int    `json:"year"`
}

// CustomerDetail is a customer with their vehicles.
type CustomerDetail struct {
	model.Customer
	Vehicles []CustomerVehicle `json:"vehicles"`
}

// List returns a page of customers, newest first, plus the total count.
func (r *CustomerRepo) List(ctx context.Context, page, limit int) ([]model.Customer, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Customer`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT customer_id, name, phone, email, address, created_at, updated_at
		 FROM Customer ORDER BY created_at DESC, customer_id DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	items := make([]model.Customer, 0, limit)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// GetDetail returns a customer with their vehicles, or ErrNotFound.
func (r *CustomerRepo) GetDetail(ctx context.Context, id int64) (*CustomerDetail, error) {
	var d CustomerDetail
	err := r.db.QueryRowContext(ctx, `SELECT customer_id, name, phone, email, address, created_at, updated_at
		 FROM Customer WHERE customer_id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.Address, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT v.vehicle_id, v.registration_no, v.vin, vm.brand, vm.model_name, vm.year
		 FROM Vehicle v
		 JOIN Vehicle_Model vm ON vm.model_id = v.model_id
		 WHERE v.customer_id = ?
		 ORDER BY v.vehicle_id`, id)
	if err != nil {
		return nil, fmt.Errorf("customer %d vehicles: %w", id, err)
	}
	defer rows.Close()

	d.Vehicles = make([]CustomerVehicle, 0, 4)
	for rows.Next() {
		var v CustomerVehicle
		if err := rows.Scan(&v.ID, &v.RegistrationNo, &v.VIN, &v.Brand, &v.ModelName, &v.Year); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		d.Vehicles = append(d.Vehicles, v)
	}
	return &d, rows.Err()
}

// Create inserts a customer and returns its id. A duplicate email surfaces
// as ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, in *CustomerInput) (int64, error) {
	now := nowStamp()
	res, err := r.db.ExecContext(ctx, `INSERT INTO Customer (name, phone, email, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, in.Phone, nullableText(in.Email), nullableText(in.Address), now, now)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites a customer's fields. Returns ErrNotFound when the row
// does not exist.
func (r *CustomerRepo) Update(ctx context.Context, id int64, in *CustomerInput) error {
	res, err := r.db.ExecContext(ctx, `UPDATE Customer
		 SET name = ?, phone = ?, email = ?, address = ?, updated_at = ?
		 WHERE customer_id = ?`,
		in.Name, in.Phone, nullableText(in.Email), nullableText(in.Address), nowStamp(), id)
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

// Delete removes a customer. Rows referencing it block the delete and
// surface as ErrBadReference.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Customer WHERE customer_id = ?`, id)
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
