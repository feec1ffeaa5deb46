package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// VehicleRepo persists vehicles and the catalog of vehicle models.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo creates a new VehicleRepo.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// VehicleInput carries the writable vehicle fields.
type VehicleInput struct {
	CustomerID     int64  `json:"customer_id"`
	ModelID        int64  `json:"model_id"`
	RegistrationNo string `json:"registration_no"`
	VIN            string `json:"vin"`
}

// Validate checks the required vehicle fields.
func (in *VehicleInput) Validate() error {
	if in.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID is required", ErrValidation)
	}
	if in.ModelID <= 0 {
		return fmt.Errorf("%w: model ID is required", ErrValidation)
	}
	if strings.TrimSpace(in.RegistrationNo) == "" {
		return fmt.Errorf("%w: registration number is required", ErrValidation)
	}
	if strings.TrimSpace(in.VIN) == "" {
		return fmt.Errorf("%w: VIN is required", ErrValidation)
	}
	return nil
}

// VehicleModelInput carries the writable catalog model fields.
type VehicleModelInput struct {
	Brand     string `json:"brand"`
	ModelName string `json:"model_name"`
	Year      int    `json:"year"`
}

// Validate checks the required catalog model fields.
func (in *VehicleModelInput) Validate() error {
	if strings.TrimSpace(in.Brand) == "" {
		return fmt.Errorf("%w: brand is required", ErrValidation)
	}
	if strings.TrimSpace(in.ModelName) == "" {
		return fmt.Errorf("%w: model name is required", ErrValidation)
	}
	if in.Year <= 0 {
		return fmt.Errorf("%w: year is required", ErrValidation)
	}
	return nil
}

// VehicleListItem is a vehicle joined with its owner and catalog model.
type VehicleListItem struct {
	ID             int64  `json:"vehicle_id"`
	CustomerID     int64  `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	ModelID        int64  `json:"model_id"`
	Brand          string `json:"brand"`
	ModelName      string `json:"model_name"`
	Year           int    `json:"year"`
	RegistrationNo string `json:"registration_no"`
	VIN            string `json:"vin"`
	CreatedAt      string `json:"created_at"`
}

const vehicleColumns = `SELECT v.vehicle_id, v.customer_id, c.name, v.model_id, vm.brand, vm.model_name, vm.year,
		v.registration_no, v.vin, v.created_at
	 FROM Vehicle v
	 JOIN Customer c ON c.customer_id = v.customer_id
	 JOIN Vehicle_Model vm ON vm.model_id = v.model_id`

// List returns a page of vehicles, newest first, plus the total count. A
// non-zero customerID narrows the page to that owner's vehicles.
func (r *VehicleRepo) List(ctx context.Context, page, limit int, customerID int64) ([]VehicleListItem, int, error) {
	where := ""
	args := []interface{}{}
	if customerID > 0 {
		where = " WHERE v.customer_id = ?"
		args = append(args, customerID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Vehicle v`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx, vehicleColumns+where+` ORDER BY v.created_at DESC, v.vehicle_id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	items := make([]VehicleListItem, 0, limit)
	for rows.Next() {
		var v VehicleListItem
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.CustomerName, &v.ModelID, &v.Brand, &v.ModelName,
			&v.Year, &v.RegistrationNo, &v.VIN, &v.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan vehicle: %w", err)
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

// GetByID returns one vehicle with its owner and model, or ErrNotFound.
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*VehicleListItem, error) {
	var v VehicleListItem
	err := r.db.QueryRowContext(ctx, vehicleColumns+` WHERE v.vehicle_id = ?`, id).
		Scan(&v.ID, &v.CustomerID, &v.CustomerName, &v.ModelID, &v.Brand, &v.ModelName,
			&v.Year, &v.RegistrationNo, &v.VIN, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return &v, nil
}

// Create inserts a vehicle. A duplicate registration number or VIN surfaces
// as ErrDuplicate; an unknown customer or model as ErrBadReference.
func (r *VehicleRepo) Create(ctx context.Context, in *VehicleInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Vehicle (customer_id, model_id, registration_no, vin, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.CustomerID, in.ModelID, in.RegistrationNo, in.VIN, nowStamp())
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites a vehicle's fields.
func (r *VehicleRepo) Update(ctx context.Context, id int64, in *VehicleInput) error {
	res, err := r.db.ExecContext(ctx, `UPDATE Vehicle
		 SET customer_id = ?, model_id = ?, registration_no = ?, vin = ?
		 WHERE vehicle_id = ?`,
		in.CustomerID, in.ModelID, in.RegistrationNo, in.VIN, id)
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

// Delete removes a vehicle.
func (r *VehicleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Vehicle WHERE vehicle_id = ?`, id)
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

// ListModels returns the full vehicle model catalog ordered by brand and
// model name.
func (r *VehicleRepo) ListModels(ctx context.Context) ([]model.VehicleModel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model_id, brand, model_name, year, created_at
		 FROM Vehicle_Model ORDER BY brand, model_name, year`)
	if err != nil {
		return nil, fmt.Errorf("list vehicle models: %w", err)
	}
	defer rows.Close()

	items := make([]model.VehicleModel, 0, 16)
	for rows.Next() {
		var m model.VehicleModel
		if err := rows.Scan(&m.ID, &m.Brand, &m.ModelName, &m.Year, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle model: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CreateModel inserts a catalog model.
func (r *VehicleRepo) CreateModel(ctx context.Context, in *VehicleModelInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Vehicle_Model (brand, model_name, year, created_at)
		 VALUES (?, ?, ?, ?)`,
		in.Brand, in.ModelName, in.Year, nowStamp())
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}
