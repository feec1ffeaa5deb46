package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InsuranceRepo persists vehicle insurance policies.
type InsuranceRepo struct {
	db *sql.DB
}

// NewInsuranceRepo creates a new InsuranceRepo.
func NewInsuranceRepo(db *sql.DB) *InsuranceRepo { return &InsuranceRepo{db: db} }

// InsuranceInput carries the writable policy fields.
type InsuranceInput struct {
	VehicleID      int64           `json:"vehicle_id"`
	Provider       string          `json:"provider"`
	PolicyNumber   string          `json:"policy_number"`
	ExpiryDate     string          `json:"expiry_date"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
}

// Validate checks the required policy fields.
func (in *InsuranceInput) Validate() error {
	if in.VehicleID <= 0 {
		return fmt.Errorf("%w: vehicle ID is required", ErrValidation)
	}
	if strings.TrimSpace(in.Provider) == "" {
		return fmt.Errorf("%w: provider is required", ErrValidation)
	}
	if strings.TrimSpace(in.PolicyNumber) == "" {
		return fmt.Errorf("%w: policy number is required", ErrValidation)
	}
	if strings.TrimSpace(in.ExpiryDate) == "" {
		return fmt.Errorf("%w: expiry date is required", ErrValidation)
	}
	return nil
}

// InsuranceListItem is a policy joined with its vehicle's registration and
// owner name.
type InsuranceListItem struct {
	ID             int64           `json:"insurance_id"`
	VehicleID      int64           `json:"vehicle_id"`
	RegistrationNo string          `json:"registration_no"`
	CustomerName   string          `json:"customer_name"`
	Provider       string          `json:"provider"`
	PolicyNumber   string          `json:"policy_number"`
	ExpiryDate     string          `json:"expiry_date"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
}

const insuranceColumns = `SELECT ins.insurance_id, ins.vehicle_id, v.registration_no, c.name,
		ins.provider, ins.policy_number, ins.expiry_date, ins.coverage_amount
	 FROM Insurance ins
	 JOIN Vehicle v ON v.vehicle_id = ins.vehicle_id
	 JOIN Customer c ON c.customer_id = v.customer_id`

// List returns a page of policies ordered by expiry date, soonest first,
// plus the total count.
func (r *InsuranceRepo) List(ctx context.Context, page, limit int) ([]InsuranceListItem, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Insurance`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count insurance: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, insuranceColumns+` ORDER BY ins.expiry_date, ins.insurance_id LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list insurance: %w", err)
	}
	defer rows.Close()

	items := make([]InsuranceListItem, 0, limit)
	for rows.Next() {
		var it InsuranceListItem
		if err := rows.Scan(&it.ID, &it.VehicleID, &it.RegistrationNo, &it.CustomerName,
			&it.Provider, &it.PolicyNumber, &it.ExpiryDate, &it.CoverageAmount); err != nil {
			return nil, 0, fmt.Errorf("scan insurance: %w", err)
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// GetByID returns one policy, or ErrNotFound.
func (r *InsuranceRepo) GetByID(ctx context.Context, id int64) (*InsuranceListItem, error) {
	var it InsuranceListItem
	err := r.db.QueryRowContext(ctx, insuranceColumns+` WHERE ins.insurance_id = ?`, id).
		Scan(&it.ID, &it.VehicleID, &it.RegistrationNo, &it.CustomerName,
			&it.Provider, &it.PolicyNumber, &it.ExpiryDate, &it.CoverageAmount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get insurance %d: %w", id, err)
	}
	return &it, nil
}

// Create inserts a policy. A duplicate policy number surfaces as
// ErrDuplicate; an unknown vehicle as ErrBadReference.
func (r *InsuranceRepo) Create(ctx context.Context, in *InsuranceInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Insurance (vehicle_id, provider, policy_number, expiry_date, coverage_amount)
		 VALUES (?, ?, ?, ?, ?)`,
		in.VehicleID, in.Provider, in.PolicyNumber, in.ExpiryDate, in.CoverageAmount)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites a policy's fields.
func (r *InsuranceRepo) Update(ctx context.Context, id int64, in *InsuranceInput) error {
	res, err := r.db.ExecContext(ctx, `UPDATE Insurance
		 SET vehicle_id = ?, provider = ?, policy_number = ?, expiry_date = ?, coverage_amount = ?
		 WHERE insurance_id = ?`,
		in.VehicleID, in.Provider, in.PolicyNumber, in.ExpiryDate, in.CoverageAmount, id)
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

// Delete removes a policy.
func (r *InsuranceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Insurance WHERE insurance_id = ?`, id)
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
