package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// EmployeeRepo persists employees and technicians.
type EmployeeRepo struct {
	db *sql.DB
}

// NewEmployeeRepo creates a new EmployeeRepo.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

// EmployeeInput carries the writable employee fields.
type EmployeeInput struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	HireDate string  `json:"hire_date"`
}

// Validate checks the required employee fields.
func (in *EmployeeInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Role) == "" {
		return fmt.Errorf("%w: role is required", ErrValidation)
	}
	if strings.TrimSpace(in.HireDate) == "" {
		return fmt.Errorf("%w: hire date is required", ErrValidation)
	}
	return nil
}

// TechnicianInput carries the writable technician fields.
type TechnicianInput struct {
	EmployeeID         int64   `json:"employee_id"`
	Specialization     string  `json:"specialization"`
	CertificationLevel *string `json:"certification_level"`
}

// Validate checks the required technician fields.
func (in *TechnicianInput) Validate() error {
	if in.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee ID is required", ErrValidation)
	}
	if strings.TrimSpace(in.Specialization) == "" {
		return fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	return nil
}

// TechnicianListItem is a technician joined with the employee's name and role.
type TechnicianListItem struct {
	ID                 int64   `json:"technician_id"`
	EmployeeID         int64   `json:"employee_id"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	Specialization     string  `json:"specialization"`
	CertificationLevel *string `json:"certification_level"`
}

// List returns a page of employees plus the total count.
func (r *EmployeeRepo) List(ctx context.Context, page, limit int) ([]model.Employee, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Employee`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT employee_id, name, role, phone, email, hire_date
		 FROM Employee ORDER BY employee_id DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	items := make([]model.Employee, 0, limit)
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Phone, &e.Email, &e.HireDate); err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// GetByID returns one employee, or ErrNotFound.
func (r *EmployeeRepo) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	var e model.Employee
	err := r.db.QueryRowContext(ctx, `SELECT employee_id, name, role, phone, email, hire_date
		 FROM Employee WHERE employee_id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Role, &e.Phone, &e.Email, &e.HireDate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &e, nil
}

// Create inserts an employee.
func (r *EmployeeRepo) Create(ctx context.Context, in *EmployeeInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Employee (name, role, phone, email, hire_date)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Role, nullableText(in.Phone), nullableText(in.Email), in.HireDate)
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites an employee's fields.
func (r *EmployeeRepo) Update(ctx context.Context, id int64, in *EmployeeInput) error {
	res, err := r.db.ExecContext(ctx, `UPDATE Employee
		 SET name = ?, role = ?, phone = ?, email = ?, hire_date = ?
		 WHERE employee_id = ?`,
		in.Name, in.Role, nullableText(in.Phone), nullableText(in.Email), in.HireDate, id)
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

// Delete removes an employee. Service requests assigned to them keep the
// reference via ON DELETE SET NULL; technician rows block the delete.
func (r *EmployeeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Employee WHERE employee_id = ?`, id)
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

// ListTechnicians returns all technicians with their employee names.
func (r *EmployeeRepo) ListTechnicians(ctx context.Context) ([]TechnicianListItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT t.technician_id, t.employee_id, e.name, e.role, t.specialization, t.certification_level
		 FROM Technician t
		 JOIN Employee e ON e.employee_id = t.employee_id
		 ORDER BY e.name`)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	items := make([]TechnicianListItem, 0, 8)
	for rows.Next() {
		var t TechnicianListItem
		if err := rows.Scan(&t.ID, &t.EmployeeID, &t.Name, &t.Role, &t.Specialization, &t.CertificationLevel); err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// CreateTechnician registers an employee as a technician. An unknown
// employee surfaces as ErrBadReference.
func (r *EmployeeRepo) CreateTechnician(ctx context.Context, in *TechnicianInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Technician (employee_id, specialization, certification_level)
		 VALUES (?, ?, ?)`,
		in.EmployeeID, in.Specialization, nullableText(in.CertificationLevel))
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}
