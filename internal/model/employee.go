package model

// Employee is a staff member; technicians reference employees.
type Employee struct {
	ID       int64   `json:"employee_id"` // Employee.employee_id
	Name     string  `json:"name"`        // Employee.name
	Role     string  `json:"role"`        // Employee.role
	Phone    *string `json:"phone"`       // Employee.phone (nullable)
	Email    *string `json:"email"`       // Employee.email (nullable)
	HireDate string  `json:"hire_date"`   // Employee.hire_date
}

// Technician extends an employee with a specialization and certification
// level. Service records are filed by technicians.
type Technician struct {
	ID                 int64   `json:"technician_id"`       // Technician.technician_id
	EmployeeID         int64   `json:"employee_id"`         // Technician.employee_id
	Specialization     string  `json:"specialization"`      // Technician.specialization
	CertificationLevel *string `json:"certification_level"` // Technician.certification_level (nullable)
}
