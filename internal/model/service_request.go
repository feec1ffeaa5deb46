package model

import "github.com/shopspring/decimal"

// Service request status values. A request normally moves
// Pending -> In Progress -> Completed; Cancelled is reachable from any
// non-terminal state. Completed and Cancelled are terminal for status
// changes, though the record itself can still be deleted.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// ResolveStatus maps an empty client-supplied status to the default.
func ResolveStatus(status string) string {
	if status == "" {
		return StatusPending
	}
	return status
}

// ServiceRequest is a unit of requested work on a customer's vehicle. It
// carries its own status lifecycle and the pricing inputs the invoice is
// later derived from.
//
// Fields:
//
//	ID            – primary key identifier.
//	CustomerID    – customer the work is requested for.
//	VehicleID     – vehicle being serviced.
//	EmployeeID    – employee handling the request (nullable).
//	RequestedDate – date the service was requested (YYYY-MM-DD).
//	ServiceType   – free-text service classification.
//	Status        – lifecycle status, see constants above.
//	ServicePrice  – base labor price.
//	ExtraCharges  – additional charges on top of the base price.
//	Notes         – free-text description of the reported issues.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type ServiceRequest struct {
	ID            int64           `json:"service_request_id"` // Service_Request.service_request_id
	CustomerID    int64           `json:"customer_id"`        // Service_Request.customer_id
	VehicleID     int64           `json:"vehicle_id"`         // Service_Request.vehicle_id
	EmployeeID    *int64          `json:"employee_id"`        // Service_Request.employee_id (nullable)
	RequestedDate string          `json:"requested_date"`     // Service_Request.requested_date
	ServiceType   string          `json:"service_type"`       // Service_Request.service_type
	Status        string          `json:"status"`             // Service_Request.status
	ServicePrice  decimal.Decimal `json:"service_price"`      // Service_Request.service_price
	ExtraCharges  decimal.Decimal `json:"extra_charges"`      // Service_Request.extra_charges
	Notes         *string         `json:"notes"`              // Service_Request.notes (nullable)
	CreatedAt     string          `json:"created_at"`         // Service_Request.created_at
	UpdatedAt     string          `json:"updated_at"`         // Service_Request.updated_at
}

// ServicePartUsed is one line item consumed by a service request: a part
// at the price charged at time of use and a quantity. Line items are owned
// entirely by the request's current state; every update replaces the full
// set.
type ServicePartUsed struct {
	ID               int64           `json:"id"`                 // Service_Parts_Used.id
	ServiceRequestID int64           `json:"service_request_id"` // Service_Parts_Used.service_request_id
	PartID           int64           `json:"part_id"`            // Service_Parts_Used.part_id
	PartPrice        decimal.Decimal `json:"part_price"`         // Service_Parts_Used.part_price
	Quantity         int             `json:"quantity"`           // Service_Parts_Used.quantity
}

// ServiceRecord is the completion record a technician files against a
// service request. At most one exists per request; its creation forces the
// owning request's status to Completed.
type ServiceRecord struct {
	ID               int64   `json:"service_record_id"`  // Service_Record.service_record_id
	ServiceRequestID int64   `json:"service_request_id"` // Service_Record.service_request_id
	TechnicianID     int64   `json:"technician_id"`      // Service_Record.technician_id
	DateCompleted    string  `json:"date_completed"`     // Service_Record.date_completed
	Notes            *string `json:"notes"`              // Service_Record.notes (nullable)
	LaborHours       float64 `json:"labor_hours"`        // Service_Record.labor_hours
}
