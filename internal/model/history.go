package model

// Audit actions recorded in Service_History. Rows are append-only and are
// never updated or deleted; each lifecycle operation on a service request
// produces exactly one entry.
const (
	ActionCreated       = "Created"
	ActionUpdated       = "Updated"
	ActionStatusChanged = "StatusChanged"
	ActionClosed        = "Closed"
)

// ServiceHistory is one immutable audit row for a service request
// lifecycle event. PreviousStatus and NewStatus are populated for
// StatusChanged (both), Created (new only) and Closed (previous only).
type ServiceHistory struct {
	ID             int64   `json:"history_id"`      // Service_History.history_id
	ServiceID      int64   `json:"service_id"`      // Service_History.service_id
	CustomerID     int64   `json:"customer_id"`     // Service_History.customer_id
	VehicleID      int64   `json:"vehicle_id"`      // Service_History.vehicle_id
	Action         string  `json:"action"`          // Service_History.action
	PreviousStatus *string `json:"previous_status"` // Service_History.previous_status (nullable)
	NewStatus      *string `json:"new_status"`      // Service_History.new_status (nullable)
	Timestamp      string  `json:"timestamp"`       // Service_History.timestamp
}
