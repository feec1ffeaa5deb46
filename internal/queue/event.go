// Package queue defines message payloads exchanged over the message broker.
package queue

// ServiceLifecycleEvent is published when a service request changes state:
// created, updated, completed or closed. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ServiceLifecycleEvent struct {
	ServiceRequestID int64  `json:"service_request_id"`
	CustomerID       int64  `json:"customer_id"`
	VehicleID        int64  `json:"vehicle_id"`
	ServiceType      string `json:"service_type"`
	Action           string `json:"action"`
	PreviousStatus   string `json:"previous_status,omitempty"`
	NewStatus        string `json:"new_status"`
	OccurredAt       string `json:"occurred_at"`
}
