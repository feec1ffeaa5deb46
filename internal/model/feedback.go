package model

// Feedback is a customer rating for a completed service request.
type Feedback struct {
	ID               int64   `json:"feedback_id"`        // Feedback.feedback_id
	CustomerID       int64   `json:"customer_id"`        // Feedback.customer_id
	ServiceRequestID int64   `json:"service_request_id"` // Feedback.service_request_id
	Rating           int     `json:"rating"`             // Feedback.rating (1-5)
	Comments         *string `json:"comments"`           // Feedback.comments (nullable)
	CreatedAt        string  `json:"created_at"`         // Feedback.created_at
}
