package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FeedbackRepo persists customer feedback on service requests.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

// FeedbackInput carries the writable feedback fields.
type FeedbackInput struct {
	CustomerID       int64   `json:"customer_id"`
	ServiceRequestID int64   `json:"service_request_id"`
	Rating           int     `json:"rating"`
	Comments         *string `json:"comments"`
}

// Validate checks the required feedback fields. Ratings run 1 through 5.
func (in *FeedbackInput) Validate() error {
	if in.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID is required", ErrValidation)
	}
	if in.ServiceRequestID <= 0 {
		return fmt.Errorf("%w: service request ID is required", ErrValidation)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

// FeedbackListItem is a feedback row joined with the customer's name and
// the request's service type.
type FeedbackListItem struct {
	ID               int64   `json:"feedback_id"`
	CustomerID       int64   `json:"customer_id"`
	CustomerName     string  `json:"customer_name"`
	ServiceRequestID int64   `json:"service_request_id"`
	ServiceType      string  `json:"service_type"`
	Rating           int     `json:"rating"`
	Comments         *string `json:"comments"`
	CreatedAt        string  `json:"created_at"`
}

// List returns a page of feedback, newest first, plus the total count.
func (r *FeedbackRepo) List(ctx context.Context, page, limit int) ([]FeedbackListItem, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Feedback`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT f.feedback_id, f.customer_id, c.name, f.service_request_id,
			sr.service_type, f.rating, f.comments, f.created_at
		 FROM Feedback f
		 JOIN Customer c ON c.customer_id = f.customer_id
		 JOIN Service_Request sr ON sr.service_request_id = f.service_request_id
		 ORDER BY f.created_at DESC, f.feedback_id DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	items := make([]FeedbackListItem, 0, limit)
	for rows.Next() {
		var f FeedbackListItem
		if err := rows.Scan(&f.ID, &f.CustomerID, &f.CustomerName, &f.ServiceRequestID,
			&f.ServiceType, &f.Rating, &f.Comments, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}

// Create inserts a feedback row. An unknown customer or request surfaces as
// ErrBadReference.
func (r *FeedbackRepo) Create(ctx context.Context, in *FeedbackInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Feedback (customer_id, service_request_id, rating, comments, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.CustomerID, in.ServiceRequestID, in.Rating, nullableText(in.Comments), nowStamp())
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// Delete removes a feedback row.
func (r *FeedbackRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Feedback WHERE feedback_id = ?`, id)
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
