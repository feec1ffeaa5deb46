package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// DashboardRepo aggregates read-only figures for the overview screens. It
// never writes.
type DashboardRepo struct {
	db *sql.DB
}

// NewDashboardRepo creates a new DashboardRepo.
func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// DashboardStats is the headline counter block.
type DashboardStats struct {
	TotalCustomers     int             `json:"total_customers"`
	TotalVehicles      int             `json:"total_vehicles"`
	PendingRequests    int             `json:"pending_requests"`
	InProgressRequests int             `json:"in_progress_requests"`
	CompletedRequests  int             `json:"completed_requests"`
	OpenInvoices       int             `json:"open_invoices"`
	CollectedRevenue   decimal.Decimal `json:"collected_revenue"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	LowStockParts      int             `json:"low_stock_parts"`
	AverageRating      float64         `json:"average_rating"`
}

// StatusCount is one slice of the request status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MonthRevenue is one month's collected payments. Month is "YYYY-MM".
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Stats computes the headline counters in one pass of simple aggregates.
func (r *DashboardRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	counters := map[*int]string{
		&s.TotalCustomers:     `SELECT COUNT(*) FROM Customer`,
		&s.TotalVehicles:      `SELECT COUNT(*) FROM Vehicle`,
		&s.PendingRequests:    `SELECT COUNT(*) FROM Service_Request WHERE status = 'Pending'`,
		&s.InProgressRequests: `SELECT COUNT(*) FROM Service_Request WHERE status = 'In Progress'`,
		&s.CompletedRequests:  `SELECT COUNT(*) FROM Service_Request WHERE status = 'Completed'`,
		&s.OpenInvoices:       `SELECT COUNT(*) FROM Invoice WHERE payment_pending = 1`,
		&s.LowStockParts:      `SELECT COUNT(*) FROM Inventory WHERE quantity <= reorder_level`,
	}
	for dest, query := range counters {
		if err := r.db.QueryRowContext(ctx, query).Scan(dest); err != nil {
			return nil, fmt.Errorf("dashboard counter: %w", err)
		}
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_paid), 0) FROM Payment`).Scan(&s.CollectedRevenue); err != nil {
		return nil, fmt.Errorf("dashboard revenue: %w", err)
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(i.total_amount), 0) - COALESCE((SELECT SUM(p.amount_paid) FROM Payment p
			JOIN Invoice pi ON pi.invoice_id = p.invoice_id WHERE pi.payment_pending = 1), 0)
		 FROM Invoice i WHERE i.payment_pending = 1`).Scan(&s.OutstandingAmount); err != nil {
		return nil, fmt.Errorf("dashboard outstanding: %w", err)
	}
	// Average rounds to one decimal place, matching the overview screen.
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(ROUND(AVG(rating), 1), 0) FROM Feedback`).Scan(&s.AverageRating); err != nil {
		return nil, fmt.Errorf("dashboard rating: %w", err)
	}
	return &s, nil
}

// StatusBreakdown returns request counts grouped by status.
func (r *DashboardRepo) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM Service_Request GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer rows.Close()

	items := make([]StatusCount, 0, 4)
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

// MonthlyRevenue sums payments per calendar month, newest first, capped at
// the given number of months. Payment dates are stored as "YYYY-MM-DD ..."
// strings so the month is a plain prefix.
func (r *DashboardRepo) MonthlyRevenue(ctx context.Context, months int) ([]MonthRevenue, error) {
	if months <= 0 {
		months = 12
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT SUBSTR(date, 1, 7) AS month, COALESCE(SUM(amount_paid), 0)
		 FROM Payment GROUP BY SUBSTR(date, 1, 7) ORDER BY month DESC LIMIT ?`, months)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	items := make([]MonthRevenue, 0, months)
	for rows.Next() {
		var m MonthRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, fmt.Errorf("scan month revenue: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// RecentActivity returns the latest audit entries for the activity feed.
// Like the audit listing, a missing history table yields an empty feed.
func (r *DashboardRepo) RecentActivity(ctx context.Context, limit int) ([]HistoryItem, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, historyColumns+
		` ORDER BY sh.timestamp DESC, sh.history_id DESC LIMIT ?`, limit)
	if err != nil {
		if isMissingTable(err) {
			return []HistoryItem{}, nil
		}
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}
