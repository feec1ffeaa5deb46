package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// HistoryRepo appends and reads the immutable Service_History audit log.
// Rows are never updated or deleted. The table intentionally carries no
// foreign keys so audit entries outlive the requests they describe.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// HistoryEntry is the payload for one audit row. PreviousStatus and
// NewStatus are nil when the action carries no status transition.
type HistoryEntry struct {
	ServiceID      int64
	CustomerID     int64
	VehicleID      int64
	Action         string
	PreviousStatus *string
	NewStatus      *string
}

const historyInsert = `INSERT INTO Service_History
    (service_id, customer_id, vehicle_id, action, previous_status, new_status, timestamp)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

// Insert appends one audit row with a server-side timestamp. Used by the
// post-commit recorder.
func (r *HistoryRepo) Insert(ctx context.Context, e HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, historyInsert,
		e.ServiceID, e.CustomerID, e.VehicleID, e.Action,
		nullableText(e.PreviousStatus), nullableText(e.NewStatus), nowStamp())
	return err
}

// InsertTx appends one audit row inside an existing transaction. Used by
// the delete path, which must persist the Closed entry before the request
// row disappears.
func (r *HistoryRepo) InsertTx(ctx context.Context, tx *sql.Tx, e HistoryEntry) error {
	_, err := tx.ExecContext(ctx, historyInsert,
		e.ServiceID, e.CustomerID, e.VehicleID, e.Action,
		nullableText(e.PreviousStatus), nullableText(e.NewStatus), nowStamp())
	return err
}

// HistoryItem is an audit row joined with customer, vehicle and service
// context for display.
type HistoryItem struct {
	ID             int64   `json:"history_id"`
	ServiceID      int64   `json:"service_id"`
	CustomerID     int64   `json:"customer_id"`
	VehicleID      int64   `json:"vehicle_id"`
	Action         string  `json:"action"`
	PreviousStatus *string `json:"previous_status"`
	NewStatus      *string `json:"new_status"`
	Timestamp      string  `json:"timestamp"`
	CustomerName   string  `json:"customer_name"`
	RegistrationNo string  `json:"registration_no"`
	ServiceType    string  `json:"service_type"`
	CurrentStatus  string  `json:"current_status"`
}

// The joins are all LEFT: audit rows outlive the request (and possibly the
// customer or vehicle) they describe, and a Closed entry must still list
// after the underlying rows are gone.
const historyJoin = ` FROM Service_History sh
  LEFT JOIN Customer c ON sh.customer_id = c.customer_id
  LEFT JOIN Vehicle v ON sh.vehicle_id = v.vehicle_id
  LEFT JOIN Service_Request sr ON sh.service_id = sr.service_request_id`

const historyColumns = `SELECT sh.history_id, sh.service_id, sh.customer_id, sh.vehicle_id,
       sh.action, sh.previous_status, sh.new_status, sh.timestamp,
       COALESCE(c.name, ''), COALESCE(v.registration_no, ''),
       COALESCE(sr.service_type, ''), COALESCE(sr.status, '')` + historyJoin

// List returns a page of audit rows, newest first. Deployments migrate the
// audit table separately from the rest of the schema, so a missing table
// yields an empty result instead of an error.
func (r *HistoryRepo) List(ctx context.Context, page, limit int) ([]HistoryItem, int, error) {
	offset := (page - 1) * limit

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Service_History`).Scan(&total)
	if err != nil {
		if isMissingTable(err) {
			return []HistoryItem{}, 0, nil
		}
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, historyColumns+` ORDER BY sh.timestamp DESC, sh.history_id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		if isMissingTable(err) {
			return []HistoryItem{}, 0, nil
		}
		return nil, 0, err
	}
	defer rows.Close()
	items, err := scanHistoryRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByService returns every audit row for one service request, newest first.
func (r *HistoryRepo) ListByService(ctx context.Context, serviceID int64) ([]HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx, historyColumns+` WHERE sh.service_id = ? ORDER BY sh.timestamp DESC, sh.history_id DESC`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

// ListByCustomer returns every audit row for one customer, newest first.
func (r *HistoryRepo) ListByCustomer(ctx context.Context, customerID int64) ([]HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx, historyColumns+` WHERE sh.customer_id = ? ORDER BY sh.timestamp DESC, sh.history_id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

func scanHistoryRows(rows *sql.Rows) ([]HistoryItem, error) {
	items := make([]HistoryItem, 0)
	for rows.Next() {
		var item HistoryItem
		var prev, next sql.NullString
		if err := rows.Scan(
			&item.ID, &item.ServiceID, &item.CustomerID, &item.VehicleID,
			&item.Action, &prev, &next, &item.Timestamp,
			&item.CustomerName, &item.RegistrationNo, &item.ServiceType, &item.CurrentStatus,
		); err != nil {
			return nil, err
		}
		if prev.Valid {
			p := prev.String
			item.PreviousStatus = &p
		}
		if next.Valid {
			n := next.String
			item.NewStatus = &n
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MySQL server error number for a missing table.
const mysqlErrNoSuchTable = 1146

func isMissingTable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrNoSuchTable
	}
	return strings.Contains(err.Error(), "no such table")
}
