package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// PartsRepo maintains the line items consumed by a service request. It has
// no standalone mutation API: line items change only through the lifecycle
// create and update operations, which replace the full set each time so no
// stale rows survive an update.
type PartsRepo struct {
	db *sql.DB
}

// NewPartsRepo returns a PartsRepo bound to the given database.
func NewPartsRepo(db *sql.DB) *PartsRepo { return &PartsRepo{db: db} }

// PartUsedInput is one requested line item. Price defaults to zero and
// quantity to one when the client omits them.
type PartUsedInput struct {
	PartID   int64
	Price    decimal.Decimal
	Quantity int
}

// InsertForRequestTx inserts the supplied line items for a request in a
// single multi-row statement. Passing an empty slice has no effect.
// Unknown part IDs are classified onto ErrBadReference.
func (r *PartsRepo) InsertForRequestTx(ctx context.Context, tx *sql.Tx, requestID int64, parts []PartUsedInput) error {
	if len(parts) == 0 {
		return nil
	}
	query := `INSERT INTO Service_Parts_Used (service_request_id, part_id, part_price, quantity) VALUES `
	args := make([]interface{}, 0, len(parts)*4)
	for i, p := range parts {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		args = append(args, requestID, p.PartID, p.Price, qty)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return classifyConstraint(err)
}

// ReplaceForRequestTx deletes every existing line item for the request and
// re-inserts the supplied list. Duplicates are allowed and order is
// irrelevant; the end state always mirrors the latest call.
func (r *PartsRepo) ReplaceForRequestTx(ctx context.Context, tx *sql.Tx, requestID int64, parts []PartUsedInput) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM Service_Parts_Used WHERE service_request_id = ?`, requestID); err != nil {
		return err
	}
	return r.InsertForRequestTx(ctx, tx, requestID, parts)
}

// SumForRequest returns the sum of part_price * quantity over a request's
// line items, zero when there are none.
func (r *PartsRepo) SumForRequest(ctx context.Context, requestID int64) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(part_price * quantity), 0) FROM Service_Parts_Used WHERE service_request_id = ?`
	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, requestID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
