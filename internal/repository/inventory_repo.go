package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/auto-service-desk/internal/model"
)

// InventoryRepo persists the parts catalog, suppliers and stock levels.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo creates a new InventoryRepo.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// PartInput carries the writable catalog part fields.
type PartInput struct {
	Name        string          `json:"part_name"`
	SupplierID  *int64          `json:"supplier_id"`
	Price       decimal.Decimal `json:"price"`
	PartNumber  string          `json:"part_number"`
	Description *string         `json:"description"`
}

// Validate checks the required part fields.
func (in *PartInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: part name is required", ErrValidation)
	}
	if strings.TrimSpace(in.PartNumber) == "" {
		return fmt.Errorf("%w: part number is required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// SupplierInput carries the writable supplier fields.
type SupplierInput struct {
	Name    string  `json:"supplier_name"`
	Contact *string `json:"contact"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// Validate checks the required supplier fields.
func (in *SupplierInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", ErrValidation)
	}
	return nil
}

// StockInput carries the writable stock fields for a part.
type StockInput struct {
	PartID       int64 `json:"part_id"`
	Quantity     int   `json:"quantity"`
	ReorderLevel int   `json:"reorder_level"`
}

// Validate checks the required stock fields.
func (in *StockInput) Validate() error {
	if in.PartID <= 0 {
		return fmt.Errorf("%w: part ID is required", ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if in.ReorderLevel < 0 {
		return fmt.Errorf("%w: reorder level must not be negative", ErrValidation)
	}
	return nil
}

// PartListItem is a catalog part joined with its supplier name and current
// stock level.
type PartListItem struct {
	ID           int64           `json:"part_id"`
	Name         string          `json:"part_name"`
	SupplierID   *int64          `json:"supplier_id"`
	SupplierName *string         `json:"supplier_name"`
	Price        decimal.Decimal `json:"price"`
	PartNumber   string          `json:"part_number"`
	Description  *string         `json:"description"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
}

const partColumns = `SELECT p.part_id, p.part_name, p.supplier_id, s.supplier_name, p.price, p.part_number,
		p.description, COALESCE(inv.quantity, 0), COALESCE(inv.reorder_level, 0)
	 FROM Parts p
	 LEFT JOIN Supplier s ON s.supplier_id = p.supplier_id
	 LEFT JOIN Inventory inv ON inv.part_id = p.part_id`

// ListParts returns a page of catalog parts with stock, plus the total count.
func (r *InventoryRepo) ListParts(ctx context.Context, page, limit int) ([]PartListItem, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Parts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count parts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, partColumns+` ORDER BY p.part_name LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	items := make([]PartListItem, 0, limit)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// GetPart returns one catalog part with stock, or ErrNotFound.
func (r *InventoryRepo) GetPart(ctx context.Context, id int64) (*PartListItem, error) {
	p, err := scanPart(r.db.QueryRowContext(ctx, partColumns+` WHERE p.part_id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get part %d: %w", id, err)
	}
	return p, nil
}

func scanPart(row rowScanner) (*PartListItem, error) {
	var p PartListItem
	err := row.Scan(&p.ID, &p.Name, &p.SupplierID, &p.SupplierName, &p.Price, &p.PartNumber,
		&p.Description, &p.Quantity, &p.ReorderLevel)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan part: %w", err)
	}
	return &p, nil
}

// CreatePart inserts a catalog part. A duplicate part number surfaces as
// ErrDuplicate; an unknown supplier as ErrBadReference.
func (r *InventoryRepo) CreatePart(ctx context.Context, in *PartInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Parts (part_name, supplier_id, price, part_number, description)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Name, nullableID(in.SupplierID), in.Price, in.PartNumber, nullableText(in.Description))
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}

// UpdatePart overwrites a catalog part's fields.
func (r *InventoryRepo) UpdatePart(ctx context.Context, id int64, in *PartInput) error {
	res, err := r.db.ExecContext(ctx, `UPDATE Parts
		 SET part_name = ?, supplier_id = ?, price = ?, part_number = ?, description = ?
		 WHERE part_id = ?`,
		in.Name, nullableID(in.SupplierID), in.Price, in.PartNumber, nullableText(in.Description), id)
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

// DeletePart removes a catalog part. Usage rows in service requests block
// the delete and surface as ErrBadReference.
func (r *InventoryRepo) DeletePart(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM Parts WHERE part_id = ?`, id)
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

// SetStock records the stock level for a part, inserting the row on first
// use and updating it afterwards. The restock timestamp is refreshed on
// every call.
func (r *InventoryRepo) SetStock(ctx context.Context, in *StockInput) error {
	now := nowStamp()
	res, err := r.db.ExecContext(ctx, `UPDATE Inventory
		 SET quantity = ?, reorder_level = ?, last_restocked = ?
		 WHERE part_id = ?`,
		in.Quantity, in.ReorderLevel, now, in.PartID)
	if err != nil {
		return classifyConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO Inventory (part_id, quantity, reorder_level, last_restocked)
		 VALUES (?, ?, ?, ?)`,
		in.PartID, in.Quantity, in.ReorderLevel, now)
	if err != nil {
		return classifyConstraint(err)
	}
	return nil
}

// LowStock returns inventory rows at or below their reorder level.
func (r *InventoryRepo) LowStock(ctx context.Context) ([]PartListItem, error) {
	rows, err := r.db.QueryContext(ctx, partColumns+` WHERE inv.quantity <= inv.reorder_level ORDER BY inv.quantity`)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	items := make([]PartListItem, 0, 8)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListSuppliers returns all suppliers ordered by name.
func (r *InventoryRepo) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT supplier_id, supplier_name, contact, phone, email, address
		 FROM Supplier ORDER BY supplier_name`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	items := make([]model.Supplier, 0, 8)
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Address); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// CreateSupplier inserts a supplier.
func (r *InventoryRepo) CreateSupplier(ctx context.Context, in *SupplierInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO Supplier (supplier_name, contact, phone, email, address)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Name, nullableText(in.Contact), nullableText(in.Phone), nullableText(in.Email), nullableText(in.Address))
	if err != nil {
		return 0, classifyConstraint(err)
	}
	return res.LastInsertId()
}
