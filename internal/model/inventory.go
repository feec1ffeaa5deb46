package model

import "github.com/shopspring/decimal"

// Part is a catalog part that can be consumed by service requests and
// stocked in inventory.
type Part struct {
	ID          int64           `json:"part_id"`     // Parts.part_id
	Name        string          `json:"part_name"`   // Parts.part_name
	SupplierID  *int64          `json:"supplier_id"` // Parts.supplier_id (nullable)
	Price       decimal.Decimal `json:"price"`       // Parts.price
	PartNumber  string          `json:"part_number"` // Parts.part_number (unique)
	Description *string         `json:"description"` // Parts.description (nullable)
}

// Supplier provides parts.
type Supplier struct {
	ID      int64   `json:"supplier_id"`   // Supplier.supplier_id
	Name    string  `json:"supplier_name"` // Supplier.supplier_name
	Contact *string `json:"contact"`       // Supplier.contact (nullable)
	Phone   *string `json:"phone"`         // Supplier.phone (nullable)
	Email   *string `json:"email"`         // Supplier.email (nullable)
	Address *string `json:"address"`       // Supplier.address (nullable)
}

// InventoryLevel tracks stock for a part, with a reorder threshold used by
// the dashboard's low-stock count.
type InventoryLevel struct {
	ID            int64  `json:"inventory_id"`   // Inventory.inventory_id
	PartID        int64  `json:"part_id"`        // Inventory.part_id
	Quantity      int    `json:"quantity"`       // Inventory.quantity
	ReorderLevel  int    `json:"reorder_level"`  // Inventory.reorder_level
	LastRestocked string `json:"last_restocked"` // Inventory.last_restocked
}
