package model

import "github.com/shopspring/decimal"

// Insurance is a policy covering a vehicle.
type Insurance struct {
	ID             int64           `json:"insurance_id"`    // Insurance.insurance_id
	VehicleID      int64           `json:"vehicle_id"`      // Insurance.vehicle_id
	Provider       string          `json:"provider"`        // Insurance.provider
	PolicyNumber   string          `json:"policy_number"`   // Insurance.policy_number (unique)
	ExpiryDate     string          `json:"expiry_date"`     // Insurance.expiry_date
	CoverageAmount decimal.Decimal `json:"coverage_amount"` // Insurance.coverage_amount
}
