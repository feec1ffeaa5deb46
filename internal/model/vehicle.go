package model

// Vehicle belongs to a customer and references a catalog model.
type Vehicle struct {
	ID             int64  `json:"vehicle_id"`      // Vehicle.vehicle_id
	CustomerID     int64  `json:"customer_id"`     // Vehicle.customer_id
	ModelID        int64  `json:"model_id"`        // Vehicle.model_id
	RegistrationNo string `json:"registration_no"` // Vehicle.registration_no (unique)
	VIN            string `json:"vin"`             // Vehicle.vin (unique, 17 chars)
	CreatedAt      string `json:"created_at"`      // Vehicle.created_at
}

// VehicleModel is a catalog entry (brand, model name, year) referenced by
// vehicles.
type VehicleModel struct {
	ID        int64  `json:"model_id"`   // Vehicle_Model.model_id
	Brand     string `json:"brand"`      // Vehicle_Model.brand
	ModelName string `json:"model_name"` // Vehicle_Model.model_name
	Year      int    `json:"year"`       // Vehicle_Model.year
	CreatedAt string `json:"created_at"` // Vehicle_Model.created_at
}
