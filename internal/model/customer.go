package model

// Customer is a person or business the shop services vehicles for.
type Customer struct {
	ID        int64   `json:"customer_id"` // Customer.customer_id
	Name      string  `json:"name"`        // Customer.name
	Phone     string  `json:"phone"`       // Customer.phone
	Email     *string `json:"email"`       // Customer.email (nullable, unique)
	Address   *string `json:"address"`     // Customer.address (nullable)
	CreatedAt string  `json:"created_at"`  // Customer.created_at
	UpdatedAt string  `json:"updated_at"`  // Customer.updated_at
}
