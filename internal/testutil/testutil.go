// Package testutil provides the shared test database and seed helpers.
// Tests run against an in-memory SQLite database with the same table and
// column names the production MySQL schema uses; the repositories stick to
// portable SQL so both engines behave the same.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupTestDB creates an in-memory SQLite database with foreign keys
// enabled and the full schema created.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test DB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// The repositories assume one logical connection in tests; in-memory
	// SQLite gives every pooled connection its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	createTables(t, db)
	return db
}

func createTables(t *testing.T, db *sql.DB) {
	t.Helper()
	tables := []struct {
		name string
		ddl  string
	}{
		{"Customer", `CREATE TABLE IF NOT EXISTS Customer (
			customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT UNIQUE,
			address TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`},
		{"Vehicle_Model", `CREATE TABLE IF NOT EXISTS Vehicle_Model (
			model_id INTEGER PRIMARY KEY AUTOINCREMENT,
			brand TEXT NOT NULL,
			model_name TEXT NOT NULL,
			year INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`},
		{"Vehicle", `CREATE TABLE IF NOT EXISTS Vehicle (
			vehicle_id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			model_id INTEGER NOT NULL,
			registration_no TEXT NOT NULL UNIQUE,
			vin TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES Customer(customer_id) ON DELETE CASCADE,
			FOREIGN KEY (model_id) REFERENCES Vehicle_Model(model_id)
		)`},
		{"Employee", `CREATE TABLE IF NOT EXISTS Employee (
			employee_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			hire_date TEXT NOT NULL
		)`},
		{"Technician", `CREATE TABLE IF NOT EXISTS Technician (
			technician_id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL,
			specialization TEXT NOT NULL,
			certification_level TEXT,
			FOREIGN KEY (employee_id) REFERENCES Employee(employee_id)
		)`},
		{"Supplier", `CREATE TABLE IF NOT EXISTS Supplier (
			supplier_id INTEGER PRIMARY KEY AUTOINCREMENT,
			supplier_name TEXT NOT NULL,
			contact TEXT,
			phone TEXT,
			email TEXT,
			address TEXT
		)`},
		{"Parts", `CREATE TABLE IF NOT EXISTS Parts (
			part_id INTEGER PRIMARY KEY AUTOINCREMENT,
			part_name TEXT NOT NULL,
			supplier_id INTEGER,
			price NUMERIC NOT NULL DEFAULT 0,
			part_number TEXT NOT NULL UNIQUE,
			description TEXT,
			FOREIGN KEY (supplier_id) REFERENCES Supplier(supplier_id)
		)`},
		{"Inventory", `CREATE TABLE IF NOT EXISTS Inventory (
			inventory_id INTEGER PRIMARY KEY AUTOINCREMENT,
			part_id INTEGER NOT NULL UNIQUE,
			quantity INTEGER NOT NULL DEFAULT 0,
			reorder_level INTEGER NOT NULL DEFAULT 0,
			last_restocked TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (part_id) REFERENCES Parts(part_id) ON DELETE CASCADE
		)`},
		{"Service_Request", `CREATE TABLE IF NOT EXISTS Service_Request (
			service_request_id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			vehicle_id INTEGER NOT NULL,
			employee_id INTEGER,
			requested_date TEXT NOT NULL,
			service_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			service_price NUMERIC NOT NULL DEFAULT 0,
			extra_charges NUMERIC NOT NULL DEFAULT 0,
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES Customer(customer_id),
			FOREIGN KEY (vehicle_id) REFERENCES Vehicle(vehicle_id),
			FOREIGN KEY (employee_id) REFERENCES Employee(employee_id) ON DELETE SET NULL
		)`},
		{"Service_Parts_Used", `CREATE TABLE IF NOT EXISTS Service_Parts_Used (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_request_id INTEGER NOT NULL,
			part_id INTEGER NOT NULL,
			part_price NUMERIC NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (service_request_id) REFERENCES Service_Request(service_request_id) ON DELETE CASCADE,
			FOREIGN KEY (part_id) REFERENCES Parts(part_id)
		)`},
		{"Service_Record", `CREATE TABLE IF NOT EXISTS Service_Record (
			service_record_id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_request_id INTEGER NOT NULL,
			technician_id INTEGER NOT NULL,
			date_completed TEXT NOT NULL,
			notes TEXT,
			labor_hours REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (service_request_id) REFERENCES Service_Request(service_request_id) ON DELETE CASCADE,
			FOREIGN KEY (technician_id) REFERENCES Technician(technician_id)
		)`},
		{"Invoice", `CREATE TABLE IF NOT EXISTS Invoice (
			invoice_id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_request_id INTEGER NOT NULL UNIQUE,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			payment_pending INTEGER NOT NULL DEFAULT 1,
			date TEXT NOT NULL,
			due_date TEXT NOT NULL,
			FOREIGN KEY (service_request_id) REFERENCES Service_Request(service_request_id) ON DELETE CASCADE
		)`},
		{"Payment", `CREATE TABLE IF NOT EXISTS Payment (
			payment_id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER NOT NULL,
			method TEXT NOT NULL,
			amount_paid NUMERIC NOT NULL,
			date TEXT NOT NULL,
			transaction_reference TEXT,
			FOREIGN KEY (invoice_id) REFERENCES Invoice(invoice_id) ON DELETE CASCADE
		)`},
		{"Insurance", `CREATE TABLE IF NOT EXISTS Insurance (
			insurance_id INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			policy_number TEXT NOT NULL UNIQUE,
			expiry_date TEXT NOT NULL,
			coverage_amount NUMERIC NOT NULL DEFAULT 0,
			FOREIGN KEY (vehicle_id) REFERENCES Vehicle(vehicle_id) ON DELETE CASCADE
		)`},
		{"Feedback", `CREATE TABLE IF NOT EXISTS Feedback (
			feedback_id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			service_request_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			comments TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES Customer(customer_id),
			FOREIGN KEY (service_request_id) REFERENCES Service_Request(service_request_id) ON DELETE CASCADE
		)`},
		// No foreign keys: audit rows must survive the rows they describe.
		{"Service_History", `CREATE TABLE IF NOT EXISTS Service_History (
			history_id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_id INTEGER NOT NULL,
			customer_id INTEGER NOT NULL,
			vehicle_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			previous_status TEXT,
			new_status TEXT,
			timestamp TEXT NOT NULL
		)`},
	}
	for _, tbl := range tables {
		if _, err := db.Exec(tbl.ddl); err != nil {
			t.Fatalf("create table %s: %v", tbl.name, err)
		}
	}
}

const stamp = "2024-03-01 10:00:00"

// SeedCustomer inserts a customer with a unique email and returns its id.
func SeedCustomer(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Customer (name, phone, email, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, "555-0100", fmt.Sprintf("%s@example.com", name), "1 Main St", stamp, stamp)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedVehicle inserts a catalog model and a vehicle owned by the customer,
// returning the vehicle id. The registration and VIN derive from the ids
// already in the table so repeated calls stay unique.
func SeedVehicle(t *testing.T, db *sql.DB, customerID int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Vehicle_Model (brand, model_name, year, created_at)
		 VALUES (?, ?, ?, ?)`, "Toyota", "Corolla", 2020, stamp)
	if err != nil {
		t.Fatalf("seed vehicle model: %v", err)
	}
	modelID, _ := res.LastInsertId()

	res, err = db.Exec(`INSERT INTO Vehicle (customer_id, model_id, registration_no, vin, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		customerID, modelID,
		fmt.Sprintf("REG-%d-%d", customerID, modelID),
		fmt.Sprintf("VIN%014d", modelID), stamp)
	if err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedEmployee inserts an employee and returns its id.
func SeedEmployee(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Employee (name, role, phone, email, hire_date)
		 VALUES (?, ?, ?, ?, ?)`, name, "Mechanic", "555-0200", nil, "2023-01-15")
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedTechnician inserts an employee plus a technician row and returns the
// technician id.
func SeedTechnician(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	empID := SeedEmployee(t, db, name)
	res, err := db.Exec(`INSERT INTO Technician (employee_id, specialization, certification_level)
		 VALUES (?, ?, ?)`, empID, "Engine", "A")
	if err != nil {
		t.Fatalf("seed technician: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedPart inserts a catalog part with the given number and price text and
// returns its id.
func SeedPart(t *testing.T, db *sql.DB, partNumber, price string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Parts (part_name, supplier_id, price, part_number, description)
		 VALUES (?, ?, ?, ?, ?)`, "Part "+partNumber, nil, price, partNumber, nil)
	if err != nil {
		t.Fatalf("seed part: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedServiceRequest inserts a request in the given status with the given
// price fields (decimal strings) and returns its id.
func SeedServiceRequest(t *testing.T, db *sql.DB, customerID, vehicleID int64, status, price, extras string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Service_Request
		 (customer_id, vehicle_id, employee_id, requested_date, service_type, status,
		  service_price, extra_charges, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customerID, vehicleID, nil, "2024-03-01", "Oil Change", status, price, extras, nil, stamp, stamp)
	if err != nil {
		t.Fatalf("seed service request: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
