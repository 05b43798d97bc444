// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the record database for the configured driver. MySQL
// is used for shared deployments; SQLite (a file or ":memory:") for single-node
// setups and tests.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table in a driver-independent shape.
// The integrity check compares it against the fields of the record models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "notes")
package database
