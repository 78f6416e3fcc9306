// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to configure
// MySQL or SQLite connections based on the application's configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver. MySQL connections get a pool
// and a dial timeout. SQLite connections are limited to one open connection,
// so an in-memory database is shared by every query.
//
// # Schema Inspection
//
// GetTableColumns reads the columns of a table on either driver, and
// MissingColumns reports the required ones that are absent. The schema
// command and persisted list children use it to detect an outdated table
// before reading rows.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "list_rows", "list", "position", "key")
package database
