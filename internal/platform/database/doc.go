// Package database opens the application's *sql.DB for the configured driver
// and applies the embedded goose migrations for that driver's SQL dialect.
package database
