// Package sqlite implements the store interfaces on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver. It is the default
// backend for single-node deployments and local development.
package sqlite
