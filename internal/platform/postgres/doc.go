// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store, using the pgx driver through
// database/sql. Story reads inside a transaction can take a row lock
// (SELECT ... FOR UPDATE) so that concurrent reviews of the same story
// are serialized.
package postgres
