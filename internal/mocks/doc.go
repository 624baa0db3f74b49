// Package mocks provides shared test doubles for the store, generation and
// auth interfaces.
//
// Store mocks use testify/mock; their WithTx methods return the receiver, so a
// service under test sees the same mock inside and outside a transaction.
// NewTransactionDB supplies a real, empty database for store.RunInTransaction
// to begin and commit against while the mocked stores do the work.
package mocks
