// Package service contains the application use cases for users, stories and
// playlists. It coordinates domain objects and the store interfaces defined
// in internal/store, and draws transaction boundaries with
// store.RunInTransaction when an operation reads before it writes.
//
// The review workflow lives in the review subpackage and authentication
// primitives in the auth subpackage.
//
// Services depend on store interfaces only, never on a concrete database.
// Errors from the store and domain layers are wrapped with %w so the API
// layer can map them with errors.Is.
package service
