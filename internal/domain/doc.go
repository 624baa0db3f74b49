// Package domain contains the core business entities of the mnemonic learning
// service: stories, the term/character associations they own, the per-association
// memory state used for spaced repetition, users and playlists.
//
// The types here are plain values. They know how to validate themselves but
// carry no persistence or transport concerns.
package domain
