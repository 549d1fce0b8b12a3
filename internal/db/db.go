// Package db defines the persistence interfaces the federation engine
// consumes. The SQLite implementation lives in db/impl; tests use the
// generated mock in internal/mocks.
package db

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// DB aggregates every persistence capability the engine needs.
type DB interface {
	Actors
	Followers
	Blocklist
	RemoteUsers
	Content
	Activities
}
