// Package storage is the persistence gateway backed by Postgres via sqlx.
// It holds no business logic; services decide what to store and when.
package storage

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store wraps the shared database handle.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store on top of an initialized connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}
