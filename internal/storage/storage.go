// Package storage defines the persistence interface for the interest vector.
package storage

import (
	"context"

	"github.com/hyperjump/konomi/internal/interest"
)

// Storage persists the cumulative interest vector. Implementations must make
// UpdateVector all-or-nothing: a failed or cancelled update leaves the
// previously committed vector readable.
type Storage interface {
	// ReadVector returns the persisted vector. A fresh database reads as
	// the all-zero vector, not an error.
	ReadVector(ctx context.Context) (interest.Vector, error)

	// UpdateVector applies apply to the current vector and persists the
	// result in a single transaction, returning the committed vector.
	UpdateVector(ctx context.Context, apply func(interest.Vector) interest.Vector) (interest.Vector, error)

	Close() error
}
