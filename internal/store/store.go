package store

import (
	"context"
	"errors"

	"github.com/erazemk/najdeno/internal/model"
)

// ErrNotFound is returned when no item has the requested id.
var ErrNotFound = errors.New("item not found")

// Backend is a durable item store. Every implementation returns items in the
// same normalized form: UTC creation times and strict boolean flags.
type Backend interface {
	// Create stores a new item and sets its ID.
	Create(ctx context.Context, item *model.Item) error
	// List returns all items, newest (highest id) first.
	List(ctx context.Context) ([]model.Item, error)
	// Get returns one item.
	Get(ctx context.Context, id int64) (*model.Item, error)
	// Update replaces the item's mutable fields.
	Update(ctx context.Context, id int64, f model.ItemFields) error
	// MarkReturned sets the returned flag. Setting it again is not an error.
	MarkReturned(ctx context.Context, id int64) error
	// Delete removes the item.
	Delete(ctx context.Context, id int64) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health output.
	Name() string
}
