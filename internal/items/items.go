// Package items implements the lost-and-found item repository on top of a
// storage backend.
package items

import (
	"context"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ValidationError reports a missing or malformed field. Message is safe to
// show to the reporter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Repository validates reports and stores them in a backend chosen at startup.
type Repository struct {
	backend      store.Backend
	requireImage bool
	now          func() time.Time
}

// NewRepository creates a repository. With requireImage set, Create rejects
// reports without a photo.
func NewRepository(backend store.Backend, requireImage bool) *Repository {
	return &Repository{backend: backend, requireImage: requireImage, now: time.Now}
}

// RequireImage reports whether a photo is mandatory.
func (r *Repository) RequireImage() bool { return r.requireImage }

// Backend returns the name of the storage backend.
func (r *Repository) Backend() string { return r.backend.Name() }

// Ping checks the storage backend.
func (r *Repository) Ping(ctx context.Context) error { return r.backend.Ping(ctx) }

// Validate checks f. hasImage tells whether a photo accompanies the report;
// it is only checked when photos are mandatory. Submitted values are stored as
// given; only an empty type is defaulted to found.
func (r *Repository) Validate(f *model.ItemFields, hasImage bool) error {
	if r.requireImage && !hasImage {
		return invalid("Image is required.")
	}
	return validateFields(f)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validateFields(f *model.ItemFields) error {
	switch {
	case blank(f.ItemName):
		return invalid("Item name is required.")
	case blank(f.Description):
		return invalid("Description is required.")
	case blank(f.Location):
		return invalid("Location is required.")
	case blank(f.Name):
		return invalid("Name is required.")
	case !strings.Contains(f.Email, "@"):
		return invalid("Valid email is required.")
	}

	if f.Type == "" {
		f.Type = model.ItemTypeFound
	}
	if !model.ValidItemType(f.Type) {
		return invalid("Type must be found or lost.")
	}
	return nil
}

// Create validates f and stores a new item with the given image locator.
func (r *Repository) Create(ctx context.Context, f model.ItemFields, image string) (*model.Item, error) {
	if err := r.Validate(&f, image != ""); err != nil {
		return nil, err
	}

	item := &model.Item{
		Image:     image,
		CreatedAt: r.now().UTC(),
	}
	item.Apply(f)

	if err := r.backend.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns all items, newest first.
func (r *Repository) List(ctx context.Context) ([]model.Item, error) {
	return r.backend.List(ctx)
}

// Get returns one item or store.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*model.Item, error) {
	return r.backend.Get(ctx, id)
}

// Update replaces the item's reporter-supplied fields and returns the result.
func (r *Repository) Update(ctx context.Context, id int64, f model.ItemFields) (*model.Item, error) {
	if err := validateFields(&f); err != nil {
		return nil, err
	}
	if err := r.backend.Update(ctx, id, f); err != nil {
		return nil, err
	}
	return r.backend.Get(ctx, id)
}

// MarkReturned flags the item as returned to its owner.
func (r *Repository) MarkReturned(ctx context.Context, id int64) (*model.Item, error) {
	if err := r.backend.MarkReturned(ctx, id); err != nil {
		return nil, err
	}
	return r.backend.Get(ctx, id)
}

// Delete removes the item and returns it so the caller can release its image.
func (r *Repository) Delete(ctx context.Context, id int64) (*model.Item, error) {
	item, err := r.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.backend.Delete(ctx, id); err != nil {
		return nil, err
	}
	return item, nil
}
