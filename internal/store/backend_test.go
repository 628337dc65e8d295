package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func newTestItem(name string) *model.Item {
	return &model.Item{
		ItemName:      name,
		Description:   "Left in library",
		Location:      "Main Hall",
		Name:          "Jo",
		Email:         "jo@x.com",
		StudentNumber: "63200001",
		Type:          model.ItemTypeFound,
		Image:         "/uploads/1-bag.jpg",
		CreatedAt:     time.Now().UTC(),
	}
}

// testBackend runs the behaviour every Backend must share.
func testBackend(t *testing.T, b Backend) {
	ctx := context.Background()

	t.Run("CreateAndRoundTrip", func(t *testing.T) {
		in := newTestItem("Blue Backpack")
		if err := b.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if in.ID == 0 {
			t.Fatal("expected id to be assigned")
		}

		got, err := b.Get(ctx, in.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ItemName != in.ItemName || got.Description != in.Description ||
			got.Location != in.Location || got.Name != in.Name || got.Email != in.Email ||
			got.StudentNumber != in.StudentNumber || got.Type != in.Type || got.Image != in.Image {
			t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, in)
		}
		if got.Returned {
			t.Error("expected returned=false for a new item")
		}
		if d := got.CreatedAt.Sub(in.CreatedAt); d.Abs() > time.Millisecond {
			t.Errorf("createdAt drifted by %s", d)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		for _, name := range []string{"Umbrella", "Keys", "Scarf"} {
			if err := b.Create(ctx, newTestItem(name)); err != nil {
				t.Fatalf("Create %s: %v", name, err)
			}
		}
		items, err := b.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(items) < 3 {
			t.Fatalf("expected at least 3 items, got %d", len(items))
		}
		if items[0].ItemName != "Scarf" {
			t.Errorf("expected newest item first, got %q", items[0].ItemName)
		}
		for i := 1; i < len(items); i++ {
			if items[i-1].ID <= items[i].ID {
				t.Errorf("items not sorted by id desc at %d: %d then %d", i, items[i-1].ID, items[i].ID)
			}
		}
	})

	t.Run("UpdateReplacesFields", func(t *testing.T) {
		it := newTestItem("Wallet")
		b.Create(ctx, it)

		err := b.Update(ctx, it.ID, model.ItemFields{
			ItemName:    "Brown Wallet",
			Description: "Leather",
			Location:    "Cafeteria",
			Name:        "Mia",
			Email:       "mia@x.com",
			Type:        model.ItemTypeLost,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, _ := b.Get(ctx, it.ID)
		if got.ItemName != "Brown Wallet" || got.StudentNumber != "" || got.Type != model.ItemTypeLost {
			t.Errorf("unexpected fields after update: %+v", got)
		}
		if got.Image != it.Image {
			t.Errorf("update must not touch image, got %q", got.Image)
		}
		if d := got.CreatedAt.Sub(it.CreatedAt); d.Abs() > time.Millisecond {
			t.Errorf("update must not touch createdAt")
		}
	})

	t.Run("MarkReturnedIdempotent", func(t *testing.T) {
		it := newTestItem("Phone")
		b.Create(ctx, it)

		for i := 0; i < 2; i++ {
			if err := b.MarkReturned(ctx, it.ID); err != nil {
				t.Fatalf("MarkReturned call %d: %v", i+1, err)
			}
			got, _ := b.Get(ctx, it.ID)
			if !got.Returned {
				t.Errorf("expected returned=true after call %d", i+1)
			}
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		before, _ := b.List(ctx)
		const missing = 987654321

		if _, err := b.Get(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get: expected ErrNotFound, got %v", err)
		}
		if err := b.Update(ctx, missing, model.ItemFields{ItemName: "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update: expected ErrNotFound, got %v", err)
		}
		if err := b.MarkReturned(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("MarkReturned: expected ErrNotFound, got %v", err)
		}
		if err := b.Delete(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete: expected ErrNotFound, got %v", err)
		}

		after, _ := b.List(ctx)
		if len(after) != len(before) {
			t.Errorf("store changed: %d items before, %d after", len(before), len(after))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		it := newTestItem("Gloves")
		b.Create(ctx, it)

		if err := b.Delete(ctx, it.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := b.Get(ctx, it.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := b.Delete(ctx, it.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := b.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
