package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemStore_InsertAndGet(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	version, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"title": "polish"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}

	doc, err := s.Get(ctx, "tasks", "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
	if doc.Fields["title"] != "polish" {
		t.Errorf("expected title 'polish', got %v", doc.Fields["title"])
	}
}

func TestMemStore_GetNotFound(t *testing.T) {
	s := NewMemStore()

	_, err := s.Get(context.Background(), "tasks", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_InsertExisting(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"a": "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"a": "2"})
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if conflict.CurrentVersion != 1 {
		t.Errorf("expected current version 1, got %d", conflict.CurrentVersion)
	}
}

func TestMemStore_UpdateBumpsVersion(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	version, err := s.ConditionalPut(ctx, "tasks", "t-1", 1, map[string]any{"status": "DONE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Fields["status"] != "DONE" {
		t.Errorf("expected status DONE, got %v", doc.Fields["status"])
	}
}

func TestMemStore_UpdateStaleVersion(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 1, map[string]any{"status": "DONE"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Пишем с устаревшей версией 1 — документ уже на версии 2.
	_, err := s.ConditionalPut(ctx, "tasks", "t-1", 1, map[string]any{"status": "CANCELLED"})
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}

	// Проигравшая запись не применилась.
	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Fields["status"] != "DONE" {
		t.Errorf("lost update: status = %v", doc.Fields["status"])
	}
	if doc.Version != 2 {
		t.Errorf("expected version 2, got %d", doc.Version)
	}
}

func TestMemStore_DeleteRequiresVersion(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.ConditionalDelete(ctx, "tasks", "t-1", 5); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}

	if err := s.ConditionalDelete(ctx, "tasks", "t-1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get(ctx, "tasks", "t-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"title": "original"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, _ := s.Get(ctx, "tasks", "t-1")
	doc.Fields["title"] = "mutated"

	fresh, _ := s.Get(ctx, "tasks", "t-1")
	if fresh.Fields["title"] != "original" {
		t.Error("mutating a returned document leaked into the store")
	}
}

func TestMemStore_Query(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	seed := []struct {
		id     string
		fields map[string]any
	}{
		{"t-1", map[string]any{"status": "PENDING", "scheduled_date": "2026-08-20T00:00:00Z", "field_name": "North greenhouse"}},
		{"t-2", map[string]any{"status": "DONE", "scheduled_date": "2026-08-21T00:00:00Z", "field_name": "South plot"}},
		{"t-3", map[string]any{"status": "PENDING", "scheduled_date": "2026-08-25T00:00:00Z", "field_name": "North field"}},
	}
	for _, d := range seed {
		if _, err := s.ConditionalPut(ctx, "tasks", d.id, 0, d.fields); err != nil {
			t.Fatalf("seed %s: %v", d.id, err)
		}
	}

	t.Run("eq filter", func(t *testing.T) {
		docs, err := s.Query(ctx, "tasks", Query{Eq: map[string]string{"status": "PENDING"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("expected 2 documents, got %d", len(docs))
		}
	})

	t.Run("substring filter is case-insensitive", func(t *testing.T) {
		docs, err := s.Query(ctx, "tasks", Query{Sub: map[string]string{"field_name": "north"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("expected 2 documents, got %d", len(docs))
		}
	})

	t.Run("range with sort and limit", func(t *testing.T) {
		docs, err := s.Query(ctx, "tasks", Query{
			Range:  &Range{Field: "scheduled_date", From: "2026-08-21T00:00:00Z"},
			SortBy: "scheduled_date",
			Limit:  1,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 document, got %d", len(docs))
		}
		if docs[0].ID != "t-2" {
			t.Errorf("expected t-2, got %s", docs[0].ID)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		docs, err := s.Query(ctx, "nothing", Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
	})
}

func TestMemStore_CancelledContext(t *testing.T) {
	s := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Get(ctx, "tasks", "t-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
