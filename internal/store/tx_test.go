package store

import (
	"context"
	"errors"
	"testing"
)

func TestTx_CommitAppliesAllOps(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "old", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := NewTx(s).
		Update("tasks", "old", 1, map[string]any{"status": "DONE"}).
		Insert("tasks", "next", map[string]any{"status": "PENDING"}).
		Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	old, _ := s.Get(ctx, "tasks", "old")
	if old.Fields["status"] != "DONE" || old.Version != 2 {
		t.Errorf("old task: status=%v version=%d", old.Fields["status"], old.Version)
	}

	next, err := s.Get(ctx, "tasks", "next")
	if err != nil {
		t.Fatalf("successor not inserted: %v", err)
	}
	if next.Version != 1 {
		t.Errorf("expected successor at version 1, got %d", next.Version)
	}
}

func TestTx_AbortLeavesStateUntouched(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "old", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Вторая операция провалится: версия 99 не совпадёт.
	err := NewTx(s).
		Insert("tasks", "next", map[string]any{"status": "PENDING"}).
		Update("tasks", "old", 99, map[string]any{"status": "DONE"}).
		Commit(ctx)

	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *AbortedError, got %v", err)
	}
	if aborted.FailedIndex != 1 {
		t.Errorf("expected FailedIndex 1, got %d", aborted.FailedIndex)
	}
	if !errors.Is(aborted.Reason, ErrVersionConflict) {
		t.Errorf("expected version conflict reason, got %v", aborted.Reason)
	}

	// Первая операция транзакции не должна была примениться.
	if _, err := s.Get(ctx, "tasks", "next"); !errors.Is(err, ErrNotFound) {
		t.Errorf("insert leaked from aborted transaction: %v", err)
	}

	old, _ := s.Get(ctx, "tasks", "old")
	if old.Fields["status"] != "PENDING" || old.Version != 1 {
		t.Errorf("old task mutated by aborted transaction: status=%v version=%d", old.Fields["status"], old.Version)
	}
}

func TestTx_AbortOnDuplicateInsert(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "work_logs", "wl-1", 0, map[string]any{"a": "1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := NewTx(s).
		Insert("work_logs", "wl-1", map[string]any{"a": "2"}).
		Commit(ctx)

	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *AbortedError, got %v", err)
	}
	if aborted.FailedIndex != 0 {
		t.Errorf("expected FailedIndex 0, got %d", aborted.FailedIndex)
	}
}

func TestTx_AbortOnMissingDocument(t *testing.T) {
	s := NewMemStore()

	err := NewTx(s).
		Update("tasks", "missing", 1, map[string]any{"status": "DONE"}).
		Commit(context.Background())

	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *AbortedError, got %v", err)
	}
	if !errors.Is(aborted.Reason, ErrNotFound) {
		t.Errorf("expected ErrNotFound reason, got %v", aborted.Reason)
	}
}

// Две операции над одним документом: вторая видит версию после
// первой, как последовательные statement'ы одной транзакции Postgres.
func TestTx_SequentialOpsOnSameDocument(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := NewTx(s).
		Update("tasks", "t-1", 1, map[string]any{"status": "PROCESSING"}).
		Update("tasks", "t-1", 2, map[string]any{"status": "DONE"}).
		Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Version != 3 {
		t.Errorf("expected version 3, got %d", doc.Version)
	}
	if doc.Fields["status"] != "DONE" {
		t.Errorf("expected status DONE, got %v", doc.Fields["status"])
	}
}

// Вторая операция с той же ожидаемой версией, что и первая,
// конфликтует: первая уже подняла версию внутри транзакции.
func TestTx_StaleSecondOpOnSameDocument(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"status": "PENDING"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := NewTx(s).
		Update("tasks", "t-1", 1, map[string]any{"status": "PROCESSING"}).
		Update("tasks", "t-1", 1, map[string]any{"status": "DONE"}).
		Commit(ctx)

	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *AbortedError, got %v", err)
	}
	if aborted.FailedIndex != 1 {
		t.Errorf("expected FailedIndex 1, got %d", aborted.FailedIndex)
	}

	var conflict *ConflictError
	if !errors.As(aborted.Reason, &conflict) {
		t.Fatalf("expected *ConflictError reason, got %v", aborted.Reason)
	}
	if conflict.CurrentVersion != 2 {
		t.Errorf("conflict must report the in-transaction version 2, got %d", conflict.CurrentVersion)
	}

	// Abort не оставляет следов первой операции.
	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Version != 1 || doc.Fields["status"] != "PENDING" {
		t.Errorf("aborted transaction leaked: status=%v version=%d", doc.Fields["status"], doc.Version)
	}
}

func TestTx_InsertThenUpdateSameDocument(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	err := NewTx(s).
		Insert("tasks", "t-1", map[string]any{"status": "PENDING"}).
		Update("tasks", "t-1", 1, map[string]any{"status": "PROCESSING"}).
		Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Version != 2 {
		t.Errorf("expected version 2, got %d", doc.Version)
	}
	if doc.Fields["status"] != "PROCESSING" {
		t.Errorf("expected status PROCESSING, got %v", doc.Fields["status"])
	}
}

func TestTx_Delete(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := NewTx(s).Delete("tasks", "t-1", 1).Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get(ctx, "tasks", "t-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTx_EmptyCommitIsNoop(t *testing.T) {
	s := NewMemStore()

	tx := NewTx(s)
	if tx.Len() != 0 {
		t.Errorf("expected empty transaction, got %d ops", tx.Len())
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
