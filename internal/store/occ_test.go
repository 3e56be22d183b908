package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fastPolicy — политика без задержек, чтобы тесты не спали.
func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: 0, MaxDelay: 0}
}

func TestMutator_Update(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"count": float64(0)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := NewMutator(s, WithRetryPolicy(fastPolicy(5)))
	doc, err := m.Update(ctx, "tasks", "t-1", func(fields map[string]any) (map[string]any, error) {
		fields["count"] = fields["count"].(float64) + 1
		return fields, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("expected version 2, got %d", doc.Version)
	}
	if doc.Fields["count"] != float64(1) {
		t.Errorf("expected count 1, got %v", doc.Fields["count"])
	}
}

// Классическая проверка отсутствия потерянных обновлений: N горутин
// инкрементируют счётчик через Mutator, итог должен быть ровно N,
// а версия документа — 1 + N.
func TestMutator_ConcurrentIncrements(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "counter", 0, map[string]any{"count": float64(0)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const writers = 20
	m := NewMutator(s, WithRetryPolicy(RetryPolicy{
		MaxAttempts: writers + 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	}))

	var wg sync.WaitGroup
	errCh := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, "tasks", "counter", func(fields map[string]any) (map[string]any, error) {
				fields["count"] = fields["count"].(float64) + 1
				return fields, nil
			})
			if err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("writer failed: %v", err)
	}

	doc, err := s.Get(ctx, "tasks", "counter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Fields["count"] != float64(writers) {
		t.Errorf("lost updates: count = %v, want %d", doc.Fields["count"], writers)
	}
	if doc.Version != int64(writers)+1 {
		t.Errorf("expected version %d, got %d", writers+1, doc.Version)
	}
}

// conflictStore всегда отвечает конфликтом на запись.
type conflictStore struct {
	*MemStore
	puts int
}

func (s *conflictStore) ConditionalPut(ctx context.Context, collection, id string, expectedVersion int64, fields map[string]any) (int64, error) {
	s.puts++
	return 0, &ConflictError{Collection: collection, ID: id, Expected: expectedVersion, CurrentVersion: expectedVersion + 1}
}

func TestMutator_ContentionExceeded(t *testing.T) {
	inner := NewMemStore()
	ctx := context.Background()
	if _, err := inner.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"a": "1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := &conflictStore{MemStore: inner}
	m := NewMutator(s, WithRetryPolicy(fastPolicy(3)))

	_, err := m.Update(ctx, "tasks", "t-1", func(fields map[string]any) (map[string]any, error) {
		return fields, nil
	})
	if !errors.Is(err, ErrContentionExceeded) {
		t.Fatalf("expected ErrContentionExceeded, got %v", err)
	}
	if s.puts != 3 {
		t.Errorf("expected 3 put attempts, got %d", s.puts)
	}
}

func TestMutator_NoChange(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"status": "DONE"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := NewMutator(s, WithRetryPolicy(fastPolicy(5)))
	doc, err := m.Update(ctx, "tasks", "t-1", func(fields map[string]any) (map[string]any, error) {
		if fields["status"] == "DONE" {
			return nil, ErrNoChange
		}
		fields["status"] = "DONE"
		return fields, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("ErrNoChange must not write: version = %d", doc.Version)
	}
}

func TestMutator_TransformError(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.ConditionalPut(ctx, "tasks", "t-1", 0, map[string]any{"a": "1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	wantErr := fmt.Errorf("bad state")
	m := NewMutator(s, WithRetryPolicy(fastPolicy(5)))
	_, err := m.Update(ctx, "tasks", "t-1", func(fields map[string]any) (map[string]any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected transform error to surface, got %v", err)
	}

	// Ошибка transform не должна ничего записать.
	doc, _ := s.Get(ctx, "tasks", "t-1")
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
}

func TestMutator_NotFound(t *testing.T) {
	s := NewMemStore()
	m := NewMutator(s, WithRetryPolicy(fastPolicy(5)))

	_, err := m.Update(context.Background(), "tasks", "missing", func(fields map[string]any) (map[string]any, error) {
		return fields, nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMutator_ContextCancelBetweenAttempts(t *testing.T) {
	inner := NewMemStore()
	bg := context.Background()
	if _, err := inner.ConditionalPut(bg, "tasks", "t-1", 0, map[string]any{"a": "1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := &conflictStore{MemStore: inner}
	m := NewMutator(s, WithRetryPolicy(RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    time.Second,
	}))

	ctx, cancel := context.WithCancel(bg)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := m.Update(ctx, "tasks", "t-1", func(fields map[string]any) (map[string]any, error) {
		return fields, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{BaseDelay: 25 * time.Millisecond, MaxDelay: 100 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 25 * time.Millisecond},
		{2, 50 * time.Millisecond},
		{3, 100 * time.Millisecond},
		{4, 100 * time.Millisecond}, // упирается в потолок
	}

	for _, tt := range tests {
		if got := p.delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
