package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
)

var tickNow = time.Date(2026, 8, 25, 5, 0, 0, 0, time.UTC)

func newScheduler(t *testing.T) (*Scheduler, *repo.TaskRepo) {
	t.Helper()
	taskRepo := repo.NewTaskRepo(store.NewMemStore())
	s := New(Config{
		TaskRepo: taskRepo,
		Now:      func() time.Time { return tickNow },
	})
	return s, taskRepo
}

func addTask(t *testing.T, r *repo.TaskRepo, workType string, scheduled time.Time) *domain.TaskRecord {
	t.Helper()
	task := &domain.TaskRecord{
		ID:            uuid.New(),
		FieldID:       uuid.New(),
		WorkType:      workType,
		ScheduledDate: scheduled,
		Priority:      "medium",
		Status:        domain.TaskStatusPending,
		CreatedAt:     scheduled,
		UpdatedAt:     scheduled,
	}
	if err := r.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestScheduler_TickMovesOverdueTasks(t *testing.T) {
	s, taskRepo := newScheduler(t)
	ctx := context.Background()
	today := tickNow.Truncate(24 * time.Hour)

	overdue := addTask(t, taskRepo, domain.WorkTypeWeeding, today.Add(-3*24*time.Hour))
	current := addTask(t, taskRepo, domain.WorkTypeIrrigation, today)
	future := addTask(t, taskRepo, domain.WorkTypeHarvest, today.Add(24*time.Hour))

	if err := s.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := taskRepo.Get(ctx, overdue.ID)
	if !got.ScheduledDate.Equal(today) {
		t.Errorf("overdue task not moved: %v", got.ScheduledDate)
	}

	got, _ = taskRepo.Get(ctx, current.ID)
	if !got.ScheduledDate.Equal(today) || got.Version != 1 {
		t.Errorf("today's task must not be touched: %v v%d", got.ScheduledDate, got.Version)
	}

	got, _ = taskRepo.Get(ctx, future.ID)
	if !got.ScheduledDate.Equal(today.Add(24*time.Hour)) || got.Version != 1 {
		t.Errorf("future task must not be touched: %v v%d", got.ScheduledDate, got.Version)
	}
}

// Завершённую между выборкой и переносом задачу sweep не воскрешает.
func TestScheduler_TickSkipsFinishedTasks(t *testing.T) {
	s, taskRepo := newScheduler(t)
	ctx := context.Background()
	today := tickNow.Truncate(24 * time.Hour)

	task := addTask(t, taskRepo, domain.WorkTypeWeeding, today.Add(-24*time.Hour))
	if _, _, err := taskRepo.Complete(ctx, task.ID, "worker-1", tickNow); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := s.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := taskRepo.Get(ctx, task.ID)
	if got.Status != domain.TaskStatusDone {
		t.Errorf("finished task resurrected: %s", got.Status)
	}
	if !got.ScheduledDate.Equal(today.Add(-24 * time.Hour)) {
		t.Errorf("finished task rescheduled: %v", got.ScheduledDate)
	}
}

func TestScheduler_TickEmpty(t *testing.T) {
	s, _ := newScheduler(t)

	if err := s.Tick(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// Повторный тик идемпотентен: перенесённая задача уже не просрочена.
func TestScheduler_TickTwice(t *testing.T) {
	s, taskRepo := newScheduler(t)
	ctx := context.Background()
	today := tickNow.Truncate(24 * time.Hour)

	task := addTask(t, taskRepo, domain.WorkTypeWeeding, today.Add(-24*time.Hour))

	if err := s.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}

	got, _ := taskRepo.Get(ctx, task.ID)
	if got.Version != 2 {
		t.Errorf("second tick must not rewrite the task: version %d", got.Version)
	}
}

func TestValidateCronExpr(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 5 * * *", false},
		{"*/15 * * * *", false},
		{"0 0 1 * *", false},
		{"not a cron", true},
		{"* * * * * *", true}, // 6 полей
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateCronExpr(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCronExpr(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}
