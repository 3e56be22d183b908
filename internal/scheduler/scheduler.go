package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
)

// Scheduler переносит просроченные задачи на текущий день.
type Scheduler struct {
	taskRepo  *repo.TaskRepo
	logger    *slog.Logger
	batchSize int
	now       func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	TaskRepo  *repo.TaskRepo
	Logger    *slog.Logger
	BatchSize int              // количество задач за один тик (default: 100)
	Now       func() time.Time // часы (nil — time.Now)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		taskRepo:  cfg.TaskRepo,
		logger:    logger,
		batchSize: batchSize,
		now:       now,
	}
}

// Tick выполняет один проход по просроченным задачам.
//
//  1. Находит PENDING-задачи с плановой датой раньше сегодняшней
//  2. Каждую переносит условной записью на сегодня
//
// Перенос каждой задачи конкурирует с работниками: пока sweep идёт,
// задачу могут завершить. CarryForward перечитывает запись при
// конфликте и молча отступает, если задача уже не PENDING —
// завершённую работу sweep не воскрешает.
//
// Ошибка одной задачи не блокирует обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	today := now.UTC().Truncate(24 * time.Hour)

	overdue, err := s.taskRepo.List(ctx, repo.TaskFilter{
		Status: domain.TaskStatusPending,
		Before: &today,
		Limit:  s.batchSize,
	})
	if err != nil {
		return fmt.Errorf("list overdue tasks: %w", err)
	}

	if len(overdue) == 0 {
		return nil
	}

	s.logger.Debug("found overdue tasks", "count", len(overdue))

	var moved, skipped int
	for i := range overdue {
		task := &overdue[i]

		ok, err := s.taskRepo.CarryForward(ctx, task.ID, today, now)
		if err != nil {
			if errors.Is(err, store.ErrContentionExceeded) {
				// Задачу рвут на части прямо сейчас — следующий
				// тик доберёт её, если она останется просроченной
				s.logger.Warn("carry-forward contention, will retry next tick",
					"task_id", task.ID,
				)
				continue
			}
			s.logger.Error("failed to carry forward task",
				"task_id", task.ID,
				"work_type", task.WorkType,
				"error", err,
			)
			continue
		}

		if ok {
			moved++
		} else {
			skipped++
		}
	}

	s.logger.Info("scheduler tick completed",
		"overdue", len(overdue),
		"moved", moved,
		"skipped", skipped,
	)

	return nil
}
