package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/store"
)

// TaskRepo — репозиторий запланированных работ.
//
// Задачи — самые «горячие» записи системы: их одновременно меняют
// работники (завершение, перенос) и scheduler (перенос просроченных).
// Поэтому каждое изменение — либо Mutator, либо Tx.
type TaskRepo struct {
	store   store.Store
	mutator *store.Mutator
	policy  store.RetryPolicy
}

// NewTaskRepo создаёт TaskRepo.
func NewTaskRepo(s store.Store) *TaskRepo {
	policy := store.DefaultRetryPolicy()
	return &TaskRepo{
		store:   s,
		mutator: store.NewMutator(s, store.WithRetryPolicy(policy)),
		policy:  policy,
	}
}

// Create создаёт новую задачу (версия 1).
func (r *TaskRepo) Create(ctx context.Context, task *domain.TaskRecord) error {
	fields, err := marshalFields(task)
	if err != nil {
		return err
	}

	version, err := r.store.ConditionalPut(ctx, CollectionTasks, task.ID.String(), 0, fields)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	task.Version = version
	return nil
}

// Get возвращает задачу по ID.
func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	doc, err := r.store.Get(ctx, CollectionTasks, id.String())
	if err != nil {
		return nil, err
	}
	return taskFromDoc(doc)
}

// TaskFilter — параметры выборки задач.
type TaskFilter struct {
	Status   domain.TaskStatus
	WorkType string
	FieldID  *uuid.UUID
	Day      *time.Time // задачи, запланированные на этот день (UTC)
	Before   *time.Time // задачи с плановой датой строго раньше
	Limit    int
}

// List возвращает задачи по фильтру, отсортированные по плановой дате.
func (r *TaskRepo) List(ctx context.Context, filter TaskFilter) ([]domain.TaskRecord, error) {
	q := store.Query{
		Eq:     map[string]string{},
		SortBy: "scheduled_date",
		Limit:  filter.Limit,
	}
	if filter.Status != "" {
		q.Eq["status"] = string(filter.Status)
	}
	if filter.WorkType != "" {
		q.Eq["work_type"] = filter.WorkType
	}
	if filter.FieldID != nil {
		q.Eq["field_id"] = filter.FieldID.String()
	}
	if filter.Day != nil {
		day := filter.Day.UTC().Truncate(24 * time.Hour)
		q.Range = &store.Range{
			Field: "scheduled_date",
			From:  day.Format(time.RFC3339),
			To:    day.Add(24*time.Hour - time.Second).Format(time.RFC3339),
		}
	}
	if filter.Before != nil {
		q.Range = &store.Range{
			Field: "scheduled_date",
			To:    filter.Before.UTC().Add(-time.Second).Format(time.RFC3339),
		}
	}

	docs, err := r.store.Query(ctx, CollectionTasks, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]domain.TaskRecord, 0, len(docs))
	for i := range docs {
		task, err := taskFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// Complete завершает задачу от имени by.
//
// Для повторяющихся работ закрытие текущей задачи и вставка
// следующей выполняются одной атомарной транзакцией: читатель
// никогда не увидит «работа закрыта, а следующая не запланирована».
// Конфликт версии самой задачи (конкурент успел её изменить)
// перечитывается и повторяется ограниченное число раз; конфликт
// вставки следующей задачи (дубликат) поднимается как abort.
//
// Возвращает завершённую задачу и созданную следующую (nil, если
// работа не повторяется). Повторный вызов для уже завершённой
// задачи возвращает ErrTaskFinished — мутация не применяется дважды.
func (r *TaskRepo) Complete(ctx context.Context, id uuid.UUID, by string, now time.Time) (*domain.TaskRecord, *domain.TaskRecord, error) {
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		task, err := r.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if task.Status.IsTerminal() {
			return task, nil, fmt.Errorf("complete task %s: %w", id, ErrTaskFinished)
		}

		expected := task.Version
		task.MarkDone(by, now)

		next := task.NextOccurrence(now)
		if next == nil {
			// Неповторяющаяся работа: одиночная условная запись.
			return r.completeSingle(ctx, id, by, now)
		}

		doneFields, err := marshalFields(task)
		if err != nil {
			return nil, nil, err
		}
		nextFields, err := marshalFields(next)
		if err != nil {
			return nil, nil, err
		}

		err = store.NewTx(r.store).
			Update(CollectionTasks, id.String(), expected, doneFields).
			Insert(CollectionTasks, next.ID.String(), nextFields).
			Commit(ctx)
		if err == nil {
			task.Version = expected + 1
			next.Version = 1
			return task, next, nil
		}

		var aborted *store.AbortedError
		if errors.As(err, &aborted) &&
			aborted.FailedIndex == 0 &&
			errors.Is(aborted.Reason, store.ErrVersionConflict) {
			// Задачу успел изменить конкурент — перечитываем и повторяем.
			continue
		}

		return nil, nil, err
	}

	return nil, nil, fmt.Errorf("complete task %s: %w", id, store.ErrContentionExceeded)
}

// completeSingle завершает неповторяющуюся задачу через Mutator.
func (r *TaskRepo) completeSingle(ctx context.Context, id uuid.UUID, by string, now time.Time) (*domain.TaskRecord, *domain.TaskRecord, error) {
	doc, err := r.mutator.Update(ctx, CollectionTasks, id.String(), func(fields map[string]any) (map[string]any, error) {
		var t domain.TaskRecord
		if err := unmarshalTaskFields(fields, &t); err != nil {
			return nil, err
		}
		if t.Status.IsTerminal() {
			return nil, ErrTaskFinished
		}
		t.MarkDone(by, now)
		return marshalFields(&t)
	})
	if err != nil {
		if errors.Is(err, ErrTaskFinished) {
			task, getErr := r.Get(ctx, id)
			if getErr != nil {
				return nil, nil, getErr
			}
			return task, nil, fmt.Errorf("complete task %s: %w", id, ErrTaskFinished)
		}
		return nil, nil, err
	}

	task, err := taskFromDoc(doc)
	if err != nil {
		return nil, nil, err
	}
	return task, nil, nil
}

// Postpone переносит плановую дату задачи.
func (r *TaskRepo) Postpone(ctx context.Context, id uuid.UUID, until, now time.Time) (*domain.TaskRecord, error) {
	doc, err := r.mutator.Update(ctx, CollectionTasks, id.String(), func(fields map[string]any) (map[string]any, error) {
		var t domain.TaskRecord
		if err := unmarshalTaskFields(fields, &t); err != nil {
			return nil, err
		}
		if t.Status.IsTerminal() {
			return nil, ErrTaskFinished
		}
		t.Postpone(until.UTC(), now)
		return marshalFields(&t)
	})
	if err != nil {
		return nil, err
	}
	return taskFromDoc(doc)
}

// CarryForward переносит просроченную PENDING-задачу на today.
// Если задачу уже завершили или перенесли — ничего не меняет.
func (r *TaskRepo) CarryForward(ctx context.Context, id uuid.UUID, today, now time.Time) (bool, error) {
	moved := false
	_, err := r.mutator.Update(ctx, CollectionTasks, id.String(), func(fields map[string]any) (map[string]any, error) {
		moved = false
		var t domain.TaskRecord
		if err := unmarshalTaskFields(fields, &t); err != nil {
			return nil, err
		}
		if t.Status != domain.TaskStatusPending {
			return nil, store.ErrNoChange
		}
		if !t.ScheduledDate.Before(today) {
			return nil, store.ErrNoChange
		}
		t.Postpone(today, now)
		moved = true
		return marshalFields(&t)
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// --- Helpers ---

// taskFromDoc восстанавливает TaskRecord из документа.
func taskFromDoc(doc *store.Document) (*domain.TaskRecord, error) {
	var task domain.TaskRecord
	if err := unmarshalDoc(doc, &task); err != nil {
		return nil, err
	}
	task.Version = doc.Version
	return &task, nil
}

// unmarshalTaskFields восстанавливает TaskRecord из полей документа.
func unmarshalTaskFields(fields map[string]any, out *domain.TaskRecord) error {
	doc := &store.Document{Collection: CollectionTasks, Fields: fields}
	return unmarshalDoc(doc, out)
}
