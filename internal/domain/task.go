package domain

import (
	"time"

	"github.com/google/uuid"
)

// Интервалы повторения по видам работ.
//
// Выполнение повторяющейся работы автоматически планирует следующую:
// закрытие текущей задачи и вставка следующей выполняются одной
// транзакцией (см. repo.TaskRepo.Complete).
var recurrenceIntervals = map[string]time.Duration{
	WorkTypePestControl: 7 * 24 * time.Hour,
	WorkTypeIrrigation:  2 * 24 * time.Hour,
	WorkTypeFertilizing: 14 * 24 * time.Hour,
	WorkTypeHarvest:     3 * 24 * time.Hour,
}

// Виды работ.
const (
	WorkTypePestControl = "pest_control"
	WorkTypeIrrigation  = "irrigation"
	WorkTypeFertilizing = "fertilizing"
	WorkTypeHarvest     = "harvest"
	WorkTypeWeeding     = "weeding"
	WorkTypePlanting    = "planting"
)

// RecurrenceInterval возвращает интервал повторения для вида работы.
// Второе значение false — работа не повторяется.
func RecurrenceInterval(workType string) (time.Duration, bool) {
	d, ok := recurrenceIntervals[workType]
	return d, ok
}

// TaskRecord — запланированная работа на участке.
//
// Общая запись: её могут одновременно менять несколько работников
// (один завершает, другой переносит). Все изменения идут через
// условную запись по версии.
type TaskRecord struct {
	// ID — уникальный идентификатор задачи.
	ID uuid.UUID `json:"id"`

	// FieldID — участок, на котором запланирована работа.
	FieldID uuid.UUID `json:"field_id"`

	// WorkType — вид работы: pest_control, irrigation, ...
	WorkType string `json:"work_type"`

	// Description — описание работы.
	Description string `json:"description"`

	// ScheduledDate — плановая дата выполнения.
	ScheduledDate time.Time `json:"scheduled_date"`

	// Priority — приоритет: low, medium, high.
	Priority string `json:"priority"`

	// Status — текущий статус.
	Status TaskStatus `json:"status"`

	// AssignedTo — исполнитель (опционально).
	AssignedTo string `json:"assigned_to,omitempty"`

	// CompletedBy — кто отчитался о выполнении.
	CompletedBy string `json:"completed_by,omitempty"`

	// CompletedAt — время завершения.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// PredecessorID — задача, из которой эта была создана
	// автоматическим планированием следующего цикла.
	PredecessorID *uuid.UUID `json:"predecessor_id,omitempty"`

	// Version — версия записи для optimistic concurrency control.
	// Новая запись создаётся с версией 1; каждая успешная запись
	// увеличивает версию ровно на единицу.
	Version int64 `json:"version"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRecurring возвращает true, если вид работы повторяется по циклу.
func (t *TaskRecord) IsRecurring() bool {
	_, ok := RecurrenceInterval(t.WorkType)
	return ok
}

// NextOccurrence строит следующую задачу цикла от момента завершения.
// Возвращает nil, если работа не повторяется.
func (t *TaskRecord) NextOccurrence(completedAt time.Time) *TaskRecord {
	interval, ok := RecurrenceInterval(t.WorkType)
	if !ok {
		return nil
	}

	predID := t.ID
	return &TaskRecord{
		ID:            uuid.New(),
		FieldID:       t.FieldID,
		WorkType:      t.WorkType,
		Description:   t.Description,
		ScheduledDate: completedAt.Add(interval).Truncate(24 * time.Hour),
		Priority:      t.Priority,
		Status:        TaskStatusPending,
		AssignedTo:    t.AssignedTo,
		PredecessorID: &predID,
		CreatedAt:     completedAt,
		UpdatedAt:     completedAt,
	}
}

// MarkDone переводит задачу в статус DONE.
func (t *TaskRecord) MarkDone(by string, at time.Time) {
	t.Status = TaskStatusDone
	t.CompletedBy = by
	t.CompletedAt = &at
	t.UpdatedAt = at
}

// Postpone переносит плановую дату.
func (t *TaskRecord) Postpone(until time.Time, at time.Time) {
	t.ScheduledDate = until
	t.UpdatedAt = at
}
