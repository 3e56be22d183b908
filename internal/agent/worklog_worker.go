package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
)

// worklogNamespace — пространство имён для детерминированных ID
// записей журнала. Одна и та же пара (сообщение, источник) всегда
// даёт один ID, поэтому повторная обработка сообщения упирается
// в конфликт вставки, а не создаёт дубликат.
var worklogNamespace = uuid.MustParse("6f1c8f2a-0c4e-4ab8-9a4a-2f12c7a4d9e1")

// WorkLogEntryWorker записывает выполненную работу в журнал.
//
// Два источника записей: прямой отчёт пользователя («watered
// greenhouse 2») и завершение задачи воркером task_manager —
// в этом случае запись строится из завершённой задачи.
type WorkLogEntryWorker struct {
	logs   *repo.WorkLogRepo
	fields *repo.FieldRepo
	now    func() time.Time
}

// NewWorkLogEntryWorker создаёт WorkLogEntryWorker.
// now == nil означает time.Now.
func NewWorkLogEntryWorker(logs *repo.WorkLogRepo, fields *repo.FieldRepo, now func() time.Time) *WorkLogEntryWorker {
	if now == nil {
		now = time.Now
	}
	return &WorkLogEntryWorker{logs: logs, fields: fields, now: now}
}

// Name возвращает имя воркера.
func (w *WorkLogEntryWorker) Name() string { return WorkerWorkLogEntry }

// Execute создаёт запись журнала из завершённой задачи или из
// текста отчёта.
func (w *WorkLogEntryWorker) Execute(ctx context.Context, st *State) (*Delta, error) {
	if v, ok := st.Scratch(ScratchCompletedTask); ok {
		if task, ok := v.(*domain.TaskRecord); ok {
			return w.fromTask(ctx, st, task)
		}
	}
	return w.fromReport(ctx, st)
}

// fromTask строит запись журнала по завершённой задаче.
// Ответ пользователю уже подготовил task_manager, поэтому дельта
// только дописывает журнал и помечает это в scratchpad.
func (w *WorkLogEntryWorker) fromTask(ctx context.Context, st *State, task *domain.TaskRecord) (*Delta, error) {
	entry := &domain.WorkLog{
		ID:            uuid.NewSHA1(worklogNamespace, []byte(st.MessageID()+":task:"+task.ID.String())),
		UserID:        st.SenderID(),
		FieldID:       task.FieldID,
		WorkType:      task.WorkType,
		WorkDate:      w.now().UTC(),
		Notes:         task.Description,
		SourceMessage: st.UserText(),
		CreatedAt:     w.now().UTC(),
	}
	taskID := task.ID
	entry.TaskID = &taskID

	if err := w.create(ctx, entry); err != nil {
		return nil, err
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("work log %s recorded for task %s", entry.ID, task.ID)).
		Set(ScratchWorkLogID, entry.ID.String()), nil
}

// fromReport строит запись журнала из текста отчёта пользователя.
func (w *WorkLogEntryWorker) fromReport(ctx context.Context, st *State) (*Delta, error) {
	text := strings.ToLower(st.UserText())

	workType, ok := detectWorkType(text)
	if !ok {
		return nil, invalidInput(w.Name(), "work type not recognized in report")
	}

	entry := &domain.WorkLog{
		ID:            uuid.NewSHA1(worklogNamespace, []byte(st.MessageID()+":report")),
		UserID:        st.SenderID(),
		WorkType:      workType,
		WorkDate:      w.now().UTC(),
		SourceMessage: st.UserText(),
		CreatedAt:     w.now().UTC(),
	}

	if fields, err := w.fields.List(ctx); err == nil {
		if field, ok := matchFieldName(text, fields); ok {
			entry.FieldID = field.ID
			entry.FieldName = field.Name
		}
	}
	if qty, unit, ok := detectQuantity(text); ok {
		entry.Quantity = qty
		entry.Unit = unit
	}

	if err := w.create(ctx, entry); err != nil {
		return nil, err
	}

	reply := fmt.Sprintf("Recorded: %s", entry.WorkType)
	if entry.FieldName != "" {
		reply += " at " + entry.FieldName
	}
	if entry.Quantity > 0 {
		reply += fmt.Sprintf(" (%.1f %s)", entry.Quantity, entry.Unit)
	}
	reply += "."

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("work log %s recorded", entry.ID)).
		Set(ScratchWorkLogID, entry.ID.String()).
		SetReply(reply, map[string]any{"work_log": entry}), nil
}

// create вставляет запись. Конфликт версии означает, что это же
// сообщение уже записывалось (ID детерминированный) — не ошибка.
func (w *WorkLogEntryWorker) create(ctx context.Context, entry *domain.WorkLog) error {
	err := w.logs.Create(ctx, entry)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil
	}
	if err != nil {
		return classifyFailure(w.Name(), err)
	}
	return nil
}
