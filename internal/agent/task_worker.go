package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
)

// TaskManagerWorker работает с задачами: показывает план,
// завершает и переносит.
//
// Завершение — самая конфликтная операция системы: ту же задачу
// может одновременно закрывать другой работник или переносить
// scheduler. Всю борьбу за версию берёт на себя repo.TaskRepo;
// воркер лишь переводит её исход в ответ пользователю.
type TaskManagerWorker struct {
	tasks  *repo.TaskRepo
	fields *repo.FieldRepo
	now    func() time.Time
}

// NewTaskManagerWorker создаёт TaskManagerWorker.
// now == nil означает time.Now.
func NewTaskManagerWorker(tasks *repo.TaskRepo, fields *repo.FieldRepo, now func() time.Time) *TaskManagerWorker {
	if now == nil {
		now = time.Now
	}
	return &TaskManagerWorker{tasks: tasks, fields: fields, now: now}
}

// Name возвращает имя воркера.
func (w *TaskManagerWorker) Name() string { return WorkerTaskManager }

// Execute определяет действие по тексту сообщения.
func (w *TaskManagerWorker) Execute(ctx context.Context, st *State) (*Delta, error) {
	text := strings.ToLower(st.UserText())

	switch {
	case containsAny(text, completionWords):
		return w.complete(ctx, st, text)
	case containsAny(text, postponeWords):
		return w.postpone(ctx, text)
	default:
		return w.list(ctx)
	}
}

// complete завершает подходящую задачу и, для повторяющихся работ,
// сообщает о запланированной следующей.
func (w *TaskManagerWorker) complete(ctx context.Context, st *State, text string) (*Delta, error) {
	task, err := w.findTarget(ctx, text)
	if err != nil {
		// PENDING-кандидата нет. Прежде чем жаловаться, проверяем,
		// не отчёт ли это о работе, которую уже закрыли: повторное
		// «закончил прополку» заслуживает спокойного подтверждения,
		// а не ошибки.
		if errors.Is(err, repo.ErrNoMatchingTask) {
			if delta, ok := w.alreadyDone(ctx, text); ok {
				return delta, nil
			}
		}
		return nil, err
	}

	now := w.now()
	done, next, err := w.tasks.Complete(ctx, task.ID, st.SenderID(), now)
	switch {
	case errors.Is(err, repo.ErrTaskFinished):
		// Повторный отчёт о той же работе: мутация не применяется
		// дважды, пользователю — спокойное подтверждение.
		return NewDelta().
			Say(w.Name(), fmt.Sprintf("task %s already finished", task.ID)).
			SetReply(fmt.Sprintf("%s is already marked done.", taskTitle(done)), nil), nil
	case err != nil:
		return nil, classifyFailure(w.Name(), err)
	}

	reply := fmt.Sprintf("Marked %s as done.", taskTitle(done))
	payload := map[string]any{"task": done}
	if next != nil {
		reply += fmt.Sprintf(" Next %s scheduled for %s.",
			done.WorkType, next.ScheduledDate.Format("2006-01-02"))
		payload["next_task"] = next
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("task %s completed", done.ID)).
		Set(ScratchCompletedTask, done).
		SetReply(reply, payload), nil
}

// postpone переносит подходящую задачу.
func (w *TaskManagerWorker) postpone(ctx context.Context, text string) (*Delta, error) {
	task, err := w.findTarget(ctx, text)
	if err != nil {
		return nil, err
	}

	now := w.now()
	until := detectPostponeTarget(text, now)

	moved, err := w.tasks.Postpone(ctx, task.ID, until, now)
	if errors.Is(err, repo.ErrTaskFinished) {
		return NewDelta().
			Say(w.Name(), fmt.Sprintf("task %s already finished", task.ID)).
			SetReply(fmt.Sprintf("%s is already done, nothing to postpone.", taskTitle(task)), nil), nil
	}
	if err != nil {
		return nil, classifyFailure(w.Name(), err)
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("task %s postponed to %s", moved.ID, until.Format("2006-01-02"))).
		SetReply(fmt.Sprintf("Postponed %s to %s.", taskTitle(moved), until.Format("2006-01-02")),
			map[string]any{"task": moved}), nil
}

// list отвечает планом на сегодня; если на сегодня пусто —
// ближайшими задачами.
func (w *TaskManagerWorker) list(ctx context.Context) (*Delta, error) {
	today := w.now().UTC().Truncate(24 * time.Hour)
	tasks, err := w.tasks.List(ctx, repo.TaskFilter{
		Status: domain.TaskStatusPending,
		Day:    &today,
	})
	if err != nil {
		return nil, classifyFailure(w.Name(), err)
	}

	header := "Tasks for today"
	if len(tasks) == 0 {
		tasks, err = w.tasks.List(ctx, repo.TaskFilter{
			Status: domain.TaskStatusPending,
			Limit:  10,
		})
		if err != nil {
			return nil, classifyFailure(w.Name(), err)
		}
		header = "Upcoming tasks"
	}
	if len(tasks) == 0 {
		return NewDelta().
			Say(w.Name(), "no pending tasks").
			SetReply("No pending tasks.", nil), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", header, len(tasks))
	for i := range tasks {
		fmt.Fprintf(&b, "- %s [%s] %s\n",
			taskTitle(&tasks[i]), tasks[i].Priority,
			tasks[i].ScheduledDate.Format("2006-01-02"))
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("listed %d tasks", len(tasks))).
		SetReply(strings.TrimRight(b.String(), "\n"), map[string]any{"tasks": tasks}), nil
}

// findTarget ищет PENDING-задачу, о которой говорит пользователь:
// по виду работы и, если упомянут, по участку. При нескольких
// кандидатах берётся самая ранняя по плановой дате.
func (w *TaskManagerWorker) findTarget(ctx context.Context, text string) (*domain.TaskRecord, error) {
	filter := w.targetFilter(ctx, text)
	filter.Status = domain.TaskStatusPending

	tasks, err := w.tasks.List(ctx, filter)
	if err != nil {
		return nil, classifyFailure(w.Name(), err)
	}
	if len(tasks) == 0 {
		return nil, invalidInput(w.Name(), "find task: %w", repo.ErrNoMatchingTask)
	}
	return &tasks[0], nil
}

// alreadyDone ищет завершённую задачу, подходящую под отчёт.
// Второе значение false — такой задачи нет, отчёт действительно
// ни к чему не привязать.
func (w *TaskManagerWorker) alreadyDone(ctx context.Context, text string) (*Delta, bool) {
	filter := w.targetFilter(ctx, text)
	filter.Status = domain.TaskStatusDone

	tasks, err := w.tasks.List(ctx, filter)
	if err != nil || len(tasks) == 0 {
		return nil, false
	}

	// Последняя по плановой дате — самая свежая закрытая.
	task := &tasks[len(tasks)-1]
	return NewDelta().
		Say(w.Name(), fmt.Sprintf("task %s already finished", task.ID)).
		SetReply(fmt.Sprintf("%s is already marked done.", taskTitle(task)), nil), true
}

// targetFilter собирает фильтр по тексту: вид работы и, если
// упомянут, участок.
func (w *TaskManagerWorker) targetFilter(ctx context.Context, text string) repo.TaskFilter {
	filter := repo.TaskFilter{}
	if wt, ok := detectWorkType(text); ok {
		filter.WorkType = wt
	}

	if fields, err := w.fields.List(ctx); err == nil {
		if field, ok := matchFieldName(text, fields); ok {
			id := field.ID
			filter.FieldID = &id
		}
	}
	return filter
}

// taskTitle — короткое описание задачи для ответа пользователю.
func taskTitle(t *domain.TaskRecord) string {
	if t == nil {
		return "the task"
	}
	if t.Description != "" {
		return t.Description
	}
	return t.WorkType
}
