package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Agron/internal/agent"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
)

// testHarness — оркестратор на MemStore без MQ, с полным набором
// воркеров и keyword-классификатором.
type testHarness struct {
	orch   *Orchestrator
	inbox  *repo.InboxRepo
	tasks  *repo.TaskRepo
	logs   *repo.WorkLogRepo
	fields *repo.FieldRepo
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	s := store.NewMemStore()

	inbox := repo.NewInboxRepo(s)
	tasks := repo.NewTaskRepo(s)
	logs := repo.NewWorkLogRepo(s)
	fields := repo.NewFieldRepo(s)

	now := func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) }

	registry := agent.NewRegistry()
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewFieldInfoWorker(fields),
		Capability: "field info",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewTaskManagerWorker(tasks, fields, now),
		Capability: "tasks",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewWorkLogEntryWorker(logs, fields, now),
		Capability: "work log entries",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewWorkLogSearchWorker(logs, fields, now),
		Capability: "work log search",
	})

	router := agent.NewRouter(registry, agent.NewKeywordClassifier())
	loop := NewLoop(registry, router, 0)

	return &testHarness{
		orch:   New(Config{Inbox: inbox, Loop: loop}),
		inbox:  inbox,
		tasks:  tasks,
		logs:   logs,
		fields: fields,
	}
}

func (h *testHarness) submit(t *testing.T, id, text string) {
	t.Helper()
	entry := &domain.InboxEntry{
		ID:         id,
		SenderID:   "user-1",
		Text:       text,
		ReceivedAt: time.Date(2026, 8, 25, 8, 59, 0, 0, time.UTC),
	}
	if err := h.inbox.Create(context.Background(), entry); err != nil {
		t.Fatalf("create inbox entry: %v", err)
	}
}

// Полный путь: отчёт о завершении повторяющейся работы проходит
// task_manager и work_log_entry, в итоге задача закрыта, следующая
// запланирована, журнал дописан, сообщение в статусе DONE.
func TestOrchestrator_ProcessCompletionChain(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	field := &domain.Field{ID: uuid.New(), Name: "Greenhouse 1"}
	if err := h.fields.Create(ctx, field); err != nil {
		t.Fatalf("create field: %v", err)
	}

	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	task := &domain.TaskRecord{
		ID:            uuid.New(),
		FieldID:       field.ID,
		WorkType:      domain.WorkTypeIrrigation,
		Description:   "water greenhouse 1",
		ScheduledDate: day,
		Priority:      "high",
		Status:        domain.TaskStatusPending,
	}
	if err := h.tasks.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	h.submit(t, "msg-1", "finished watering greenhouse 1")

	if err := h.orch.Process(ctx, "msg-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, _ := h.inbox.Get(ctx, "msg-1")
	if entry.Status != domain.InboxStatusDone {
		t.Fatalf("expected DONE, got %s (%s)", entry.Status, entry.Error)
	}
	if !strings.Contains(entry.ReplyText, "done") {
		t.Errorf("unexpected reply: %q", entry.ReplyText)
	}

	done, _ := h.tasks.Get(ctx, task.ID)
	if done.Status != domain.TaskStatusDone {
		t.Errorf("task not completed: %s", done.Status)
	}

	pending, _ := h.tasks.List(ctx, repo.TaskFilter{Status: domain.TaskStatusPending})
	if len(pending) != 1 {
		t.Errorf("expected 1 successor task, got %d", len(pending))
	}

	logs, _ := h.logs.Search(ctx, repo.WorkLogFilter{})
	if len(logs) != 1 {
		t.Fatalf("expected 1 work log entry, got %d", len(logs))
	}
	if logs[0].TaskID == nil || *logs[0].TaskID != task.ID {
		t.Error("work log entry must reference the completed task")
	}
}

func TestOrchestrator_ProcessUnrecognizedText(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.submit(t, "msg-1", "привет")

	if err := h.orch.Process(ctx, "msg-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, _ := h.inbox.Get(ctx, "msg-1")
	if entry.Status != domain.InboxStatusDone {
		t.Fatalf("expected DONE, got %s", entry.Status)
	}
	if !strings.Contains(entry.ReplyText, "I can help with") {
		t.Errorf("expected capability help, got %q", entry.ReplyText)
	}
}

func TestOrchestrator_ProcessFailureMarksFailed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Отчёт о завершении без единой подходящей задачи.
	h.submit(t, "msg-1", "finished watering")

	if err := h.orch.Process(ctx, "msg-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, _ := h.inbox.Get(ctx, "msg-1")
	if entry.Status != domain.InboxStatusFailed {
		t.Fatalf("expected FAILED, got %s", entry.Status)
	}
	if entry.Error == "" {
		t.Error("failed entry must carry the error")
	}
}

// Второй Process того же сообщения проигрывает захват и выходит
// без ошибки и без повторной обработки.
func TestOrchestrator_ProcessAlreadyClaimed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.submit(t, "msg-1", "привет")

	if err := h.orch.Process(ctx, "msg-1"); err != nil {
		t.Fatalf("first process: %v", err)
	}

	entry, _ := h.inbox.Get(ctx, "msg-1")
	processedAt := entry.ProcessedAt

	if err := h.orch.Process(ctx, "msg-1"); err != nil {
		t.Fatalf("second process: %v", err)
	}

	entry, _ = h.inbox.Get(ctx, "msg-1")
	if entry.ProcessedAt == nil || processedAt == nil || !entry.ProcessedAt.Equal(*processedAt) {
		t.Error("second process must not reprocess the message")
	}
}

func TestOrchestrator_ProcessUnknownMessage(t *testing.T) {
	h := newHarness(t)

	if err := h.orch.Process(context.Background(), "ghost"); err != nil {
		t.Errorf("unknown message must be skipped, got %v", err)
	}
}

func TestOrchestrator_StartStop(t *testing.T) {
	h := newHarness(t)
	h.submit(t, "msg-1", "привет")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Первый poll выполняется при старте синхронно с запуском
	// горутины; даём ему время.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entry, err := h.inbox.Get(ctx, "msg-1")
		if err == nil && entry.Status.IsTerminal() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.orch.Stop()
	if !h.orch.IsStopped() {
		t.Error("expected IsStopped after Stop")
	}

	entry, _ := h.inbox.Get(context.Background(), "msg-1")
	if !entry.Status.IsTerminal() {
		t.Errorf("poll did not process the message: %s", entry.Status)
	}
}
