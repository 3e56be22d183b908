package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shaiso/Agron/internal/domain"
)

// stubWorker — воркер-заглушка для тестов реестра и маршрутизатора.
type stubWorker struct {
	name  string
	delta *Delta
	err   error
}

func (w *stubWorker) Name() string { return w.name }

func (w *stubWorker) Execute(ctx context.Context, st *State) (*Delta, error) {
	return w.delta, w.err
}

// stubClassifier возвращает заранее заданное значение.
type stubClassifier struct {
	next string
	err  error
}

func (c *stubClassifier) Classify(ctx context.Context, st *State) (string, error) {
	return c.next, c.err
}

func testState(text string) *State {
	return NewState(domain.InboundMessage{
		ID:        "msg-1",
		SenderID:  "user-1",
		Text:      text,
		Timestamp: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	})
}

func testRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, name := range names {
		if err := r.Register(Registration{Worker: &stubWorker{name: name}}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	return r
}

func TestRouter_DecideKnownWorker(t *testing.T) {
	registry := testRegistry(t, WorkerTaskManager)
	router := NewRouter(registry, &stubClassifier{next: WorkerTaskManager})

	decision, err := router.Decide(context.Background(), testState("завершил полив"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.IsFinish() {
		t.Error("expected a worker decision, got FINISH")
	}
	if decision.Worker() != WorkerTaskManager {
		t.Errorf("expected %s, got %s", WorkerTaskManager, decision.Worker())
	}
}

func TestRouter_DecideFinish(t *testing.T) {
	registry := testRegistry(t, WorkerTaskManager)
	router := NewRouter(registry, &stubClassifier{next: RouteFinish})

	decision, err := router.Decide(context.Background(), testState("спасибо"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsFinish() {
		t.Error("expected FINISH decision")
	}
}

func TestRouter_ContractViolation(t *testing.T) {
	registry := testRegistry(t, WorkerTaskManager, WorkerFieldInfo)
	router := NewRouter(registry, &stubClassifier{next: "task_mgr"})

	_, err := router.Decide(context.Background(), testState("план на сегодня"))
	if !errors.Is(err, ErrRoutingViolation) {
		t.Fatalf("expected ErrRoutingViolation, got %v", err)
	}

	var violation *ContractViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected *ContractViolationError, got %T", err)
	}
	if violation.Value != "task_mgr" {
		t.Errorf("expected value 'task_mgr', got %q", violation.Value)
	}
	if len(violation.Known) != 2 {
		t.Errorf("expected 2 known workers, got %v", violation.Known)
	}
}

func TestRouter_EmptyValueIsViolation(t *testing.T) {
	registry := testRegistry(t, WorkerTaskManager)
	router := NewRouter(registry, &stubClassifier{next: ""})

	_, err := router.Decide(context.Background(), testState("что-то"))
	if !errors.Is(err, ErrRoutingViolation) {
		t.Errorf("expected ErrRoutingViolation for empty value, got %v", err)
	}
}

func TestRouter_ClassifierError(t *testing.T) {
	registry := testRegistry(t, WorkerTaskManager)
	wantErr := fmt.Errorf("model timeout")
	router := NewRouter(registry, &stubClassifier{err: wantErr})

	_, err := router.Decide(context.Background(), testState("план"))
	if !errors.Is(err, wantErr) {
		t.Errorf("expected classifier error to surface, got %v", err)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Registration{Worker: &stubWorker{name: "a"}, Capability: "does a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Has("a") {
		t.Error("expected Has(a) to be true")
	}

	w, err := r.Resolve("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Name() != "a" {
		t.Errorf("expected worker a, got %s", w.Name())
	}

	caps := r.Capabilities()
	if caps["a"] != "does a" {
		t.Errorf("expected capability 'does a', got %q", caps["a"])
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
	}{
		{"nil worker", Registration{}},
		{"empty name", Registration{Worker: &stubWorker{name: ""}}},
		{"reserved name", Registration{Worker: &stubWorker{name: RouteFinish}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if err := r.Register(tt.reg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRegistry_DuplicateWorker(t *testing.T) {
	r := testRegistry(t, "a")

	err := r.Register(Registration{Worker: &stubWorker{name: "a"}})
	if !errors.Is(err, ErrDuplicateWorker) {
		t.Errorf("expected ErrDuplicateWorker, got %v", err)
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("ghost")
	if !errors.Is(err, ErrUnknownWorker) {
		t.Errorf("expected ErrUnknownWorker, got %v", err)
	}
}

func TestRegistry_NamesKeepOrder(t *testing.T) {
	r := testRegistry(t, "c", "a", "b")

	names := r.Names()
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %s, want %s", i, names[i], name)
		}
	}
}
