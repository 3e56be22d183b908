package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Agron/internal/agent"
	"github.com/shaiso/Agron/internal/domain"
)

// echoWorker отвечает фиксированным текстом.
type echoWorker struct {
	name  string
	reply string
	err   error
}

func (w *echoWorker) Name() string { return w.name }

func (w *echoWorker) Execute(ctx context.Context, st *agent.State) (*agent.Delta, error) {
	if w.err != nil {
		return nil, w.err
	}
	return agent.NewDelta().Say(w.name, "handled").SetReply(w.reply, nil), nil
}

// scriptClassifier отдаёт значения по порядку; исчерпав список,
// повторяет последнее.
type scriptClassifier struct {
	script []string
	i      int
}

func (c *scriptClassifier) Classify(ctx context.Context, st *agent.State) (string, error) {
	if c.i >= len(c.script) {
		return c.script[len(c.script)-1], nil
	}
	v := c.script[c.i]
	c.i++
	return v, nil
}

func loopState(text string) *agent.State {
	return agent.NewState(domain.InboundMessage{
		ID:        "msg-1",
		SenderID:  "user-1",
		Text:      text,
		Timestamp: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	})
}

func buildLoop(t *testing.T, classifier agent.Classifier, maxSteps int, workers ...agent.Worker) *Loop {
	t.Helper()
	registry := agent.NewRegistry()
	for _, w := range workers {
		if err := registry.Register(agent.Registration{Worker: w, Capability: "test: " + w.Name()}); err != nil {
			t.Fatalf("register %s: %v", w.Name(), err)
		}
	}
	return NewLoop(registry, agent.NewRouter(registry, classifier), maxSteps)
}

func TestLoop_SingleWorkerThenFinish(t *testing.T) {
	worker := &echoWorker{name: "echo", reply: "All done."}
	classifier := &scriptClassifier{script: []string{"echo", agent.RouteFinish}}
	loop := buildLoop(t, classifier, 0, worker)

	outcome := loop.Run(context.Background(), loopState("do the thing"))
	if outcome.Status != LoopFinished {
		t.Fatalf("expected FINISHED, got %s (%v)", outcome.Status, outcome.Failure)
	}
	if outcome.Steps != 1 {
		t.Errorf("expected 1 step, got %d", outcome.Steps)
	}
	if outcome.Reply.Text != "All done." {
		t.Errorf("unexpected reply: %q", outcome.Reply.Text)
	}
}

func TestLoop_ImmediateFinishGivesCapabilityHelp(t *testing.T) {
	worker := &echoWorker{name: "echo", reply: "unused"}
	classifier := &scriptClassifier{script: []string{agent.RouteFinish}}
	loop := buildLoop(t, classifier, 0, worker)

	outcome := loop.Run(context.Background(), loopState("gibberish"))
	if outcome.Status != LoopFinished {
		t.Fatalf("expected FINISHED, got %s", outcome.Status)
	}
	if outcome.Steps != 0 {
		t.Errorf("expected 0 steps, got %d", outcome.Steps)
	}
	if !strings.Contains(outcome.Reply.Text, "test: echo") {
		t.Errorf("expected capability help in reply, got %q", outcome.Reply.Text)
	}
}

func TestLoop_StepLimit(t *testing.T) {
	// Воркер никогда не готовит ответ, классификатор зациклен.
	looper := &echoWorker{name: "looper", reply: ""}
	classifier := &scriptClassifier{script: []string{"looper"}}
	loop := buildLoop(t, classifier, 3, looper)

	outcome := loop.Run(context.Background(), loopState("forever"))
	if outcome.Status != LoopFailed {
		t.Fatalf("expected FAILED, got %s", outcome.Status)
	}
	if !errors.Is(outcome.Failure, ErrStepLimitExceeded) {
		t.Errorf("expected ErrStepLimitExceeded, got %v", outcome.Failure)
	}
	if outcome.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", outcome.Steps)
	}
	if outcome.Reply.Text == "" {
		t.Error("failure outcome must carry a reply")
	}
}

func TestLoop_ContractViolationFails(t *testing.T) {
	worker := &echoWorker{name: "echo", reply: "x"}
	classifier := &scriptClassifier{script: []string{"not_a_worker"}}
	loop := buildLoop(t, classifier, 0, worker)

	outcome := loop.Run(context.Background(), loopState("hi"))
	if outcome.Status != LoopFailed {
		t.Fatalf("expected FAILED, got %s", outcome.Status)
	}
	if !errors.Is(outcome.Failure, agent.ErrRoutingViolation) {
		t.Errorf("expected ErrRoutingViolation, got %v", outcome.Failure)
	}
	if outcome.Steps != 0 {
		t.Errorf("violation on first decision: expected 0 steps, got %d", outcome.Steps)
	}
}

func TestLoop_WorkerFailureReplies(t *testing.T) {
	tests := []struct {
		name    string
		kind    agent.FailureKind
		wantSub string
	}{
		{"contention", agent.FailureContention, "try again"},
		{"transaction", agent.FailureTransaction, "Nothing was modified"},
		{"upstream", agent.FailureUpstream, "temporarily unavailable"},
		{"invalid input", agent.FailureInvalidInput, "couldn't find"},
		{"internal", agent.FailureInternal, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := &agent.Failure{Kind: tt.kind, Worker: "broken", Err: errors.New("boom")}
			worker := &echoWorker{name: "broken", err: failure}
			classifier := &scriptClassifier{script: []string{"broken"}}
			loop := buildLoop(t, classifier, 0, worker)

			outcome := loop.Run(context.Background(), loopState("hi"))
			if outcome.Status != LoopFailed {
				t.Fatalf("expected FAILED, got %s", outcome.Status)
			}
			if !strings.Contains(outcome.Reply.Text, tt.wantSub) {
				t.Errorf("reply %q does not contain %q", outcome.Reply.Text, tt.wantSub)
			}

			var got *agent.Failure
			if !errors.As(outcome.Failure, &got) || got.Kind != tt.kind {
				t.Errorf("expected failure kind %s, got %v", tt.kind, outcome.Failure)
			}
		})
	}
}

func TestLoop_CancelledContext(t *testing.T) {
	worker := &echoWorker{name: "echo", reply: "x"}
	classifier := &scriptClassifier{script: []string{"echo"}}
	loop := buildLoop(t, classifier, 0, worker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := loop.Run(ctx, loopState("hi"))
	if outcome.Status != LoopFailed {
		t.Fatalf("expected FAILED, got %s", outcome.Status)
	}
	if !errors.Is(outcome.Failure, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", outcome.Failure)
	}
}
