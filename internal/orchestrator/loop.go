package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shaiso/Agron/internal/agent"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/telemetry"
)

// defaultMaxSteps — предел шагов цикла на одно сообщение.
const defaultMaxSteps = 10

// LoopStatus — исход цикла обработки.
type LoopStatus string

const (
	// LoopFinished — маршрутизатор вернул FINISH, ответ готов.
	LoopFinished LoopStatus = "FINISHED"

	// LoopFailed — обработка прекращена из-за ошибки.
	LoopFailed LoopStatus = "FAILED"
)

// Outcome — результат обработки одного сообщения.
type Outcome struct {
	// Status — исход.
	Status LoopStatus

	// Reply — ответ пользователю. Заполнен всегда: при ошибке
	// это объяснение, что пошло не так.
	Reply domain.OutboundReply

	// Steps — сколько шагов заняла обработка.
	Steps int

	// Failure — причина для LoopFailed.
	Failure error
}

// Loop — пошаговый цикл обработки сообщения.
//
// Каждый шаг — решение маршрутизатора и, если решение не FINISH,
// один вызов воркера с применением его дельты к состоянию.
// Воркеры исполняются строго последовательно: у State один
// владелец, и после каждого шага маршрутизатор видит результат
// предыдущего.
//
// Число шагов ограничено: классификатор без терминального правила
// не должен гонять сообщение по кругу бесконечно.
type Loop struct {
	router   *agent.Router
	registry *agent.Registry
	maxSteps int
}

// NewLoop создаёт Loop. maxSteps <= 0 означает предел по умолчанию.
func NewLoop(registry *agent.Registry, router *agent.Router, maxSteps int) *Loop {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Loop{
		router:   router,
		registry: registry,
		maxSteps: maxSteps,
	}
}

// Run прогоняет состояние через цикл до FINISH, ошибки или
// исчерпания шагов. Возвращённый Outcome всегда содержит ответ.
func (l *Loop) Run(ctx context.Context, st *agent.State) *Outcome {
	logger := telemetry.FromContext(ctx)

	steps := 0
	for steps < l.maxSteps {
		if err := ctx.Err(); err != nil {
			return l.failed(st, steps, err)
		}

		decision, err := l.router.Decide(ctx, st)
		if err != nil {
			return l.failed(st, steps, err)
		}

		if decision.IsFinish() {
			telemetry.LoopSteps.Observe(float64(steps))
			return &Outcome{
				Status: LoopFinished,
				Reply:  l.finalReply(st),
				Steps:  steps,
			}
		}

		worker, err := l.registry.Resolve(decision.Worker())
		if err != nil {
			return l.failed(st, steps, err)
		}

		steps++
		wlog := telemetry.WithWorker(logger, worker.Name())
		wlog.Debug("executing worker", "step", steps)

		delta, err := worker.Execute(ctx, st)
		if err != nil {
			return l.failed(st, steps, err)
		}
		st.Apply(delta)
	}

	return l.failed(st, steps,
		fmt.Errorf("%w: %d steps", ErrStepLimitExceeded, l.maxSteps))
}

// finalReply возвращает подготовленный воркерами ответ или
// подсказку, если ни один воркер не взялся за сообщение.
func (l *Loop) finalReply(st *agent.State) domain.OutboundReply {
	if reply, ok := st.Reply(); ok && reply != nil {
		return *reply
	}

	var b strings.Builder
	b.WriteString("I didn't understand that. I can help with:\n")
	caps := l.registry.Capabilities()
	for _, name := range l.registry.Names() {
		fmt.Fprintf(&b, "- %s\n", caps[name])
	}
	return domain.OutboundReply{Text: strings.TrimRight(b.String(), "\n")}
}

// failed строит Outcome для прерванной обработки.
func (l *Loop) failed(st *agent.State, steps int, err error) *Outcome {
	telemetry.LoopSteps.Observe(float64(steps))
	return &Outcome{
		Status:  LoopFailed,
		Reply:   domain.OutboundReply{Text: failureReplyText(err)},
		Steps:   steps,
		Failure: err,
	}
}

// failureReplyText переводит причину ошибки в текст для пользователя.
func failureReplyText(err error) string {
	var failure *agent.Failure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case agent.FailureContention:
			return "That record is being updated by someone else right now. Please try again."
		case agent.FailureTransaction:
			return "The change could not be applied consistently. Nothing was modified, please try again."
		case agent.FailureUpstream:
			return "Storage is temporarily unavailable. Please try again later."
		case agent.FailureInvalidInput:
			return "I couldn't find what you're referring to. Try naming the work type or the field."
		}
	}
	return "Something went wrong while processing your message."
}
