package agent

import (
	"context"
	"fmt"

	"github.com/shaiso/Agron/internal/telemetry"
)

// RouteFinish — терминальный сигнал маршрутизатора: обработка
// завершена, пора отдавать ответ.
const RouteFinish = "FINISH"

// Decision — проверенное решение маршрутизатора.
//
// Поле не экспортируется: получить Decision можно только через
// Router.Decide, то есть любое значение внутри Decision уже прошло
// проверку по реестру. У цикла оркестратора нет пути исполнить
// непроверенный маршрут.
type Decision struct {
	next string
}

// IsFinish сообщает, что обработку пора завершать.
func (d Decision) IsFinish() bool { return d.next == RouteFinish }

// Worker возвращает имя выбранного воркера.
func (d Decision) Worker() string { return d.next }

// Classifier выбирает следующий шаг обработки.
//
// Возвращает имя воркера или RouteFinish. Значение не обязано быть
// валидным: проверка по реестру — обязанность Router, классификатор
// может ошибаться.
type Classifier interface {
	Classify(ctx context.Context, st *State) (string, error)
}

// Router превращает сырой выбор классификатора в проверенное Decision.
type Router struct {
	registry   *Registry
	classifier Classifier
}

// NewRouter создаёт Router.
func NewRouter(registry *Registry, classifier Classifier) *Router {
	return &Router{registry: registry, classifier: classifier}
}

// Decide запрашивает классификатор и валидирует результат.
//
// Значение вне реестра и не FINISH — нарушение контракта
// маршрутизации: обработка сообщения прекращается с ошибкой,
// «похожие» имена не доисполняются и не исправляются.
func (r *Router) Decide(ctx context.Context, st *State) (Decision, error) {
	raw, err := r.classifier.Classify(ctx, st)
	if err != nil {
		return Decision{}, fmt.Errorf("classify: %w", err)
	}

	if raw != RouteFinish && !r.registry.Has(raw) {
		return Decision{}, &ContractViolationError{
			Value: raw,
			Known: r.registry.Names(),
		}
	}

	telemetry.RoutingDecisions.WithLabelValues(raw).Inc()

	logger := telemetry.FromContext(ctx)
	logger.Debug("routing decision", "next", raw)

	return Decision{next: raw}, nil
}
