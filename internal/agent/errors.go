package agent

import (
	"errors"
	"fmt"

	"github.com/shaiso/Agron/internal/store"
)

// ErrRoutingViolation — маршрутизатор вернул значение вне множества
// зарегистрированных воркеров и FINISH.
var ErrRoutingViolation = errors.New("routing contract violation")

// ErrUnknownWorker — запрошенный воркер не зарегистрирован.
var ErrUnknownWorker = errors.New("unknown worker")

// ErrDuplicateWorker — воркер с таким именем уже зарегистрирован.
var ErrDuplicateWorker = errors.New("duplicate worker")

// ContractViolationError — детали нарушения контракта маршрутизации.
type ContractViolationError struct {
	// Value — что вернул классификатор.
	Value string

	// Known — допустимые значения на момент решения.
	Known []string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("routing contract violation: %q is not a registered worker", e.Value)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrRoutingViolation
}

// FailureKind — вид ошибки воркера.
type FailureKind string

const (
	// FailureContention — исчерпан бюджет повторов условной записи.
	// Повторная отправка того же сообщения может пройти.
	FailureContention FailureKind = "contention"

	// FailureTransaction — многодокументная транзакция отменена.
	FailureTransaction FailureKind = "transaction_aborted"

	// FailureUpstream — хранилище или внешняя зависимость недоступны.
	FailureUpstream FailureKind = "upstream_unavailable"

	// FailureInvalidInput — из сообщения не удалось извлечь
	// необходимые данные.
	FailureInvalidInput FailureKind = "invalid_input"

	// FailureInternal — прочие ошибки воркера.
	FailureInternal FailureKind = "internal"
)

// Failure — типизированная ошибка воркера.
//
// Воркеры не возвращают неклассифицированных ошибок: всё, что
// выходит из Execute, обёрнуто в Failure с видом, по которому
// оркестратор выбирает текст ответа и судьбу сообщения.
type Failure struct {
	Kind   FailureKind
	Worker string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("worker %s failed (%s): %v", f.Worker, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Retryable сообщает, имеет ли смысл повторить то же сообщение.
func (f *Failure) Retryable() bool {
	return f.Kind == FailureContention || f.Kind == FailureUpstream
}

// classifyFailure оборачивает ошибку воркера в Failure,
// определяя вид по известным sentinel-ошибкам хранилища.
func classifyFailure(worker string, err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	kind := FailureInternal
	var aborted *store.AbortedError
	switch {
	case errors.Is(err, store.ErrContentionExceeded):
		kind = FailureContention
	case errors.As(err, &aborted):
		kind = FailureTransaction
	case errors.Is(err, store.ErrUnavailable):
		kind = FailureUpstream
	}

	return &Failure{Kind: kind, Worker: worker, Err: err}
}

// invalidInput строит Failure вида FailureInvalidInput.
func invalidInput(worker, format string, args ...any) *Failure {
	return &Failure{
		Kind:   FailureInvalidInput,
		Worker: worker,
		Err:    fmt.Errorf(format, args...),
	}
}
