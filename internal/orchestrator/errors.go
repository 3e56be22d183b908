package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrStepLimitExceeded — цикл исчерпал предел шагов,
	// не получив FINISH от маршрутизатора.
	ErrStepLimitExceeded = errors.New("loop step limit exceeded")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
