package domain

// TaskStatus — статус запланированной работы.
//
// Жизненный цикл:
//
//	PENDING → DONE
//	        ↘ CANCELLED
//	(PENDING может сдвигаться по дате при переносе)
type TaskStatus string

const (
	// TaskStatusPending — работа запланирована, но не выполнена.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusDone — работа выполнена.
	TaskStatusDone TaskStatus = "DONE"

	// TaskStatusCancelled — работа отменена.
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusDone, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// InboxStatus — статус обработки входящего сообщения.
//
// Жизненный цикл:
//
//	NEW → PROCESSING → DONE
//	                 ↘ FAILED
//
// Переход NEW → PROCESSING выполняется условной записью (claim):
// из нескольких конкурентных оркестраторов сообщение достаётся
// ровно одному.
type InboxStatus string

const (
	// InboxStatusNew — сообщение принято, ждёт обработки.
	InboxStatusNew InboxStatus = "NEW"

	// InboxStatusProcessing — сообщение захвачено оркестратором.
	InboxStatusProcessing InboxStatus = "PROCESSING"

	// InboxStatusDone — обработка завершена, ответ отправлен.
	InboxStatusDone InboxStatus = "DONE"

	// InboxStatusFailed — обработка завершилась ошибкой.
	InboxStatusFailed InboxStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s InboxStatus) IsTerminal() bool {
	switch s {
	case InboxStatusDone, InboxStatusFailed:
		return true
	default:
		return false
	}
}
