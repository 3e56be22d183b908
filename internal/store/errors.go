package store

import (
	"errors"
	"fmt"
)

// Ошибки хранилища.
var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("document not found")

	// ErrVersionConflict — версия документа изменилась с момента чтения.
	// Ожидаемая ошибка: вызывающий перечитывает документ и повторяет запись.
	ErrVersionConflict = errors.New("version conflict")

	// ErrContentionExceeded — лимит повторов Mutator исчерпан.
	// Запись не применена; документ остаётся консистентным.
	ErrContentionExceeded = errors.New("write contention exceeded")

	// ErrUnavailable — хранилище недоступно (сеть, пул соединений).
	ErrUnavailable = errors.New("store unavailable")
)

// ConflictError — конфликт версий с текущей версией документа.
// Позволяет вызывающему понять, насколько он отстал.
type ConflictError struct {
	Collection     string
	ID             string
	Expected       int64
	CurrentVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s/%s: expected %d, current %d",
		e.Collection, e.ID, e.Expected, e.CurrentVersion)
}

// Is позволяет errors.Is(err, ErrVersionConflict).
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// AbortedError — транзакция отклонена: предусловие операции
// с индексом FailedIndex не выполнилось. Ни одна операция
// транзакции не применена.
type AbortedError struct {
	FailedIndex int
	Reason      error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("transaction aborted at op %d: %v", e.FailedIndex, e.Reason)
}

func (e *AbortedError) Unwrap() error {
	return e.Reason
}
