package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrAlreadyClaimed — сообщение уже захвачено другим оркестратором.
	ErrAlreadyClaimed = errors.New("inbox entry already claimed")

	// ErrTaskFinished — задача уже в финальном статусе.
	ErrTaskFinished = errors.New("task already finished")

	// ErrNoMatchingTask — подходящая задача не найдена.
	ErrNoMatchingTask = errors.New("no matching task")
)
