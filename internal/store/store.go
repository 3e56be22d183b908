package store

import "context"

// Document — версионированный документ хранилища.
type Document struct {
	// Collection — логическая коллекция ("tasks", "work_logs", ...).
	Collection string `json:"collection"`

	// ID — идентификатор документа (opaque строка).
	ID string `json:"id"`

	// Version — текущая версия. Новый документ создаётся с версией 1.
	Version int64 `json:"version"`

	// Fields — поля документа.
	Fields map[string]any `json:"fields"`
}

// OpKind — вид операции в транзакции.
type OpKind string

const (
	// OpInsert — вставка нового документа. Предусловие: документ не существует.
	OpInsert OpKind = "INSERT"

	// OpUpdate — запись полей. Предусловие: версия равна ExpectedVersion.
	OpUpdate OpKind = "UPDATE"

	// OpDelete — удаление. Предусловие: версия равна ExpectedVersion.
	OpDelete OpKind = "DELETE"
)

// Op — одна операция атомарной транзакции.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string

	// ExpectedVersion — предусловие для UPDATE/DELETE.
	// Для INSERT игнорируется (предусловие — отсутствие документа).
	ExpectedVersion int64

	// Fields — новые поля для INSERT/UPDATE.
	Fields map[string]any
}

// Query — параметры выборки документов. Только чтение:
// выборки не участвуют в протоколе условной записи.
type Query struct {
	// Eq — равенство поля строковому значению.
	Eq map[string]string

	// Sub — подстрока в значении поля (без учёта регистра).
	Sub map[string]string

	// Range — диапазон по полю (лексикографическое сравнение;
	// даты хранятся в RFC3339, поэтому сравнение корректно).
	Range *Range

	// SortBy — поле сортировки (пусто — порядок не определён).
	SortBy string

	// Desc — сортировка по убыванию.
	Desc bool

	// Limit — максимум документов (0 — без ограничения).
	Limit int
}

// Range — диапазон значений поля. Пустая граница — не ограничена.
type Range struct {
	Field string
	From  string
	To    string
}

// Store — интерфейс документного хранилища с условными записями.
//
// Все операции синхронны с точки зрения вызывающего: они могут
// блокировать выполнение, но никогда не оставляют частичное
// состояние видимым. Никакая операция не повторяется молча —
// политика повторов живёт в Mutator.
type Store interface {
	// Get возвращает документ или ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// ConditionalPut записывает поля документа при совпадении версии.
	//
	// expectedVersion == 0 — вставка: документ не должен существовать,
	// создаётся с версией 1. Иначе — обновление: при несовпадении
	// версии возвращается *ConflictError, при отсутствии — ErrNotFound.
	// Возвращает новую версию документа.
	ConditionalPut(ctx context.Context, collection, id string, expectedVersion int64, fields map[string]any) (int64, error)

	// ConditionalDelete удаляет документ при совпадении версии.
	ConditionalDelete(ctx context.Context, collection, id string, expectedVersion int64) error

	// Query возвращает документы коллекции по фильтру.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Transact атомарно применяет упорядоченный список операций:
	// либо все предусловия выполняются и все мутации применяются,
	// либо возвращается *AbortedError и не применяется ничего.
	// Промежуточное состояние не видно конкурентным читателям.
	Transact(ctx context.Context, ops []Op) error
}
