package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Agron/internal/telemetry"
)

// Tx — координатор атомарной транзакции над несколькими документами.
//
// Собирает фиксированный, известный заранее список операций и
// применяет их одним вызовом Store.Transact: либо все предусловия
// выполняются и все мутации видны, либо ни одна. Использовать
// всегда, когда одно логическое событие порождает больше одной
// мутации (закрыть задачу + создать следующую) — две независимые
// условные записи оставили бы окно, в котором конкурентный
// читатель видит половину события.
type Tx struct {
	store Store
	ops   []Op
}

// NewTx создаёт пустую транзакцию.
func NewTx(store Store) *Tx {
	return &Tx{store: store}
}

// Insert добавляет вставку нового документа.
// Предусловие: документ не существует.
func (t *Tx) Insert(collection, id string, fields map[string]any) *Tx {
	t.ops = append(t.ops, Op{
		Kind:       OpInsert,
		Collection: collection,
		ID:         id,
		Fields:     fields,
	})
	return t
}

// Update добавляет условную запись полей.
// Предусловие: версия документа равна expectedVersion.
func (t *Tx) Update(collection, id string, expectedVersion int64, fields map[string]any) *Tx {
	t.ops = append(t.ops, Op{
		Kind:            OpUpdate,
		Collection:      collection,
		ID:              id,
		ExpectedVersion: expectedVersion,
		Fields:          fields,
	})
	return t
}

// Delete добавляет условное удаление.
func (t *Tx) Delete(collection, id string, expectedVersion int64) *Tx {
	t.ops = append(t.ops, Op{
		Kind:            OpDelete,
		Collection:      collection,
		ID:              id,
		ExpectedVersion: expectedVersion,
	})
	return t
}

// Len возвращает количество собранных операций.
func (t *Tx) Len() int {
	return len(t.ops)
}

// Commit атомарно применяет собранные операции.
// Пустая транзакция — no-op.
func (t *Tx) Commit(ctx context.Context) error {
	if len(t.ops) == 0 {
		return nil
	}

	err := t.store.Transact(ctx, t.ops)
	if err == nil {
		telemetry.Transactions.WithLabelValues("committed").Inc()
		return nil
	}

	var aborted *AbortedError
	if errors.As(err, &aborted) {
		telemetry.Transactions.WithLabelValues("aborted").Inc()
		return err
	}

	telemetry.Transactions.WithLabelValues("error").Inc()
	return fmt.Errorf("commit transaction: %w", err)
}
