package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkLog — запись о выполненной работе.
//
// Создаётся при отчёте пользователя («полил вторую теплицу»)
// или автоматически при завершении задачи.
type WorkLog struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// UserID — кто отчитался (sender_id транспорта).
	UserID string `json:"user_id"`

	// FieldID — участок (может быть нулевым, если не распознан).
	FieldID uuid.UUID `json:"field_id,omitempty"`

	// FieldName — название участка, как его указал пользователь.
	FieldName string `json:"field_name,omitempty"`

	// WorkType — вид работы.
	WorkType string `json:"work_type"`

	// WorkDate — дата выполнения работы.
	WorkDate time.Time `json:"work_date"`

	// Quantity — количественный результат (кг собрано, литров внесено).
	Quantity float64 `json:"quantity,omitempty"`

	// Unit — единица измерения Quantity.
	Unit string `json:"unit,omitempty"`

	// Notes — свободный комментарий.
	Notes string `json:"notes,omitempty"`

	// SourceMessage — исходное сообщение, из которого создана запись.
	SourceMessage string `json:"source_message,omitempty"`

	// TaskID — задача, по которой сделана запись (если была).
	TaskID *uuid.UUID `json:"task_id,omitempty"`

	// Version — версия записи для optimistic concurrency control.
	Version int64 `json:"version"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}
