package domain

import "time"

// InboxEntry — входящее сообщение, сохранённое в хранилище.
//
// Gateway записывает сообщение со статусом NEW и публикует событие
// в очередь. Polling fallback оркестратора находит NEW-записи и
// захватывает их условной записью — поэтому дубли не обрабатываются
// даже при нескольких экземплярах оркестратора.
type InboxEntry struct {
	// ID — идентификатор сообщения (совпадает с InboundMessage.ID).
	ID string `json:"id"`

	// SenderID — отправитель.
	SenderID string `json:"sender_id"`

	// Text — текст сообщения.
	Text string `json:"text"`

	// Status — статус обработки.
	Status InboxStatus `json:"status"`

	// ReplyText — текст отправленного ответа.
	ReplyText string `json:"reply_text,omitempty"`

	// Error — ошибка обработки (для FAILED).
	Error string `json:"error,omitempty"`

	// ReceivedAt — время получения.
	ReceivedAt time.Time `json:"received_at"`

	// ProcessedAt — время завершения обработки.
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	// Version — версия записи для optimistic concurrency control.
	Version int64 `json:"version"`
}
