package domain

import "time"

// InboundMessage — входящее сообщение пользователя.
//
// Создаётся транспортным слоем (gateway) и передаётся
// оркестратору через очередь messages.inbound.
type InboundMessage struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// SenderID — идентификатор отправителя (opaque, выдаётся транспортом).
	SenderID string `json:"sender_id"`

	// Text — текст сообщения.
	Text string `json:"text"`

	// Timestamp — время отправки.
	Timestamp time.Time `json:"timestamp"`
}

// OutboundReply — ответ пользователю.
//
// Формируется оркестратором по завершении обработки
// и публикуется в очередь replies.outbound.
type OutboundReply struct {
	// Text — текст ответа.
	Text string `json:"text"`

	// Payload — структурированные данные ответа (опционально).
	// Например, список задач или созданная запись.
	Payload map[string]any `json:"payload,omitempty"`
}
