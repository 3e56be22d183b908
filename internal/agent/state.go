package agent

import (
	"time"

	"github.com/shaiso/Agron/internal/domain"
)

// Role — роль автора сообщения в диалоге.
type Role string

const (
	// RoleUser — входящее сообщение пользователя.
	RoleUser Role = "user"

	// RoleWorker — результат работы воркера.
	RoleWorker Role = "worker"
)

// ChatMessage — одно сообщение диалога.
type ChatMessage struct {
	// Role — кто автор.
	Role Role `json:"role"`

	// Worker — имя воркера (для RoleWorker).
	Worker string `json:"worker,omitempty"`

	// Content — текст.
	Content string `json:"content"`
}

// Ключи scratchpad, через которые воркеры передают друг другу
// промежуточные результаты.
const (
	// ScratchReply — готовый ответ пользователю (*domain.OutboundReply).
	ScratchReply = "reply"

	// ScratchCompletedTask — завершённая задача (*domain.TaskRecord);
	// сигнал для work_log_entry записать работу в журнал.
	ScratchCompletedTask = "completed_task"

	// ScratchWorkLogID — ID созданной записи журнала (string).
	ScratchWorkLogID = "work_log_id"
)

// State — состояние обработки одного входящего сообщения.
//
// Живёт ровно один проход цикла оркестратора и принадлежит ему
// эксклюзивно: между конкурентными обработками ничего не разделяется,
// даже для одного пользователя. Полезный результат — либо записанные
// через store документы, либо итоговый ответ; сам State после
// завершения выбрасывается.
//
// Список сообщений append-only: он никогда не усекается и не
// переупорядочивается, поэтому доступ к нему — только через
// AppendMessage/Messages.
type State struct {
	messageID  string
	senderID   string
	receivedAt time.Time

	messages []ChatMessage
	scratch  map[string]any
}

// NewState создаёт State из входящего сообщения.
func NewState(msg domain.InboundMessage) *State {
	return &State{
		messageID:  msg.ID,
		senderID:   msg.SenderID,
		receivedAt: msg.Timestamp,
		messages: []ChatMessage{
			{Role: RoleUser, Content: msg.Text},
		},
		scratch: make(map[string]any),
	}
}

// MessageID возвращает идентификатор входящего сообщения.
func (s *State) MessageID() string { return s.messageID }

// SenderID возвращает отправителя.
func (s *State) SenderID() string { return s.senderID }

// ReceivedAt возвращает время получения сообщения.
func (s *State) ReceivedAt() time.Time { return s.receivedAt }

// UserText возвращает текст исходного сообщения пользователя.
func (s *State) UserText() string {
	for _, m := range s.messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// Messages возвращает копию списка сообщений.
func (s *State) Messages() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Scratch возвращает значение scratchpad по ключу.
func (s *State) Scratch(key string) (any, bool) {
	v, ok := s.scratch[key]
	return v, ok
}

// HasScratch проверяет наличие ключа в scratchpad.
func (s *State) HasScratch(key string) bool {
	_, ok := s.scratch[key]
	return ok
}

// Reply возвращает подготовленный ответ пользователю, если он есть.
func (s *State) Reply() (*domain.OutboundReply, bool) {
	v, ok := s.scratch[ScratchReply]
	if !ok {
		return nil, false
	}
	reply, ok := v.(*domain.OutboundReply)
	return reply, ok
}

// Apply применяет дельту воркера: дописывает сообщения и
// устанавливает значения scratchpad. Вызывается только циклом
// оркестратора.
func (s *State) Apply(d *Delta) {
	if d == nil {
		return
	}
	s.messages = append(s.messages, d.Messages...)
	for k, v := range d.Scratch {
		s.scratch[k] = v
	}
}
