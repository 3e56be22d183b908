package agent

import (
	"context"

	"github.com/shaiso/Agron/internal/domain"
)

// Worker — специализированный обработчик одной предметной области.
//
// Execute получает состояние только для чтения и возвращает дельту:
// новые сообщения диалога и изменения scratchpad. Напрямую State
// воркер не меняет — дельту применяет цикл оркестратора, поэтому
// у состояния всегда ровно один писатель.
//
// Все ошибки Execute — типизированные (*Failure): по виду ошибки
// оркестратор решает, что ответить пользователю и как завершить
// обработку.
type Worker interface {
	// Name возвращает имя воркера, под которым он зарегистрирован.
	Name() string

	// Execute обрабатывает запрос в своей области.
	Execute(ctx context.Context, st *State) (*Delta, error)
}

// Delta — результат одного вызова воркера.
type Delta struct {
	// Messages — сообщения, дописываемые в диалог.
	Messages []ChatMessage

	// Scratch — значения, устанавливаемые в scratchpad.
	Scratch map[string]any
}

// NewDelta создаёт пустую дельту.
func NewDelta() *Delta {
	return &Delta{Scratch: make(map[string]any)}
}

// Say дописывает сообщение воркера в дельту.
func (d *Delta) Say(worker, content string) *Delta {
	d.Messages = append(d.Messages, ChatMessage{
		Role:    RoleWorker,
		Worker:  worker,
		Content: content,
	})
	return d
}

// Set устанавливает значение scratchpad в дельте.
func (d *Delta) Set(key string, value any) *Delta {
	if d.Scratch == nil {
		d.Scratch = make(map[string]any)
	}
	d.Scratch[key] = value
	return d
}

// SetReply кладёт в дельту готовый ответ пользователю.
func (d *Delta) SetReply(text string, payload map[string]any) *Delta {
	return d.Set(ScratchReply, newReply(text, payload))
}

func newReply(text string, payload map[string]any) *domain.OutboundReply {
	return &domain.OutboundReply{Text: text, Payload: payload}
}
