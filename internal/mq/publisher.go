package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Agron/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeInbound MessageType = "message.inbound"
	MessageTypeReply   MessageType = "message.reply"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// InboundPayload — событие о новом входящем сообщении.
//
// Само сообщение лежит в inbox-коллекции хранилища; в очередь
// уходит только ID. Оркестратор забирает сообщение через Claim,
// поэтому дубликат события (переотправка, polling) безопасен.
type InboundPayload struct {
	MessageID string `json:"message_id"`
}

// ReplyPayload — готовый ответ пользователю.
type ReplyPayload struct {
	MessageID string               `json:"message_id"`
	SenderID  string               `json:"sender_id"`
	Reply     domain.OutboundReply `json:"reply"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishInbound публикует событие о новом входящем сообщении.
// Потребитель: Orchestrator.
func (p *Publisher) PublishInbound(ctx context.Context, messageID string) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeInbound,
		Payload:   InboundPayload{MessageID: messageID},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeMessages, RoutingKeyInbound, msg)
}

// PublishReply публикует готовый ответ пользователю.
// Потребитель: транспортный адаптер.
func (p *Publisher) PublishReply(ctx context.Context, payload ReplyPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeReply,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeReplies, RoutingKeyOutbound, msg)
}
