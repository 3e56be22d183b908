package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeMessages Exchange = "agron.messages"
	ExchangeReplies  Exchange = "agron.replies"
	ExchangeDLQ      Exchange = "agron.dlq"
)

// Queues — имена очередей.
const (
	QueueMessagesInbound Queue = "messages.inbound"
	QueueRepliesOutbound Queue = "replies.outbound"
	QueueDLQMessages     Queue = "dlq.messages"
)

// Routing keys.
const (
	RoutingKeyInbound     RoutingKey = "inbound"
	RoutingKeyOutbound    RoutingKey = "outbound"
	RoutingKeyDLQMessages RoutingKey = "messages"
)

// SetupTopology декларирует обменники, очереди и привязки.
// Идемпотентно: повторный вызов на существующей топологии безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeMessages, "direct"},
		{ExchangeReplies, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Сообщения, уроненные обработкой, уходят в DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQMessages),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// messages.inbound — с DLQ: битое сообщение не должно
		// крутиться в очереди вечно
		{QueueMessagesInbound, dlqArgs},

		// replies.outbound — без DLQ (доставку ответа транспорт
		// повторяет сам)
		{QueueRepliesOutbound, nil},

		// dlq.messages — сама DLQ очередь
		{QueueDLQMessages, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueMessagesInbound, RoutingKeyInbound, ExchangeMessages},
		{QueueRepliesOutbound, RoutingKeyOutbound, ExchangeReplies},
		{QueueDLQMessages, RoutingKeyDLQMessages, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Agron RabbitMQ Topology:

    agron.messages (direct)
    └── messages.inbound [routing: inbound]
            Consumer: Orchestrator
            DLQ: dlq.messages

    agron.replies (direct)
    └── replies.outbound [routing: outbound]
            Consumer: транспортный адаптер (LINE, Telegram, ...)

    agron.dlq (direct)
    └── dlq.messages [routing: messages]
            Manual processing
  `
}
