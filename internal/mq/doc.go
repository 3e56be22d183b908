// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - message.inbound — новое входящее сообщение ожидает обработки
//   - message.reply   — готовый ответ пользователю
//
// Exchanges:
//   - agron.messages — события входящих сообщений
//   - agron.replies  — ответы для транспортного адаптера
//   - agron.dlq      — dead letter queue
package mq
