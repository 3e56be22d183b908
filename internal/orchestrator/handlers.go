package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/shaiso/Agron/internal/agent"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/mq"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
	"github.com/shaiso/Agron/internal/telemetry"
)

// handleInbound обрабатывает событие о новом входящем сообщении.
func (o *Orchestrator) handleInbound(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.InboundPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse message.inbound payload", "error", err)
		return err
	}

	o.logger.Debug("received message.inbound event", "message_id", payload.MessageID)

	return o.Process(ctx, payload.MessageID)
}

// Process обрабатывает одно входящее сообщение от начала до конца.
//
// Последовательность:
//  1. Claim — условный переход NEW → PROCESSING. Проигрыш гонки
//     (сообщение уже захвачено) — не ошибка.
//  2. Loop — маршрутизатор и воркеры строят ответ.
//  3. Фиксация исхода в inbox и публикация ответа.
//
// Ответ публикуется и при ошибке обработки: пользователь получает
// объяснение, а не тишину.
func (o *Orchestrator) Process(ctx context.Context, messageID string) error {
	logger := telemetry.WithMessageID(o.logger, messageID)
	ctx = telemetry.WithLogger(ctx, logger)

	entry, err := o.inbox.Claim(ctx, messageID)
	switch {
	case errors.Is(err, repo.ErrAlreadyClaimed):
		logger.Debug("message already claimed, skipping")
		return nil
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("inbound event for unknown message")
		return nil
	case err != nil:
		return err
	}

	logger = telemetry.WithSenderID(logger, entry.SenderID)
	ctx = telemetry.WithLogger(ctx, logger)
	logger.Info("processing message")

	st := agent.NewState(domain.InboundMessage{
		ID:        entry.ID,
		SenderID:  entry.SenderID,
		Text:      entry.Text,
		Timestamp: entry.ReceivedAt,
	})

	outcome := o.loop.Run(ctx, st)
	now := time.Now()

	if outcome.Status == LoopFinished {
		telemetry.MessagesProcessed.WithLabelValues("finished").Inc()
		logger.Info("message processed",
			"steps", outcome.Steps,
		)
		if err := o.inbox.MarkDone(ctx, entry.ID, outcome.Reply.Text, now); err != nil {
			logger.Error("failed to mark message done", "error", err)
		}
	} else {
		telemetry.MessagesProcessed.WithLabelValues("failed").Inc()
		logger.Warn("message processing failed",
			"steps", outcome.Steps,
			"error", outcome.Failure,
		)
		if err := o.inbox.MarkFailed(ctx, entry.ID, outcome.Failure.Error(), now); err != nil {
			logger.Error("failed to mark message failed", "error", err)
		}
	}

	o.publishReply(ctx, entry, outcome)
	return nil
}

// publishReply отправляет ответ в replies.outbound.
// Без MQ (режим разработки) ответ остаётся только в inbox-записи.
func (o *Orchestrator) publishReply(ctx context.Context, entry *domain.InboxEntry, outcome *Outcome) {
	if o.publisher == nil {
		return
	}

	err := o.publisher.PublishReply(ctx, mq.ReplyPayload{
		MessageID: entry.ID,
		SenderID:  entry.SenderID,
		Reply:     outcome.Reply,
	})
	if err != nil {
		// Ответ уже зафиксирован в inbox — транспорт может забрать
		// его оттуда
		telemetry.FromContext(ctx).Warn("failed to publish reply", "error", err)
	}
}
