package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
)

// SubmitMessage принимает сообщение пользователя в обработку.
// POST /api/v1/messages
//
// Сообщение сохраняется в inbox со статусом NEW, событие уходит
// в очередь. Ответ 202: обработка асинхронная, результат можно
// забрать по GET /api/v1/messages/{id} или из replies.outbound.
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.SenderID == "" {
		BadRequest(w, "sender_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		BadRequest(w, "text is required")
		return
	}

	entry := &domain.InboxEntry{
		ID:         uuid.New().String(),
		SenderID:   req.SenderID,
		Text:       req.Text,
		ReceivedAt: time.Now().UTC(),
	}

	if err := h.inboxRepo.Create(r.Context(), entry); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishInbound(r.Context(), entry.ID); err != nil {
			// Сообщение уже в inbox — оркестратор заберёт его
			// через polling
			h.logger.Warn("failed to publish message.inbound",
				"message_id", entry.ID,
				"error", err,
			)
		}
	}

	Accepted(w, MessageFromDomain(*entry))
}

// GetMessage возвращает состояние обработки сообщения.
// GET /api/v1/messages/{id}
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		BadRequest(w, "invalid message id")
		return
	}

	entry, err := h.inboxRepo.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "message not found") {
		return
	}

	Success(w, MessageFromDomain(*entry))
}
