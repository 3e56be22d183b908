package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
)

// ListWorkLogs возвращает записи журнала по фильтру.
// GET /api/v1/worklogs?user_id=...&work_type=...&field_name=...&from=...&to=...&limit=...
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	filter := repo.WorkLogFilter{
		UserID:    r.URL.Query().Get("user_id"),
		WorkType:  r.URL.Query().Get("work_type"),
		FieldName: r.URL.Query().Get("field_name"),
		Limit:     parseLimit(r.URL.Query().Get("limit"), 50),
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			BadRequest(w, "invalid from, expected YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			BadRequest(w, "invalid to, expected YYYY-MM-DD")
			return
		}
		filter.To = &to
	}

	logs, err := h.workLogRepo.Search(r.Context(), filter)
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkLogResponse, len(logs))
	for i, l := range logs {
		result[i] = WorkLogFromDomain(l)
	}

	List(w, result, len(result))
}

// CreateWorkLog создаёт запись журнала.
// POST /api/v1/worklogs
func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.UserID == "" {
		BadRequest(w, "user_id is required")
		return
	}
	if req.WorkType == "" {
		BadRequest(w, "work_type is required")
		return
	}

	now := time.Now().UTC()
	workDate := now
	if req.WorkDate != nil {
		workDate = req.WorkDate.UTC()
	}

	log := &domain.WorkLog{
		ID:        uuid.New(),
		UserID:    req.UserID,
		FieldName: req.FieldName,
		WorkType:  req.WorkType,
		WorkDate:  workDate,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Notes:     req.Notes,
		CreatedAt: now,
	}
	if req.FieldID != nil {
		log.FieldID = *req.FieldID
	}

	if err := h.workLogRepo.Create(r.Context(), log); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, WorkLogFromDomain(*log))
}
