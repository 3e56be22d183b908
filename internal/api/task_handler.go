package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
)

// ListTasks возвращает список задач с фильтрацией.
// GET /api/v1/tasks?status=...&work_type=...&field_id=...&day=...&limit=...
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := repo.TaskFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.TaskStatus(status)
	}
	if wt := r.URL.Query().Get("work_type"); wt != "" {
		filter.WorkType = wt
	}
	if fieldIDStr := r.URL.Query().Get("field_id"); fieldIDStr != "" {
		fieldID, err := uuid.Parse(fieldIDStr)
		if err != nil {
			BadRequest(w, "invalid field_id")
			return
		}
		filter.FieldID = &fieldID
	}
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		day, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			BadRequest(w, "invalid day, expected YYYY-MM-DD")
			return
		}
		filter.Day = &day
	}
	filter.Limit = parseLimit(r.URL.Query().Get("limit"), 50)

	tasks, err := h.taskRepo.List(r.Context(), filter)
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskFromDomain(t)
	}

	List(w, result, len(result))
}

// CreateTask создаёт новую задачу.
// POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.WorkType == "" {
		BadRequest(w, "work_type is required")
		return
	}
	if req.FieldID == uuid.Nil {
		BadRequest(w, "field_id is required")
		return
	}
	if req.ScheduledDate.IsZero() {
		BadRequest(w, "scheduled_date is required")
		return
	}

	// Участок должен существовать
	if _, err := h.fieldRepo.Get(r.Context(), req.FieldID); err != nil {
		if HandleStoreError(w, h.logger, err, "field not found") {
			return
		}
	}

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	task := &domain.TaskRecord{
		ID:            uuid.New(),
		FieldID:       req.FieldID,
		WorkType:      req.WorkType,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate.UTC(),
		Priority:      priority,
		Status:        domain.TaskStatusPending,
		AssignedTo:    req.AssignedTo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, TaskFromDomain(*task))
}

// GetTask возвращает задачу по ID.
// GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	task, err := h.taskRepo.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "task not found") {
		return
	}

	Success(w, TaskFromDomain(*task))
}

// CompleteTask завершает задачу.
// POST /api/v1/tasks/{id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	var req CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.CompletedBy == "" {
		BadRequest(w, "completed_by is required")
		return
	}

	done, next, err := h.taskRepo.Complete(r.Context(), id, req.CompletedBy, time.Now().UTC())
	if HandleStoreError(w, h.logger, err, "task not found") {
		return
	}

	resp := CompleteTaskResponse{Task: TaskFromDomain(*done)}
	if next != nil {
		n := TaskFromDomain(*next)
		resp.Next = &n
	}

	Success(w, resp)
}

// PostponeTask переносит плановую дату задачи.
// POST /api/v1/tasks/{id}/postpone
func (h *Handler) PostponeTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	var req PostponeTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Until.IsZero() {
		BadRequest(w, "until is required")
		return
	}

	task, err := h.taskRepo.Postpone(r.Context(), id, req.Until, time.Now().UTC())
	if HandleStoreError(w, h.logger, err, "task not found") {
		return
	}

	Success(w, TaskFromDomain(*task))
}

// parseLimit парсит limit из query с дефолтным значением.
func parseLimit(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
