package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
)

// Message DTOs

// SubmitMessageRequest — запрос на обработку сообщения.
type SubmitMessageRequest struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// MessageResponse — состояние обработки сообщения.
type MessageResponse struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	Text        string     `json:"text"`
	Status      string     `json:"status"`
	ReplyText   string     `json:"reply_text,omitempty"`
	Error       string     `json:"error,omitempty"`
	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// MessageFromDomain конвертирует domain.InboxEntry в MessageResponse.
func MessageFromDomain(e domain.InboxEntry) MessageResponse {
	return MessageResponse{
		ID:          e.ID,
		SenderID:    e.SenderID,
		Text:        e.Text,
		Status:      string(e.Status),
		ReplyText:   e.ReplyText,
		Error:       e.Error,
		ReceivedAt:  e.ReceivedAt,
		ProcessedAt: e.ProcessedAt,
	}
}

// Task DTOs

// CreateTaskRequest — запрос на создание задачи.
type CreateTaskRequest struct {
	FieldID       uuid.UUID `json:"field_id"`
	WorkType      string    `json:"work_type"`
	Description   string    `json:"description,omitempty"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Priority      string    `json:"priority,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
}

// CompleteTaskRequest — запрос на завершение задачи.
type CompleteTaskRequest struct {
	CompletedBy string `json:"completed_by"`
}

// PostponeTaskRequest — запрос на перенос задачи.
type PostponeTaskRequest struct {
	Until time.Time `json:"until"`
}

// TaskResponse — ответ с задачей.
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	FieldID       uuid.UUID  `json:"field_id"`
	WorkType      string     `json:"work_type"`
	Description   string     `json:"description,omitempty"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	Priority      string     `json:"priority,omitempty"`
	Status        string     `json:"status"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	CompletedBy   string     `json:"completed_by,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	PredecessorID *uuid.UUID `json:"predecessor_id,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TaskFromDomain конвертирует domain.TaskRecord в TaskResponse.
func TaskFromDomain(t domain.TaskRecord) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		FieldID:       t.FieldID,
		WorkType:      t.WorkType,
		Description:   t.Description,
		ScheduledDate: t.ScheduledDate,
		Priority:      t.Priority,
		Status:        string(t.Status),
		AssignedTo:    t.AssignedTo,
		CompletedBy:   t.CompletedBy,
		CompletedAt:   t.CompletedAt,
		PredecessorID: t.PredecessorID,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
	}
}

// CompleteTaskResponse — результат завершения: закрытая задача и,
// для повторяющихся работ, созданная следующая.
type CompleteTaskResponse struct {
	Task TaskResponse  `json:"task"`
	Next *TaskResponse `json:"next,omitempty"`
}

// WorkLog DTOs

// CreateWorkLogRequest — запрос на создание записи журнала.
type CreateWorkLogRequest struct {
	UserID    string     `json:"user_id"`
	FieldID   *uuid.UUID `json:"field_id,omitempty"`
	FieldName string     `json:"field_name,omitempty"`
	WorkType  string     `json:"work_type"`
	WorkDate  *time.Time `json:"work_date,omitempty"`
	Quantity  float64    `json:"quantity,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// WorkLogResponse — ответ с записью журнала.
type WorkLogResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	FieldID   uuid.UUID  `json:"field_id,omitempty"`
	FieldName string     `json:"field_name,omitempty"`
	WorkType  string     `json:"work_type"`
	WorkDate  time.Time  `json:"work_date"`
	Quantity  float64    `json:"quantity,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// WorkLogFromDomain конвертирует domain.WorkLog в WorkLogResponse.
func WorkLogFromDomain(l domain.WorkLog) WorkLogResponse {
	return WorkLogResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		FieldID:   l.FieldID,
		FieldName: l.FieldName,
		WorkType:  l.WorkType,
		WorkDate:  l.WorkDate,
		Quantity:  l.Quantity,
		Unit:      l.Unit,
		Notes:     l.Notes,
		TaskID:    l.TaskID,
		CreatedAt: l.CreatedAt,
	}
}

// Field DTOs

// CreateFieldRequest — запрос на создание участка.
type CreateFieldRequest struct {
	Name        string     `json:"name"`
	AreaSqm     float64    `json:"area_sqm,omitempty"`
	CurrentCrop string     `json:"current_crop,omitempty"`
	PlantedAt   *time.Time `json:"planted_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// SetFieldCropRequest — запрос на смену культуры.
type SetFieldCropRequest struct {
	Crop string `json:"crop"`
}

// FieldResponse — ответ с участком.
type FieldResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	AreaSqm     float64    `json:"area_sqm,omitempty"`
	CurrentCrop string     `json:"current_crop,omitempty"`
	PlantedAt   *time.Time `json:"planted_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FieldFromDomain конвертирует domain.Field в FieldResponse.
func FieldFromDomain(f domain.Field) FieldResponse {
	return FieldResponse{
		ID:          f.ID,
		Name:        f.Name,
		AreaSqm:     f.AreaSqm,
		CurrentCrop: f.CurrentCrop,
		PlantedAt:   f.PlantedAt,
		Notes:       f.Notes,
		Version:     f.Version,
		CreatedAt:   f.CreatedAt,
	}
}
