package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// MessageResponse — состояние обработки сообщения из API.
type MessageResponse struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	Text        string `json:"text"`
	Status      string `json:"status"`
	ReplyText   string `json:"reply_text,omitempty"`
	Error       string `json:"error,omitempty"`
	ReceivedAt  string `json:"received_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

// TaskResponse — задача из API.
type TaskResponse struct {
	ID            string `json:"id"`
	FieldID       string `json:"field_id"`
	WorkType      string `json:"work_type"`
	Description   string `json:"description,omitempty"`
	ScheduledDate string `json:"scheduled_date"`
	Priority      string `json:"priority,omitempty"`
	Status        string `json:"status"`
	AssignedTo    string `json:"assigned_to,omitempty"`
	CompletedBy   string `json:"completed_by,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
	PredecessorID string `json:"predecessor_id,omitempty"`
	Version       int64  `json:"version"`
	CreatedAt     string `json:"created_at"`
}

// CompleteTaskResponse — результат завершения задачи.
type CompleteTaskResponse struct {
	Task TaskResponse  `json:"task"`
	Next *TaskResponse `json:"next,omitempty"`
}

// WorkLogResponse — запись журнала из API.
type WorkLogResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	FieldID   string  `json:"field_id,omitempty"`
	FieldName string  `json:"field_name,omitempty"`
	WorkType  string  `json:"work_type"`
	WorkDate  string  `json:"work_date"`
	Quantity  float64 `json:"quantity,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	TaskID    string  `json:"task_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// FieldResponse — участок из API.
type FieldResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AreaSqm     float64 `json:"area_sqm,omitempty"`
	CurrentCrop string  `json:"current_crop,omitempty"`
	PlantedAt   string  `json:"planted_at,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Version     int64   `json:"version"`
	CreatedAt   string  `json:"created_at"`
}

// --- Request types ---

// SubmitMessageRequest — отправка сообщения в обработку.
type SubmitMessageRequest struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// CreateTaskRequest — создание задачи.
type CreateTaskRequest struct {
	FieldID       string `json:"field_id"`
	WorkType      string `json:"work_type"`
	Description   string `json:"description,omitempty"`
	ScheduledDate string `json:"scheduled_date"`
	Priority      string `json:"priority,omitempty"`
	AssignedTo    string `json:"assigned_to,omitempty"`
}

// CreateFieldRequest — создание участка.
type CreateFieldRequest struct {
	Name        string  `json:"name"`
	AreaSqm     float64 `json:"area_sqm,omitempty"`
	CurrentCrop string  `json:"current_crop,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// ListTasksOpts — параметры фильтрации задач.
type ListTasksOpts struct {
	Status   string
	WorkType string
	FieldID  string
	Day      string
	Limit    int
}

// ListWorkLogsOpts — параметры фильтрации журнала.
type ListWorkLogsOpts struct {
	UserID    string
	WorkType  string
	FieldName string
	From      string
	To        string
	Limit     int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Agron API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Messages ---

// SubmitMessage отправляет сообщение в обработку.
func (c *Client) SubmitMessage(senderID, text string) (*MessageResponse, error) {
	var msg MessageResponse
	err := c.post("/api/v1/messages", SubmitMessageRequest{SenderID: senderID, Text: text}, &msg)
	return &msg, err
}

// GetMessage возвращает состояние обработки сообщения.
func (c *Client) GetMessage(id string) (*MessageResponse, error) {
	var msg MessageResponse
	err := c.get("/api/v1/messages/"+id, &msg)
	return &msg, err
}

// --- Tasks ---

// ListTasks возвращает задачи с фильтрацией.
func (c *Client) ListTasks(opts ListTasksOpts) ([]TaskResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.WorkType != "" {
		params.Set("work_type", opts.WorkType)
	}
	if opts.FieldID != "" {
		params.Set("field_id", opts.FieldID)
	}
	if opts.Day != "" {
		params.Set("day", opts.Day)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var tasks []TaskResponse
	err := c.list("/api/v1/tasks", params, &tasks)
	return tasks, err
}

// CreateTask создаёт задачу.
func (c *Client) CreateTask(req CreateTaskRequest) (*TaskResponse, error) {
	var task TaskResponse
	err := c.post("/api/v1/tasks", req, &task)
	return &task, err
}

// GetTask возвращает задачу по ID.
func (c *Client) GetTask(id string) (*TaskResponse, error) {
	var task TaskResponse
	err := c.get("/api/v1/tasks/"+id, &task)
	return &task, err
}

// CompleteTask завершает задачу.
func (c *Client) CompleteTask(id, completedBy string) (*CompleteTaskResponse, error) {
	body := map[string]string{"completed_by": completedBy}
	var result CompleteTaskResponse
	err := c.post("/api/v1/tasks/"+id+"/complete", body, &result)
	return &result, err
}

// PostponeTask переносит задачу на указанную дату.
func (c *Client) PostponeTask(id, until string) (*TaskResponse, error) {
	body := map[string]string{"until": until}
	var task TaskResponse
	err := c.post("/api/v1/tasks/"+id+"/postpone", body, &task)
	return &task, err
}

// --- Work logs ---

// ListWorkLogs возвращает записи журнала.
func (c *Client) ListWorkLogs(opts ListWorkLogsOpts) ([]WorkLogResponse, error) {
	params := url.Values{}
	if opts.UserID != "" {
		params.Set("user_id", opts.UserID)
	}
	if opts.WorkType != "" {
		params.Set("work_type", opts.WorkType)
	}
	if opts.FieldName != "" {
		params.Set("field_name", opts.FieldName)
	}
	if opts.From != "" {
		params.Set("from", opts.From)
	}
	if opts.To != "" {
		params.Set("to", opts.To)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var logs []WorkLogResponse
	err := c.list("/api/v1/worklogs", params, &logs)
	return logs, err
}

// --- Fields ---

// ListFields возвращает все участки.
func (c *Client) ListFields() ([]FieldResponse, error) {
	var fields []FieldResponse
	err := c.list("/api/v1/fields", nil, &fields)
	return fields, err
}

// CreateField создаёт участок.
func (c *Client) CreateField(req CreateFieldRequest) (*FieldResponse, error) {
	var field FieldResponse
	err := c.post("/api/v1/fields", req, &field)
	return &field, err
}

// GetField возвращает участок по ID.
func (c *Client) GetField(id string) (*FieldResponse, error) {
	var field FieldResponse
	err := c.get("/api/v1/fields/"+id, &field)
	return &field, err
}

// SetFieldCrop меняет культуру участка.
func (c *Client) SetFieldCrop(id, crop string) (*FieldResponse, error) {
	body := map[string]string{"crop": crop}
	var field FieldResponse
	err := c.put("/api/v1/fields/"+id+"/crop", body, &field)
	return &field, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode >= 400 {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
	}
	return nil
}
