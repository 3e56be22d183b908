package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Messages
	mux.Handle("POST /api/v1/messages", chain(http.HandlerFunc(h.SubmitMessage)))
	mux.Handle("GET /api/v1/messages/{id}", chain(http.HandlerFunc(h.GetMessage)))

	// Tasks
	mux.Handle("GET /api/v1/tasks", chain(http.HandlerFunc(h.ListTasks)))
	mux.Handle("POST /api/v1/tasks", chain(http.HandlerFunc(h.CreateTask)))
	mux.Handle("GET /api/v1/tasks/{id}", chain(http.HandlerFunc(h.GetTask)))
	mux.Handle("POST /api/v1/tasks/{id}/complete", chain(http.HandlerFunc(h.CompleteTask)))
	mux.Handle("POST /api/v1/tasks/{id}/postpone", chain(http.HandlerFunc(h.PostponeTask)))

	// Work logs
	mux.Handle("GET /api/v1/worklogs", chain(http.HandlerFunc(h.ListWorkLogs)))
	mux.Handle("POST /api/v1/worklogs", chain(http.HandlerFunc(h.CreateWorkLog)))

	// Fields
	mux.Handle("GET /api/v1/fields", chain(http.HandlerFunc(h.ListFields)))
	mux.Handle("POST /api/v1/fields", chain(http.HandlerFunc(h.CreateField)))
	mux.Handle("GET /api/v1/fields/{id}", chain(http.HandlerFunc(h.GetField)))
	mux.Handle("PUT /api/v1/fields/{id}/crop", chain(http.HandlerFunc(h.SetFieldCrop)))
}
