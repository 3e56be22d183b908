package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
)

// ListFields возвращает все участки.
// GET /api/v1/fields
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fieldRepo.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	result := make([]FieldResponse, len(fields))
	for i, f := range fields {
		result[i] = FieldFromDomain(f)
	}

	List(w, result, len(result))
}

// CreateField создаёт участок.
// POST /api/v1/fields
func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	var req CreateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now().UTC()
	field := &domain.Field{
		ID:          uuid.New(),
		Name:        req.Name,
		AreaSqm:     req.AreaSqm,
		CurrentCrop: req.CurrentCrop,
		PlantedAt:   req.PlantedAt,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.fieldRepo.Create(r.Context(), field); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FieldFromDomain(*field))
}

// GetField возвращает участок по ID.
// GET /api/v1/fields/{id}
func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid field id")
		return
	}

	field, err := h.fieldRepo.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "field not found") {
		return
	}

	Success(w, FieldFromDomain(*field))
}

// SetFieldCrop меняет текущую культуру участка.
// PUT /api/v1/fields/{id}/crop
func (h *Handler) SetFieldCrop(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid field id")
		return
	}

	var req SetFieldCropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	field, err := h.fieldRepo.SetCurrentCrop(r.Context(), id, req.Crop)
	if HandleStoreError(w, h.logger, err, "field not found") {
		return
	}

	Success(w, FieldFromDomain(*field))
}
