package domain

import (
	"time"

	"github.com/google/uuid"
)

// Field — участок: поле, теплица, грядка.
type Field struct {
	// ID — уникальный идентификатор участка.
	ID uuid.UUID `json:"id"`

	// Name — название («Greenhouse 1», «North field»).
	Name string `json:"name"`

	// AreaSqm — площадь в квадратных метрах.
	AreaSqm float64 `json:"area_sqm,omitempty"`

	// CurrentCrop — текущая культура («tomato», «cucumber»).
	CurrentCrop string `json:"current_crop,omitempty"`

	// PlantedAt — дата посадки текущей культуры.
	PlantedAt *time.Time `json:"planted_at,omitempty"`

	// Notes — примечания.
	Notes string `json:"notes,omitempty"`

	// Version — версия записи для optimistic concurrency control.
	Version int64 `json:"version"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}
