package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/store"
)

// WorkLogRepo — репозиторий записей о выполненных работах.
//
// Записи append-only: после создания не меняются, поэтому
// репозиторию достаточно вставок и выборок.
type WorkLogRepo struct {
	store store.Store
}

// NewWorkLogRepo создаёт WorkLogRepo.
func NewWorkLogRepo(s store.Store) *WorkLogRepo {
	return &WorkLogRepo{store: s}
}

// Create создаёт запись о работе (версия 1).
func (r *WorkLogRepo) Create(ctx context.Context, log *domain.WorkLog) error {
	fields, err := marshalFields(log)
	if err != nil {
		return err
	}

	version, err := r.store.ConditionalPut(ctx, CollectionWorkLogs, log.ID.String(), 0, fields)
	if err != nil {
		return fmt.Errorf("create work log: %w", err)
	}
	log.Version = version
	return nil
}

// Get возвращает запись по ID.
func (r *WorkLogRepo) Get(ctx context.Context, id uuid.UUID) (*domain.WorkLog, error) {
	doc, err := r.store.Get(ctx, CollectionWorkLogs, id.String())
	if err != nil {
		return nil, err
	}

	var log domain.WorkLog
	if err := unmarshalDoc(doc, &log); err != nil {
		return nil, err
	}
	log.Version = doc.Version
	return &log, nil
}

// WorkLogFilter — параметры поиска записей.
type WorkLogFilter struct {
	UserID    string
	WorkType  string
	FieldName string // подстрока названия участка
	From      *time.Time
	To        *time.Time
	Limit     int
}

// Search возвращает записи по фильтру, свежие первыми.
func (r *WorkLogRepo) Search(ctx context.Context, filter WorkLogFilter) ([]domain.WorkLog, error) {
	q := store.Query{
		Eq:     map[string]string{},
		SortBy: "work_date",
		Desc:   true,
		Limit:  filter.Limit,
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if filter.UserID != "" {
		q.Eq["user_id"] = filter.UserID
	}
	if filter.WorkType != "" {
		q.Eq["work_type"] = filter.WorkType
	}
	if filter.FieldName != "" {
		q.Sub = map[string]string{"field_name": filter.FieldName}
	}
	if filter.From != nil || filter.To != nil {
		rng := &store.Range{Field: "work_date"}
		if filter.From != nil {
			rng.From = filter.From.UTC().Format(time.RFC3339)
		}
		if filter.To != nil {
			rng.To = filter.To.UTC().Format(time.RFC3339)
		}
		q.Range = rng
	}

	docs, err := r.store.Query(ctx, CollectionWorkLogs, q)
	if err != nil {
		return nil, fmt.Errorf("search work logs: %w", err)
	}

	logs := make([]domain.WorkLog, 0, len(docs))
	for i := range docs {
		var log domain.WorkLog
		if err := unmarshalDoc(&docs[i], &log); err != nil {
			return nil, err
		}
		log.Version = docs[i].Version
		logs = append(logs, log)
	}
	return logs, nil
}
