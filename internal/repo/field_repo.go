package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/store"
)

// FieldRepo — репозиторий участков.
type FieldRepo struct {
	store   store.Store
	mutator *store.Mutator
}

// NewFieldRepo создаёт FieldRepo.
func NewFieldRepo(s store.Store) *FieldRepo {
	return &FieldRepo{
		store:   s,
		mutator: store.NewMutator(s),
	}
}

// Create создаёт участок (версия 1).
func (r *FieldRepo) Create(ctx context.Context, field *domain.Field) error {
	fields, err := marshalFields(field)
	if err != nil {
		return err
	}

	version, err := r.store.ConditionalPut(ctx, CollectionFields, field.ID.String(), 0, fields)
	if err != nil {
		return fmt.Errorf("create field: %w", err)
	}
	field.Version = version
	return nil
}

// Get возвращает участок по ID.
func (r *FieldRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Field, error) {
	doc, err := r.store.Get(ctx, CollectionFields, id.String())
	if err != nil {
		return nil, err
	}
	return fieldFromDoc(doc)
}

// List возвращает все участки, отсортированные по названию.
func (r *FieldRepo) List(ctx context.Context) ([]domain.Field, error) {
	docs, err := r.store.Query(ctx, CollectionFields, store.Query{SortBy: "name"})
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return fieldsFromDocs(docs)
}

// FindByName ищет участки по подстроке названия (без учёта регистра).
func (r *FieldRepo) FindByName(ctx context.Context, name string) ([]domain.Field, error) {
	docs, err := r.store.Query(ctx, CollectionFields, store.Query{
		Sub:    map[string]string{"name": name},
		SortBy: "name",
	})
	if err != nil {
		return nil, fmt.Errorf("find fields by name: %w", err)
	}
	return fieldsFromDocs(docs)
}

// SetCurrentCrop меняет текущую культуру участка.
func (r *FieldRepo) SetCurrentCrop(ctx context.Context, id uuid.UUID, crop string) (*domain.Field, error) {
	doc, err := r.mutator.Update(ctx, CollectionFields, id.String(), func(fields map[string]any) (map[string]any, error) {
		var f domain.Field
		if err := unmarshalDoc(&store.Document{Collection: CollectionFields, Fields: fields}, &f); err != nil {
			return nil, err
		}
		f.CurrentCrop = crop
		return marshalFields(&f)
	})
	if err != nil {
		return nil, err
	}
	return fieldFromDoc(doc)
}

// --- Helpers ---

func fieldFromDoc(doc *store.Document) (*domain.Field, error) {
	var field domain.Field
	if err := unmarshalDoc(doc, &field); err != nil {
		return nil, err
	}
	field.Version = doc.Version
	return &field, nil
}

func fieldsFromDocs(docs []store.Document) ([]domain.Field, error) {
	fields := make([]domain.Field, 0, len(docs))
	for i := range docs {
		f, err := fieldFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, nil
}
