package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore — реализация Store в памяти.
//
// Используется в тестах и при локальном запуске без Postgres.
// Семантика версий и транзакций идентична PGStore: один мьютекс
// на всё хранилище даёт те же гарантии видимости, что и
// транзакции Postgres.
type MemStore struct {
	mu   sync.Mutex
	data map[string]map[string]*memDoc // collection → id → документ
}

type memDoc struct {
	version int64
	fields  map[string]any
}

// NewMemStore создаёт пустое хранилище в памяти.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string]map[string]*memDoc),
	}
}

// Get возвращает документ или ErrNotFound.
func (s *MemStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}

	return &Document{
		Collection: collection,
		ID:         id,
		Version:    doc.version,
		Fields:     copyFields(doc.fields),
	}, nil
}

// ConditionalPut записывает документ при совпадении версии.
func (s *MemStore) ConditionalPut(ctx context.Context, collection, id string, expectedVersion int64, fields map[string]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putLocked(collection, id, expectedVersion, fields)
}

// putLocked — условная запись под уже взятым мьютексом.
func (s *MemStore) putLocked(collection, id string, expectedVersion int64, fields map[string]any) (int64, error) {
	col := s.data[collection]
	doc, exists := col[id]

	if expectedVersion == 0 {
		// Вставка: документ не должен существовать.
		if exists {
			return 0, &ConflictError{
				Collection:     collection,
				ID:             id,
				Expected:       0,
				CurrentVersion: doc.version,
			}
		}
		if col == nil {
			col = make(map[string]*memDoc)
			s.data[collection] = col
		}
		col[id] = &memDoc{version: 1, fields: copyFields(fields)}
		return 1, nil
	}

	if !exists {
		return 0, fmt.Errorf("put %s/%s: %w", collection, id, ErrNotFound)
	}
	if doc.version != expectedVersion {
		return 0, &ConflictError{
			Collection:     collection,
			ID:             id,
			Expected:       expectedVersion,
			CurrentVersion: doc.version,
		}
	}

	doc.version++
	doc.fields = copyFields(fields)
	return doc.version, nil
}

// ConditionalDelete удаляет документ при совпадении версии.
func (s *MemStore) ConditionalDelete(ctx context.Context, collection, id string, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.data[collection][id]
	if !exists {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	if doc.version != expectedVersion {
		return &ConflictError{
			Collection:     collection,
			ID:             id,
			Expected:       expectedVersion,
			CurrentVersion: doc.version,
		}
	}

	delete(s.data[collection], id)
	return nil
}

// Query возвращает документы коллекции по фильтру.
func (s *MemStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Document
	for id, doc := range s.data[collection] {
		if !matches(doc.fields, q) {
			continue
		}
		out = append(out, Document{
			Collection: collection,
			ID:         id,
			Version:    doc.version,
			Fields:     copyFields(doc.fields),
		})
	}

	if q.SortBy != "" {
		sort.Slice(out, func(i, j int) bool {
			a := fieldString(out[i].Fields, q.SortBy)
			b := fieldString(out[j].Fields, q.SortBy)
			if q.Desc {
				return a > b
			}
			return a < b
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

// Transact атомарно применяет список операций.
//
// Предусловия проверяются по состоянию внутри транзакции: если две
// операции адресуют один документ, вторая видит результат первой —
// как последовательные statement'ы одной транзакции Postgres.
func (s *MemStore) Transact(ctx context.Context, ops []Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Мутации применяются к копиям затронутых документов; в хранилище
	// они попадают только после успеха всех операций, поэтому abort
	// не оставляет следов. nil в staged — удаление внутри транзакции.
	type docKey struct{ collection, id string }
	staged := make(map[docKey]*memDoc, len(ops))

	load := func(k docKey) (*memDoc, bool) {
		if doc, ok := staged[k]; ok {
			return doc, doc != nil
		}
		doc, ok := s.data[k.collection][k.id]
		if !ok {
			return nil, false
		}
		return &memDoc{version: doc.version, fields: copyFields(doc.fields)}, true
	}

	for i, op := range ops {
		k := docKey{op.Collection, op.ID}
		doc, exists := load(k)

		switch op.Kind {
		case OpInsert:
			if exists {
				return &AbortedError{
					FailedIndex: i,
					Reason: &ConflictError{
						Collection:     op.Collection,
						ID:             op.ID,
						Expected:       0,
						CurrentVersion: doc.version,
					},
				}
			}
			staged[k] = &memDoc{version: 1, fields: copyFields(op.Fields)}
		case OpUpdate:
			if !exists {
				return &AbortedError{FailedIndex: i, Reason: ErrNotFound}
			}
			if doc.version != op.ExpectedVersion {
				return &AbortedError{
					FailedIndex: i,
					Reason: &ConflictError{
						Collection:     op.Collection,
						ID:             op.ID,
						Expected:       op.ExpectedVersion,
						CurrentVersion: doc.version,
					},
				}
			}
			doc.version++
			doc.fields = copyFields(op.Fields)
			staged[k] = doc
		case OpDelete:
			if !exists {
				return &AbortedError{FailedIndex: i, Reason: ErrNotFound}
			}
			if doc.version != op.ExpectedVersion {
				return &AbortedError{
					FailedIndex: i,
					Reason: &ConflictError{
						Collection:     op.Collection,
						ID:             op.ID,
						Expected:       op.ExpectedVersion,
						CurrentVersion: doc.version,
					},
				}
			}
			staged[k] = nil
		default:
			return &AbortedError{FailedIndex: i, Reason: fmt.Errorf("unknown op kind %q", op.Kind)}
		}
	}

	for k, doc := range staged {
		if doc == nil {
			delete(s.data[k.collection], k.id)
			continue
		}
		col := s.data[k.collection]
		if col == nil {
			col = make(map[string]*memDoc)
			s.data[k.collection] = col
		}
		col[k.id] = doc
	}

	return nil
}

// --- Helpers ---

// copyFields делает глубокую копию полей через JSON round-trip.
// Заодно нормализует типы к тем, что вернёт Postgres (числа → float64).
func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		// Поля всегда приходят из json.Marshal доменных структур,
		// немаршалируемых значений здесь не бывает.
		panic(fmt.Sprintf("memstore: unmarshalable fields: %v", err))
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("memstore: %v", err))
	}
	return out
}

// matches проверяет документ на соответствие фильтру.
func matches(fields map[string]any, q Query) bool {
	for k, want := range q.Eq {
		if fieldString(fields, k) != want {
			return false
		}
	}

	for k, sub := range q.Sub {
		val := strings.ToLower(fieldString(fields, k))
		if !strings.Contains(val, strings.ToLower(sub)) {
			return false
		}
	}

	if q.Range != nil {
		val := fieldString(fields, q.Range.Field)
		if q.Range.From != "" && val < q.Range.From {
			return false
		}
		if q.Range.To != "" && val > q.Range.To {
			return false
		}
	}

	return true
}

// fieldString возвращает строковое представление поля.
func fieldString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
