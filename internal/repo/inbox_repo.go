package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/store"
)

// InboxRepo — репозиторий входящих сообщений.
//
// Claim реализует протокол «ровно один обработчик»: переход
// NEW → PROCESSING — условная запись, и при нескольких конкурентных
// оркестраторах захват удаётся ровно одному. Проигравший получает
// ErrAlreadyClaimed и пропускает сообщение.
type InboxRepo struct {
	store   store.Store
	mutator *store.Mutator
}

// NewInboxRepo создаёт InboxRepo.
func NewInboxRepo(s store.Store) *InboxRepo {
	return &InboxRepo{
		store:   s,
		mutator: store.NewMutator(s),
	}
}

// Create сохраняет входящее сообщение со статусом NEW.
func (r *InboxRepo) Create(ctx context.Context, entry *domain.InboxEntry) error {
	entry.Status = domain.InboxStatusNew

	fields, err := marshalFields(entry)
	if err != nil {
		return err
	}

	version, err := r.store.ConditionalPut(ctx, CollectionInbox, entry.ID, 0, fields)
	if err != nil {
		return fmt.Errorf("create inbox entry: %w", err)
	}
	entry.Version = version
	return nil
}

// Get возвращает сообщение по ID.
func (r *InboxRepo) Get(ctx context.Context, id string) (*domain.InboxEntry, error) {
	doc, err := r.store.Get(ctx, CollectionInbox, id)
	if err != nil {
		return nil, err
	}
	return inboxFromDoc(doc)
}

// ListNew возвращает необработанные сообщения, старые первыми.
func (r *InboxRepo) ListNew(ctx context.Context, limit int) ([]domain.InboxEntry, error) {
	docs, err := r.store.Query(ctx, CollectionInbox, store.Query{
		Eq:     map[string]string{"status": string(domain.InboxStatusNew)},
		SortBy: "received_at",
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list new inbox entries: %w", err)
	}

	entries := make([]domain.InboxEntry, 0, len(docs))
	for i := range docs {
		e, err := inboxFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Claim захватывает сообщение для обработки: NEW → PROCESSING.
//
// Намеренно без retry: конфликт версии означает, что сообщение
// захватил другой оркестратор, повторять нечего.
func (r *InboxRepo) Claim(ctx context.Context, id string) (*domain.InboxEntry, error) {
	entry, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.InboxStatusNew {
		return nil, fmt.Errorf("claim inbox entry %s: %w", id, ErrAlreadyClaimed)
	}

	expected := entry.Version
	entry.Status = domain.InboxStatusProcessing

	fields, err := marshalFields(entry)
	if err != nil {
		return nil, err
	}

	version, err := r.store.ConditionalPut(ctx, CollectionInbox, id, expected, fields)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, fmt.Errorf("claim inbox entry %s: %w", id, ErrAlreadyClaimed)
	}
	if err != nil {
		return nil, fmt.Errorf("claim inbox entry %s: %w", id, err)
	}

	entry.Version = version
	return entry, nil
}

// MarkDone фиксирует успешную обработку и текст ответа.
func (r *InboxRepo) MarkDone(ctx context.Context, id, replyText string, at time.Time) error {
	return r.finish(ctx, id, domain.InboxStatusDone, replyText, "", at)
}

// MarkFailed фиксирует ошибку обработки.
func (r *InboxRepo) MarkFailed(ctx context.Context, id, errMsg string, at time.Time) error {
	return r.finish(ctx, id, domain.InboxStatusFailed, "", errMsg, at)
}

// finish переводит сообщение в финальный статус через Mutator.
func (r *InboxRepo) finish(ctx context.Context, id string, status domain.InboxStatus, replyText, errMsg string, at time.Time) error {
	_, err := r.mutator.Update(ctx, CollectionInbox, id, func(fields map[string]any) (map[string]any, error) {
		var e domain.InboxEntry
		if err := unmarshalDoc(&store.Document{Collection: CollectionInbox, Fields: fields}, &e); err != nil {
			return nil, err
		}
		if e.Status.IsTerminal() {
			return nil, store.ErrNoChange
		}
		e.Status = status
		e.ReplyText = replyText
		e.Error = errMsg
		processedAt := at
		e.ProcessedAt = &processedAt
		return marshalFields(&e)
	})
	if err != nil {
		return fmt.Errorf("finish inbox entry %s: %w", id, err)
	}
	return nil
}

// --- Helpers ---

func inboxFromDoc(doc *store.Document) (*domain.InboxEntry, error) {
	var entry domain.InboxEntry
	if err := unmarshalDoc(doc, &entry); err != nil {
		return nil, err
	}
	entry.Version = doc.Version
	return &entry, nil
}
