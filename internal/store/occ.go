package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Agron/internal/telemetry"
)

// ErrNoChange — сигнал от transform-функции: запись не нужна.
// Mutator возвращает текущий документ без записи и без ошибки.
var ErrNoChange = errors.New("no change")

// RetryPolicy — политика повторов при конфликте версий.
type RetryPolicy struct {
	// MaxAttempts — максимум полных циклов read-modify-write.
	MaxAttempts int

	// BaseDelay — задержка перед вторым циклом;
	// далее удваивается: BaseDelay × 2^attempt.
	BaseDelay time.Duration

	// MaxDelay — потолок задержки.
	MaxDelay time.Duration
}

// DefaultRetryPolicy — политика по умолчанию: 5 попыток,
// 25ms → 50ms → 100ms → 200ms, потолок 1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   25 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

// delay возвращает задержку перед попыткой attempt (считая с нуля).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(d, p.MaxDelay)
}

// Transform — чистая функция от полей документа к новым полям.
// Не должна иметь побочных эффектов: при конфликте версий
// Mutator вызовет её повторно со свежими полями.
type Transform func(fields map[string]any) (map[string]any, error)

// Mutator выполняет read-modify-write над одним документом
// с автоматическим повтором при конфликте версий.
//
// Гарантия: ни одно обновление не теряется молча. Изменение
// вызывающего либо отражено в итоговом состоянии документа,
// либо вызывающий получает ошибку (ErrContentionExceeded и далее
// сам решает, повторять ли логическую операцию целиком).
type Mutator struct {
	store  Store
	policy RetryPolicy
	logger *slog.Logger
}

// MutatorOption — функциональная опция Mutator.
type MutatorOption func(*Mutator)

// WithRetryPolicy задаёт политику повторов.
func WithRetryPolicy(p RetryPolicy) MutatorOption {
	return func(m *Mutator) { m.policy = p }
}

// WithLogger задаёт логгер.
func WithLogger(logger *slog.Logger) MutatorOption {
	return func(m *Mutator) { m.logger = logger }
}

// NewMutator создаёт Mutator с политикой по умолчанию.
func NewMutator(store Store, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		store:  store,
		policy: DefaultRetryPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.policy.MaxAttempts <= 0 {
		m.policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	return m
}

// Update читает документ, применяет transform и пишет результат
// условной записью. При конфликте версий перечитывает и повторяет,
// до MaxAttempts циклов с экспоненциальной задержкой. Каждая попытка —
// полный цикл read-modify-write, поэтому отмена контекста между
// попытками не оставляет несогласованного состояния.
func (m *Mutator) Update(ctx context.Context, collection, id string, transform Transform) (*Document, error) {
	var lastErr error

	for attempt := 0; attempt < m.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			telemetry.OCCRetries.Inc()
			if err := sleepCtx(ctx, m.policy.delay(attempt)); err != nil {
				return nil, err
			}
		}

		doc, err := m.store.Get(ctx, collection, id)
		if err != nil {
			return nil, err
		}

		newFields, err := transform(doc.Fields)
		if errors.Is(err, ErrNoChange) {
			return doc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("transform %s/%s: %w", collection, id, err)
		}

		newVersion, err := m.store.ConditionalPut(ctx, collection, id, doc.Version, newFields)
		if err == nil {
			return &Document{
				Collection: collection,
				ID:         id,
				Version:    newVersion,
				Fields:     newFields,
			}, nil
		}

		if errors.Is(err, ErrVersionConflict) {
			telemetry.VersionConflicts.Inc()
			m.logger.Debug("version conflict, retrying",
				"collection", collection,
				"id", id,
				"attempt", attempt+1,
			)
			lastErr = err
			continue
		}

		return nil, err
	}

	return nil, fmt.Errorf("update %s/%s after %d attempts: %w (last: %v)",
		collection, id, m.policy.MaxAttempts, ErrContentionExceeded, lastErr)
}

// sleepCtx ждёт d или отмену контекста.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
