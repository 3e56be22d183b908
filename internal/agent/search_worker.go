package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
)

// WorkLogSearchWorker ищет по журналу работ: «что делали вчера»,
// «покажи поливы за неделю».
type WorkLogSearchWorker struct {
	logs   *repo.WorkLogRepo
	fields *repo.FieldRepo
	now    func() time.Time
}

// NewWorkLogSearchWorker создаёт WorkLogSearchWorker.
// now == nil означает time.Now.
func NewWorkLogSearchWorker(logs *repo.WorkLogRepo, fields *repo.FieldRepo, now func() time.Time) *WorkLogSearchWorker {
	if now == nil {
		now = time.Now
	}
	return &WorkLogSearchWorker{logs: logs, fields: fields, now: now}
}

// Name возвращает имя воркера.
func (w *WorkLogSearchWorker) Name() string { return WorkerWorkLogSearch }

// Execute собирает фильтр из текста запроса и отвечает найденным.
func (w *WorkLogSearchWorker) Execute(ctx context.Context, st *State) (*Delta, error) {
	text := strings.ToLower(st.UserText())

	filter := repo.WorkLogFilter{Limit: 20}
	if wt, ok := detectWorkType(text); ok {
		filter.WorkType = wt
	}
	if from, to, ok := detectDateRange(text, w.now()); ok {
		filter.From = &from
		filter.To = &to
	}
	if fields, err := w.fields.List(ctx); err == nil {
		if field, ok := matchFieldName(text, fields); ok {
			filter.FieldName = field.Name
		}
	}

	logs, err := w.logs.Search(ctx, filter)
	if err != nil {
		return nil, classifyFailure(w.Name(), err)
	}
	if len(logs) == 0 {
		return NewDelta().
			Say(w.Name(), "no work logs matched").
			SetReply("No work records found for that query.", nil), nil
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("found %d work logs", len(logs))).
		SetReply(describeWorkLogs(logs), map[string]any{"work_logs": logs}), nil
}

// describeWorkLogs строит текстовый список найденных записей.
func describeWorkLogs(logs []domain.WorkLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Work records (%d):\n", len(logs))
	for i := range logs {
		log := &logs[i]
		fmt.Fprintf(&b, "- %s %s", log.WorkDate.Format("2006-01-02"), log.WorkType)
		if log.FieldName != "" {
			fmt.Fprintf(&b, " at %s", log.FieldName)
		}
		if log.Quantity > 0 {
			fmt.Fprintf(&b, " (%.1f %s)", log.Quantity, log.Unit)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
