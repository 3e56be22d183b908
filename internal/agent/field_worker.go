package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/Agron/internal/domain"
	"github.com/shaiso/Agron/internal/repo"
)

// FieldInfoWorker отвечает на вопросы об участках:
// что растёт, какая площадь, когда посажено.
type FieldInfoWorker struct {
	fields *repo.FieldRepo
}

// NewFieldInfoWorker создаёт FieldInfoWorker.
func NewFieldInfoWorker(fields *repo.FieldRepo) *FieldInfoWorker {
	return &FieldInfoWorker{fields: fields}
}

// Name возвращает имя воркера.
func (w *FieldInfoWorker) Name() string { return WorkerFieldInfo }

// Execute ищет упомянутый участок и отвечает справкой по нему.
// Если участок не распознан — отвечает сводкой по всем участкам.
func (w *FieldInfoWorker) Execute(ctx context.Context, st *State) (*Delta, error) {
	all, err := w.fields.List(ctx)
	if err != nil {
		return nil, classifyFailure(w.Name(), fmt.Errorf("list fields: %w", err))
	}
	if len(all) == 0 {
		return NewDelta().
			Say(w.Name(), "no fields registered").
			SetReply("No fields are registered yet.", nil), nil
	}

	text := strings.ToLower(st.UserText())
	if field, ok := matchFieldName(text, all); ok {
		return NewDelta().
			Say(w.Name(), fmt.Sprintf("field %s resolved", field.Name)).
			SetReply(describeField(field), map[string]any{"field": field}), nil
	}

	return NewDelta().
		Say(w.Name(), fmt.Sprintf("no field matched, listing %d", len(all))).
		SetReply(describeFields(all), map[string]any{"fields": all}), nil
}

// describeField строит текстовую справку по участку.
func describeField(f *domain.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", f.Name)
	if f.CurrentCrop != "" {
		fmt.Fprintf(&b, ": growing %s", f.CurrentCrop)
		if f.PlantedAt != nil {
			fmt.Fprintf(&b, " (planted %s)", f.PlantedAt.Format("2006-01-02"))
		}
	} else {
		b.WriteString(": nothing planted")
	}
	if f.AreaSqm > 0 {
		fmt.Fprintf(&b, ", %.0f m²", f.AreaSqm)
	}
	if f.Notes != "" {
		fmt.Fprintf(&b, ". %s", f.Notes)
	}
	return b.String()
}

// describeFields строит сводку по всем участкам.
func describeFields(fields []domain.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fields (%d):\n", len(fields))
	for i := range fields {
		b.WriteString("- ")
		b.WriteString(describeField(&fields[i]))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
