package agent

import (
	"context"
	"testing"
	"time"

	"github.com/shaiso/Agron/internal/domain"
)

func TestKeywordClassifier_ByText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"completion word", "finished spraying greenhouse 1", WorkerTaskManager},
		{"completion word russian", "закончил полив на южном поле", WorkerTaskManager},
		{"postpone", "postpone the watering until next week", WorkerTaskManager},
		{"task list", "what's the plan for today", WorkerTaskManager},
		{"search log", "show me the irrigation history", WorkerWorkLogSearch},
		{"search russian", "что делали на прошлой неделе", WorkerWorkLogSearch},
		{"report verb", "watered the tomatoes, 200 liters", WorkerWorkLogEntry},
		{"report verb russian", "полил томаты в теплице", WorkerWorkLogEntry},
		{"field question", "what is growing in greenhouse 2", WorkerFieldInfo},
		{"field question russian", "какая культура на северном участке", WorkerFieldInfo},
		{"unrecognized", "привет", RouteFinish},
		{"empty", "", RouteFinish},
	}

	c := NewKeywordClassifier()
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(ctx, testState(tt.text))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordClassifier_ReplyFinishes(t *testing.T) {
	c := NewKeywordClassifier()
	st := testState("what's the plan for today")

	st.Apply(NewDelta().SetReply("Today: water greenhouse 1.", nil))

	got, err := c.Classify(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != RouteFinish {
		t.Errorf("expected FINISH when reply is ready, got %s", got)
	}
}

// Завершение повторяющейся задачи проходит два воркера: даже при
// готовом ответе классификатор сначала отправляет состояние в
// work_log_entry, и только после записи журнала — в FINISH.
func TestKeywordClassifier_CompletedTaskChainsToWorkLog(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()
	st := testState("закончил полив")

	done := &domain.TaskRecord{WorkType: domain.WorkTypeIrrigation}
	st.Apply(NewDelta().
		SetReply("Watering marked done.", nil).
		Set(ScratchCompletedTask, done))

	got, err := c.Classify(ctx, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != WorkerWorkLogEntry {
		t.Errorf("expected %s, got %s", WorkerWorkLogEntry, got)
	}

	// После записи журнала цепочка завершается.
	st.Apply(NewDelta().Set(ScratchWorkLogID, "wl-1"))

	got, err = c.Classify(ctx, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != RouteFinish {
		t.Errorf("expected FINISH after work log recorded, got %s", got)
	}
}

func TestDetectWorkType(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"watered the greenhouse", domain.WorkTypeIrrigation, true},
		{"sprayed for pests", domain.WorkTypePestControl, true},
		{"собрал урожай огурцов", domain.WorkTypeHarvest, true},
		{"finished the fertilizing", domain.WorkTypeFertilizing, true},
		{"hello there", "", false},
	}

	for _, tt := range tests {
		got, ok := detectWorkType(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("detectWorkType(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDetectQuantity(t *testing.T) {
	tests := []struct {
		text  string
		value float64
		unit  string
		ok    bool
	}{
		{"used 200 liters on the field", 200, "l", true},
		{"внёс 12,5 кг удобрений", 12.5, "kg", true},
		{"applied 3.5 kg", 3.5, "kg", true},
		{"полил 100 л", 100, "l", true},
		{"no numbers here", 0, "", false},
	}

	for _, tt := range tests {
		value, unit, ok := detectQuantity(tt.text)
		if ok != tt.ok || value != tt.value || unit != tt.unit {
			t.Errorf("detectQuantity(%q) = (%v, %q, %v), want (%v, %q, %v)",
				tt.text, value, unit, ok, tt.value, tt.unit, tt.ok)
		}
	}
}

func TestDetectDateRange(t *testing.T) {
	now := time.Date(2026, 8, 25, 15, 30, 0, 0, time.UTC)
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		text string
		from time.Time
		to   time.Time
		ok   bool
	}{
		{"what did we do today", day, day.Add(24 * time.Hour), true},
		{"show yesterday's work", day.Add(-24 * time.Hour), day, true},
		{"history for last week", day.Add(-7 * 24 * time.Hour), day.Add(24 * time.Hour), true},
		{"irrigation history", time.Time{}, time.Time{}, false},
	}

	for _, tt := range tests {
		from, to, ok := detectDateRange(tt.text, now)
		if ok != tt.ok || !from.Equal(tt.from) || !to.Equal(tt.to) {
			t.Errorf("detectDateRange(%q) = (%v, %v, %v), want (%v, %v, %v)",
				tt.text, from, to, ok, tt.from, tt.to, tt.ok)
		}
	}
}

func TestMatchFieldName_LongestWins(t *testing.T) {
	fields := []domain.Field{
		{Name: "Greenhouse"},
		{Name: "Greenhouse 1"},
		{Name: "South plot"},
	}

	field, ok := matchFieldName("finished spraying greenhouse 1 this morning", fields)
	if !ok {
		t.Fatal("expected a match")
	}
	if field.Name != "Greenhouse 1" {
		t.Errorf("expected longest match 'Greenhouse 1', got %q", field.Name)
	}

	if _, ok := matchFieldName("no field mentioned", fields); ok {
		t.Error("expected no match")
	}
}
