package repo

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Agron/internal/store"
)

// Имена коллекций хранилища.
const (
	CollectionTasks    = "tasks"
	CollectionWorkLogs = "work_logs"
	CollectionFields   = "fields"
	CollectionInbox    = "inbox"
)

// marshalFields переводит доменную структуру в поля документа.
// Поле version не хранится в полях — версию ведёт само хранилище.
func marshalFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}

	delete(fields, "version")
	return fields, nil
}

// unmarshalDoc заполняет доменную структуру из документа.
// Версия берётся из документа, а не из полей.
func unmarshalDoc[T any](doc *store.Document, out *T) error {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("marshal document fields: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal document %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}
