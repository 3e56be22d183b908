package agent

import (
	"fmt"
)

// Имена воркеров.
const (
	WorkerFieldInfo     = "field_info"
	WorkerTaskManager   = "task_manager"
	WorkerWorkLogEntry  = "work_log_entry"
	WorkerWorkLogSearch = "work_log_search"
)

// Registration — запись реестра: воркер и описание его области.
type Registration struct {
	// Worker — сам воркер.
	Worker Worker

	// Capability — за что воркер отвечает. Попадает в логи
	// и в ответ диагностических ручек.
	Capability string
}

// Registry — статический реестр воркеров.
//
// Заполняется один раз при старте процесса и дальше только
// читается, поэтому синхронизация не нужна. Порядок регистрации
// сохраняется для детерминированного вывода.
type Registry struct {
	order   []string
	entries map[string]Registration
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register добавляет воркер в реестр.
func (r *Registry) Register(reg Registration) error {
	if reg.Worker == nil {
		return fmt.Errorf("register worker: nil worker")
	}
	name := reg.Worker.Name()
	if name == "" {
		return fmt.Errorf("register worker: empty name")
	}
	if name == RouteFinish {
		return fmt.Errorf("register worker %s: name reserved", name)
	}
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("register worker %s: %w", name, ErrDuplicateWorker)
	}

	r.order = append(r.order, name)
	r.entries[name] = reg
	return nil
}

// MustRegister — Register с паникой при ошибке.
// Для композиции в main, где ошибка регистрации — ошибка программы.
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Resolve возвращает воркер по имени.
func (r *Registry) Resolve(name string) (Worker, error) {
	reg, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("resolve worker %s: %w", name, ErrUnknownWorker)
	}
	return reg.Worker, nil
}

// Has проверяет, зарегистрирован ли воркер.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names возвращает имена воркеров в порядке регистрации.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Capabilities возвращает описания областей по именам.
func (r *Registry) Capabilities() map[string]string {
	out := make(map[string]string, len(r.entries))
	for name, reg := range r.entries {
		out[name] = reg.Capability
	}
	return out
}
