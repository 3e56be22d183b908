// Package cli реализует инструмент командной строки Agron.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Agron API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для отправки сообщений и управления задачами,
// журналом работ и участками.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Agron API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	tasks, err := client.ListTasks(cli.ListTasksOpts{Status: "PENDING"})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: agron task list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - message: send, show
//   - task:    list, create, show, complete, postpone
//   - worklog: list
//   - field:   list, create, show, crop
//
// Каждая группа создаётся через фабричную функцию (NewTaskCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
