// Package agent содержит состояние обработки сообщения,
// реестр воркеров и маршрутизатор.
//
// Обработка одного входящего сообщения — это чередование решений
// маршрутизатора и вызовов специализированных воркеров над одним
// экземпляром State (см. пакет orchestrator). Каждый воркер отвечает
// за свою узкую область и ничего не знает об остальных:
//   - field_info       — справки об участках
//   - task_manager     — задачи: список, завершение, перенос
//   - work_log_entry   — регистрация выполненной работы
//   - work_log_search  — поиск по журналу работ
//
// Решение маршрутизатора — значение из фиксированного множества
// зарегистрированных имён плюс терминальный сигнал FINISH. Тип
// Decision конструируется только валидацией, поэтому решение вне
// реестра — ошибка контракта, а не тихий неверный маршрут.
package agent
