// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (репозитории, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - message_handler.go  — обработчики для /messages
//   - task_handler.go     — обработчики для /tasks
//   - worklog_handler.go  — обработчики для /worklogs
//   - field_handler.go    — обработчики для /fields
//
// API принимает сообщения пользователей в асинхронную обработку
// и предоставляет REST endpoints для задач, журнала работ и участков.
package api
