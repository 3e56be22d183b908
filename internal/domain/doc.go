// Package domain содержит основные типы предметной области.
//
// Agron — ассистент для управления сельскохозяйственными работами:
// пользователи присылают сообщения на естественном языке
// («закончил обработку в первой теплице», «какие задачи на сегодня?»),
// система разбирает их и обновляет общие записи.
//
// Основные сущности:
//   - Field         — участок (поле, теплица) с текущей культурой
//   - TaskRecord    — запланированная работа на участке
//   - WorkLog       — запись о выполненной работе
//   - InboxEntry    — входящее сообщение пользователя
//
// Все изменяемые записи версионированы: запись пишется только
// при совпадении ожидаемой и текущей версии (см. пакет store).
package domain
