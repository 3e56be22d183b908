// Package store реализует версионированное документное хранилище.
//
// Структура:
//   - store.go    — интерфейс Store, Document, Op, Query
//   - pg.go       — реализация поверх Postgres (JSONB)
//   - memstore.go — реализация в памяти (для тестов и локального запуска)
//   - occ.go      — Mutator: read-modify-write с retry при конфликте версий
//   - tx.go       — Tx: атомарная транзакция над несколькими документами
//
// Протокол конкурентного доступа:
//
// Каждый документ несёт монотонно растущую версию. Запись проходит
// только при совпадении ожидаемой и текущей версии и увеличивает
// версию ровно на единицу. Из N конкурентных писателей от одной
// версии выигрывает ровно один; остальные получают конфликт и
// обязаны перечитать документ перед повтором. Прямых безусловных
// записей нет — весь доступ к общим записям идёт через Mutator
// (один документ) или Tx (несколько документов атомарно).
package store
