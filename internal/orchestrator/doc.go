// Package orchestrator управляет обработкой входящих сообщений.
//
// Два уровня:
//   - Loop — чистый пошаговый цикл: маршрутизатор выбирает воркер,
//     воркер возвращает дельту, дельта применяется к состоянию;
//     до FINISH, ошибки или предела шагов.
//   - Orchestrator — сервис вокруг Loop: consumer очереди
//     messages.inbound, polling fallback по inbox-коллекции,
//     протокол захвата сообщений и публикация ответов.
//
// Polling fallback покрывает два случая: событие из очереди
// потерялось, или сообщение пришло, пока оркестратор был выключен.
// Благодаря протоколу захвата (NEW → PROCESSING условной записью)
// событие и poll могут найти одно и то же сообщение — обработает
// его всё равно ровно один экземпляр.
package orchestrator
