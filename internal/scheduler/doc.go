// Package scheduler реализует перенос просроченных задач.
//
// Sweep находит PENDING-задачи с плановой датой в прошлом и
// переносит их на текущий день. Перенос — условная запись по
// версии: если работник уже завершил или перенёс задачу, sweep
// её не трогает.
//
// Структура:
//   - scheduler.go — логика sweep (Tick)
//   - cron.go      — запуск Tick по cron-расписанию
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    TaskRepo: taskRepo,
//	    Logger:   logger,
//	})
//
//	runner, err := scheduler.NewRunner(sched, os.Getenv("SWEEP_CRON"), logger)
//	if err != nil { ... }
//	runner.Start()
//	defer runner.Stop()
//
// Несколько экземпляров scheduler безопасны без leader election:
// условные записи гарантируют, что каждую задачу перенесёт ровно
// один из них, остальные получат конфликт и отступят.
package scheduler
