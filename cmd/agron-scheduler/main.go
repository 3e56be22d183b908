// Agron Scheduler — переносит просроченные задачи.
//
// Scheduler раз в сутки (по умолчанию в 05:00 UTC) находит
// PENDING-задачи с плановой датой раньше сегодняшней и переносит
// их на текущий день. Перенос выполняется условной записью, так
// что несколько экземпляров scheduler безопасно работают
// параллельно без выбора лидера.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/scheduler"
	"github.com/shaiso/Agron/internal/store"
	"github.com/shaiso/Agron/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting agron-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := store.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	st := store.NewPGStore(pool)

	sched := scheduler.New(scheduler.Config{
		TaskRepo: repo.NewTaskRepo(st),
		Logger:   logger,
	})

	cronExpr := os.Getenv("SWEEP_CRON")
	if cronExpr == "" {
		cronExpr = scheduler.DefaultCronExpr
	}

	runner, err := scheduler.NewRunner(sched, cronExpr, logger)
	if err != nil {
		logger.Error("invalid cron expression", "expr", cronExpr, "error", err)
		os.Exit(1)
	}

	runner.Start()
	logger.Info("sweep scheduled", "cron", cronExpr)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	runner.Stop()
	logger.Info("agron-scheduler stopped")
}
