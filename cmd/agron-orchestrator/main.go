// Agron Orchestrator — обрабатывает входящие сообщения.
//
// Orchestrator:
//   - Получает события о сообщениях из RabbitMQ
//   - Захватывает сообщения условной записью (NEW → PROCESSING)
//   - Прогоняет каждое через цикл маршрутизатор/воркеры
//   - Публикует ответы в replies.outbound
//
// Экземпляры масштабируются горизонтально: протокол захвата
// гарантирует обработку каждого сообщения ровно одним из них.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Agron/internal/agent"
	"github.com/shaiso/Agron/internal/mq"
	"github.com/shaiso/Agron/internal/orchestrator"
	"github.com/shaiso/Agron/internal/repo"
	"github.com/shaiso/Agron/internal/store"
	"github.com/shaiso/Agron/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting agron-orchestrator")

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

	// Репозитории
	inboxRepo := repo.NewInboxRepo(st)
	taskRepo := repo.NewTaskRepo(st)
	workLogRepo := repo.NewWorkLogRepo(st)
	fieldRepo := repo.NewFieldRepo(st)

	// Реестр воркеров
	registry := agent.NewRegistry()
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewFieldInfoWorker(fieldRepo),
		Capability: "field info: crops, areas, planting dates",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewTaskManagerWorker(taskRepo, fieldRepo, nil),
		Capability: "tasks: today's plan, completing, postponing",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewWorkLogEntryWorker(workLogRepo, fieldRepo, nil),
		Capability: "recording finished work",
	})
	registry.MustRegister(agent.Registration{
		Worker:     agent.NewWorkLogSearchWorker(workLogRepo, fieldRepo, nil),
		Capability: "searching the work log",
	})

	router := agent.NewRouter(registry, agent.NewKeywordClassifier())

	maxSteps := 0
	if v := os.Getenv("LOOP_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxSteps = n
		}
	}
	loop := orchestrator.NewLoop(registry, router, maxSteps)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Создаём orchestrator
	orch := orchestrator.New(orchestrator.Config{
		Inbox:     inboxRepo,
		Loop:      loop,
		Publisher: publisher,
		Conn:      mqConn,
		Logger:    logger,
	})

	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("ORCH_PORT"); v != "" {
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

	orch.Stop()
	logger.Info("agron-orchestrator stopped")
}
