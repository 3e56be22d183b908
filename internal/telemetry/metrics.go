package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Prometheus. Экспортируются на /metrics каждого бинарника.
var (
	// MessagesProcessed — обработанные входящие сообщения по исходу.
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agron_messages_processed_total",
		Help: "Inbound messages processed, by outcome (finished, failed).",
	}, []string{"outcome"})

	// RoutingDecisions — решения маршрутизатора по воркерам.
	RoutingDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agron_routing_decisions_total",
		Help: "Routing decisions, by selected worker (or FINISH).",
	}, []string{"worker"})

	// LoopSteps — количество шагов цикла оркестратора на одно сообщение.
	LoopSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agron_loop_steps",
		Help:    "Orchestrator loop steps per message.",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})

	// VersionConflicts — конфликты версий при условной записи.
	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agron_version_conflicts_total",
		Help: "Conditional writes rejected due to a version mismatch.",
	})

	// OCCRetries — повторные циклы read-modify-write.
	OCCRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agron_occ_retries_total",
		Help: "Read-modify-write cycles repeated after a version conflict.",
	})

	// Transactions — исходы многодокументных транзакций.
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agron_transactions_total",
		Help: "Multi-document transactions, by outcome (committed, aborted, error).",
	}, []string{"outcome"})
)
