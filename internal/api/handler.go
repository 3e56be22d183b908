package api

import (
	"log/slog"

	"github.com/shaiso/Agron/internal/mq"
	"github.com/shaiso/Agron/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	inboxRepo   *repo.InboxRepo
	taskRepo    *repo.TaskRepo
	workLogRepo *repo.WorkLogRepo
	fieldRepo   *repo.FieldRepo
	publisher   *mq.Publisher
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	InboxRepo   *repo.InboxRepo
	TaskRepo    *repo.TaskRepo
	WorkLogRepo *repo.WorkLogRepo
	FieldRepo   *repo.FieldRepo

	// Publisher == nil — события не публикуются, оркестратор
	// подхватит сообщения через polling.
	Publisher *mq.Publisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		inboxRepo:   cfg.InboxRepo,
		taskRepo:    cfg.TaskRepo,
		workLogRepo: cfg.WorkLogRepo,
		fieldRepo:   cfg.FieldRepo,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger,
	}
}
