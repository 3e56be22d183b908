package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCronExpr — расписание sweep по умолчанию: каждый день
// в 05:00 UTC, до начала рабочего дня.
const DefaultCronExpr = "0 5 * * *"

// cronParser — парсер cron-выражений (стандартные 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// tickTimeout — предел длительности одного тика.
const tickTimeout = 5 * time.Minute

// Runner запускает Tick планировщика по cron-расписанию.
type Runner struct {
	c      *cron.Cron
	logger *slog.Logger
}

// NewRunner создаёт Runner. cronExpr == "" означает DefaultCronExpr.
func NewRunner(s *Scheduler, cronExpr string, logger *slog.Logger) (*Runner, error) {
	if cronExpr == "" {
		cronExpr = DefaultCronExpr
	}
	if err := ValidateCronExpr(cronExpr); err != nil {
		return nil, err
	}

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(time.UTC),
	)

	_, err := c.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		if err := s.Tick(ctx); err != nil {
			logger.Error("scheduler tick failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}

	logger.Info("scheduler runner configured", "cron", cronExpr)

	return &Runner{c: c, logger: logger}, nil
}

// Start запускает cron в фоне.
func (r *Runner) Start() {
	r.c.Start()
	r.logger.Info("scheduler runner started")
}

// Stop останавливает cron и дожидается завершения текущего тика.
func (r *Runner) Stop() {
	ctx := r.c.Stop()
	<-ctx.Done()
	r.logger.Info("scheduler runner stopped")
}
