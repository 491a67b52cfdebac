// Package worker runs the periodic due-scan loop: claim overdue tasks
// atomically in the store, then publish one reminder per claimed row.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/repository"
)

// TaskClaimer is the slice of the task repository the scanner needs.
type TaskClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, batchSize int) (int64, error)
	SelectClaimedAt(ctx context.Context, claimedAt time.Time) ([]repository.DueTask, error)
}

// DuePublisher emits reminder messages to the broker.
type DuePublisher interface {
	PublishTaskDue(ctx context.Context, msg domain.TaskDueV1) error
}

// DueScanWorker periodically claims due tasks and publishes reminders.
// Multiple instances may run concurrently: the claim is a single atomic
// conditional update, so a given row is claimed by at most one of them.
type DueScanWorker struct {
	repo      TaskClaimer
	publisher DuePublisher
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewDueScanWorker creates a worker from sanitized configuration.
func NewDueScanWorker(repo TaskClaimer, publisher DuePublisher, cfg config.DueScanConfig) *DueScanWorker {
	return &DueScanWorker{
		repo:      repo,
		publisher: publisher,
		interval:  time.Duration(cfg.IntervalSeconds) * time.Second,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}
}

// Run executes scan ticks until ctx is cancelled, then returns nil. A failed
// tick is logged and the loop continues on the next interval.
func (w *DueScanWorker) Run(ctx context.Context) error {
	slog.Info("due scan worker started",
		"interval", w.interval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			slog.Info("due scan worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick performs one scan pass: claim a batch of due tasks at a fresh now,
// read back the rows carrying exactly that claim marker, and publish one
// TaskDueV1 per row. Publish failures do not abort the pass; the affected
// task stays claimed and that reminder is lost.
func (w *DueScanWorker) Tick(ctx context.Context) {
	now := w.now().UTC()

	claimed, err := w.repo.ClaimDue(ctx, now, w.batchSize)
	if err != nil {
		if isUndefinedTable(err) {
			// Cold-start race: schema migration has not created the
			// tasks table yet.
			slog.Debug("tasks table not present yet, skipping scan")
			return
		}
		slog.Error("due scan claim failed", "error", err)
		return
	}
	if claimed == 0 {
		return
	}

	due, err := w.repo.SelectClaimedAt(ctx, now)
	if err != nil {
		slog.Error("due scan readback failed", "claimed", claimed, "error", err)
		return
	}

	published := 0
	for _, task := range due {
		msg := domain.TaskDueV1{
			TaskID:       task.ID,
			Title:        task.Title,
			DueDateUTC:   task.DueDate.UTC(),
			TimestampUTC: now,
		}
		if err := w.publisher.PublishTaskDue(ctx, msg); err != nil {
			slog.Error("publish task due failed",
				"task_id", task.ID,
				"error", err,
			)
			continue
		}
		published++
	}

	slog.Info("due scan tick completed",
		"claimed", claimed,
		"published", published,
	)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
