package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/repository"
)

type fakeClaimer struct {
	claimErr   error
	claimCount int64
	selectErr  error
	due        []repository.DueTask

	claimCalls  int
	selectCalls int
	lastNow     time.Time
}

func (f *fakeClaimer) ClaimDue(_ context.Context, now time.Time, _ int) (int64, error) {
	f.claimCalls++
	f.lastNow = now
	return f.claimCount, f.claimErr
}

func (f *fakeClaimer) SelectClaimedAt(_ context.Context, _ time.Time) ([]repository.DueTask, error) {
	f.selectCalls++
	return f.due, f.selectErr
}

type fakePublisher struct {
	failFor  map[string]error
	messages []domain.TaskDueV1
}

func (f *fakePublisher) PublishTaskDue(_ context.Context, msg domain.TaskDueV1) error {
	if err := f.failFor[msg.TaskID]; err != nil {
		return err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func newTestWorker(repo TaskClaimer, pub DuePublisher, now time.Time) *DueScanWorker {
	w := NewDueScanWorker(repo, pub, config.DueScanConfig{IntervalSeconds: 5, BatchSize: 50})
	w.now = func() time.Time { return now }
	return w
}

func TestTick_PublishesOneMessagePerClaimedRow(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	repo := &fakeClaimer{
		claimCount: 2,
		due: []repository.DueTask{
			{ID: "task-1", Title: "first", DueDate: due},
			{ID: "task-2", Title: "second", DueDate: due},
		},
	}
	pub := &fakePublisher{}

	newTestWorker(repo, pub, now).Tick(context.Background())

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "task-1", pub.messages[0].TaskID)
	assert.Equal(t, "first", pub.messages[0].Title)
	assert.Equal(t, due, pub.messages[0].DueDateUTC)
	assert.Equal(t, now, pub.messages[0].TimestampUTC)
	assert.Equal(t, now, repo.lastNow, "claim marker is the tick's now")
}

func TestTick_NothingClaimedSkipsReadback(t *testing.T) {
	repo := &fakeClaimer{claimCount: 0}
	pub := &fakePublisher{}

	newTestWorker(repo, pub, time.Now()).Tick(context.Background())

	assert.Equal(t, 1, repo.claimCalls)
	assert.Zero(t, repo.selectCalls)
	assert.Empty(t, pub.messages)
}

func TestTick_ClaimErrorDoesNotPanic(t *testing.T) {
	repo := &fakeClaimer{claimErr: errors.New("connection refused")}
	pub := &fakePublisher{}

	newTestWorker(repo, pub, time.Now()).Tick(context.Background())

	assert.Zero(t, repo.selectCalls)
	assert.Empty(t, pub.messages)
}

func TestTick_MissingTableSkipsQuietly(t *testing.T) {
	repo := &fakeClaimer{
		claimErr: &pgconn.PgError{Code: pgerrcode.UndefinedTable},
	}
	pub := &fakePublisher{}

	newTestWorker(repo, pub, time.Now()).Tick(context.Background())

	assert.Zero(t, repo.selectCalls)
	assert.Empty(t, pub.messages)
}

func TestTick_PublishFailureContinuesBatch(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeClaimer{
		claimCount: 3,
		due: []repository.DueTask{
			{ID: "task-1", Title: "ok-1", DueDate: now},
			{ID: "task-2", Title: "broken", DueDate: now},
			{ID: "task-3", Title: "ok-2", DueDate: now},
		},
	}
	pub := &fakePublisher{
		failFor: map[string]error{"task-2": errors.New("channel closed")},
	}

	newTestWorker(repo, pub, now).Tick(context.Background())

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "task-1", pub.messages[0].TaskID)
	assert.Equal(t, "task-3", pub.messages[1].TaskID)
}

func TestRun_ExitsOnCancel(t *testing.T) {
	repo := &fakeClaimer{}
	pub := &fakePublisher{}
	w := newTestWorker(repo, pub, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after cancellation")
	}

	assert.Equal(t, 1, repo.claimCalls, "a cancelled worker still completes the in-flight tick")
}
