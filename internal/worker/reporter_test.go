package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/repo"
)

// statsStub считает вызовы GetStats, остальные методы не используются воркером
type statsStub struct {
	calls atomic.Int64
	err   error
}

func (s *statsStub) GetStats(ctx context.Context) (repo.Stats, error) {
	s.calls.Add(1)
	if s.err != nil {
		return repo.Stats{}, s.err
	}
	return repo.Stats{
		ByStatus:   map[string]int{"NEW": 1},
		ByPriority: map[string]int{"MEDIUM": 1},
		TotalTasks: 1,
	}, nil
}

func (s *statsStub) Create(ctx context.Context, t model.Task) (model.Task, error) { return t, nil }
func (s *statsStub) Get(ctx context.Context, id int64) (model.Task, error) {
	return model.Task{}, repo.ErrorNotFound
}
func (s *statsStub) ListForUser(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	return nil, nil
}
func (s *statsStub) Update(ctx context.Context, t model.Task) (model.Task, error) { return t, nil }
func (s *statsStub) Delete(ctx context.Context, id int64) error                   { return nil }
func (s *statsStub) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	return nil
}
func (s *statsStub) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	return 0, repo.ErrorNotFound
}

func TestReporter_StartAndStop(t *testing.T) {
	stub := &statsStub{}
	reporter := NewReporter(stub, zap.NewNop(), 10*time.Millisecond)

	reporter.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	reporter.Stop()

	calls := stub.calls.Load()
	assert.Greater(t, calls, int64(0), "reporter should have collected stats at least once")

	// После Stop тикер не должен продолжать работу
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, stub.calls.Load())
}

func TestReporter_StopsOnContextCancel(t *testing.T) {
	stub := &statsStub{}
	reporter := NewReporter(stub, zap.NewNop(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	reporter.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		reporter.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop after context cancellation")
	}
}
