package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board-api/internal/repo"
)

// Reporter периодически снимает статистику по задачам и пишет ее в лог.
type Reporter struct {
	tasks    repo.TaskRepository
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewReporter(tasks repo.TaskRepository, logger *zap.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Reporter) Start(ctx context.Context) {
	r.logger.Info("Starting stats reporter", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Reporter) Stop() {
	r.logger.Info("Stopping stats reporter...")
	close(r.stop)
	r.wg.Wait()
	r.logger.Info("Stats reporter stopped")
}

func (r *Reporter) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.report(ctx); err != nil {
				r.logger.Error("stats report failed", zap.Error(err))
			}
		}
	}
}

func (r *Reporter) report(ctx context.Context) error {
	stats, err := r.tasks.GetStats(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("Task stats",
		zap.Int("total", stats.TotalTasks),
		zap.Any("by_status", stats.ByStatus),
		zap.Any("by_priority", stats.ByPriority),
	)
	return nil
}
