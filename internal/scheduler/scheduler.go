package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task interface for scheduled tasks
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// Scheduler runs each task on its own ticker until stopped
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tasks   []Task
	wg      sync.WaitGroup
	started bool
}

// New creates a new task scheduler bound to ctx
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make([]Task, 0),
	}
}

// AddTask adds a task to the scheduler. Tasks without a positive interval are
// ignored. Tasks added after Start are not run.
func (s *Scheduler) AddTask(task Task) {
	if task.Interval() <= 0 {
		slog.Warn("Ignoring task without interval", "task", task.Name())
		return
	}
	s.tasks = append(s.tasks, task)
}

// Len returns the number of registered tasks
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Start begins running all scheduled tasks. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
	slog.Info("Task scheduler started", "task_count", len(s.tasks))
}

// Stop cancels all tasks and waits for in-flight runs to return
func (s *Scheduler) Stop() {
	slog.Info("Stopping task scheduler")
	s.cancel()
	s.wg.Wait()
	slog.Info("Task scheduler stopped")
}

// runTask runs a single task immediately and then on every tick
func (s *Scheduler) runTask(task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	s.runOnce(task)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(task)
		}
	}
}

func (s *Scheduler) runOnce(task Task) {
	start := time.Now()
	err := task.Run(s.ctx)
	if err != nil && s.ctx.Err() == nil {
		slog.Error("Error running task", "task", task.Name(), "error", err)
		return
	}
	slog.Debug("Task finished", "task", task.Name(), "duration_ms", time.Since(start).Milliseconds())
}
