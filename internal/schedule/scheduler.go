package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
)

const DefaultTickTimeout = 55 * time.Second

// Scheduler runs Tasks on fixed intervals. A tick is skipped, not queued,
// while the previous tick of the same task is still running.
type Scheduler struct {
	cron        *gocron.Scheduler
	tickTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(s *Scheduler)

func WithTickTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.tickTimeout = timeout
		}
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:        gocron.NewScheduler(time.UTC),
		tickTimeout: DefaultTickTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers task to run every interval, starting right after Start.
func (s *Scheduler) Every(interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive, got %s", task.Name(), interval)
	}
	j := newJob(task, s.tickTimeout)
	if _, err := s.cron.Every(interval).Do(func() {
		j.tick(s.ctx)
	}); err != nil {
		return fmt.Errorf("schedule %s: %w", task.Name(), err)
	}
	slog.Info("task scheduled", "task", task.Name(), "interval", interval)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.StartAsync()
	slog.Info("scheduler started", "jobs", s.cron.Len())
}

// Stop stops scheduling new ticks and cancels the ones in flight without
// waiting for them.
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()
	slog.Info("scheduler stopped")
}

type job struct {
	task    Task
	timeout time.Duration
	busy    atomic.Bool
}

func newJob(task Task, timeout time.Duration) *job {
	return &job{task: task, timeout: timeout}
}

// tick runs the task once unless it is already running. It reports whether
// the task ran.
func (j *job) tick(ctx context.Context) bool {
	if !j.busy.CompareAndSwap(false, true) {
		slog.Warn("skip tick, previous run still in progress", "task", j.task.Name())
		return false
	}
	defer j.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "task", j.task.Name(), "panic", r, "stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.task.Run(ctx); err != nil {
		slog.Error("task failed", "task", j.task.Name(), "error", err, "elapsed", time.Since(start))
		return true
	}
	slog.Debug("task done", "task", j.task.Name(), "elapsed", time.Since(start))
	return true
}
