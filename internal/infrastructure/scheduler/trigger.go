// Package scheduler runs the periodic store sync and alert sweep jobs.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/infrastructure/logger"
)

// JobFunc is one run of a periodic job
type JobFunc func(ctx context.Context) error

// TriggerConfig holds configuration for a periodic trigger
type TriggerConfig struct {
	// Name identifies the trigger in logs
	Name string

	// Interval is the time between the end of one run and the next tick
	Interval time.Duration

	// RunOnStart runs the job once immediately after Start
	RunOnStart bool

	// RunTimeout bounds a single run; zero means no bound
	RunTimeout time.Duration
}

// Trigger runs a job on a fixed interval until stopped.
// Runs never overlap: a tick that arrives while a run is in flight is dropped.
type Trigger struct {
	config TriggerConfig
	job    JobFunc
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	runs     atomic.Int64
	failures atomic.Int64
	lastRun  atomic.Pointer[time.Time]
}

// NewTrigger creates a trigger; it returns ErrInvalidConfig for a non-positive interval
func NewTrigger(config TriggerConfig, job JobFunc, l *zap.Logger) (*Trigger, error) {
	if config.Interval <= 0 || job == nil {
		return nil, ErrInvalidConfig
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Trigger{
		config: config,
		job:    job,
		logger: l.With(zap.String("trigger", config.Name)),
	}, nil
}

// Start starts the trigger loop
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (t *Trigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// Stats returns the number of completed runs and failed runs
func (t *Trigger) Stats() (runs, failures int64) {
	return t.runs.Load(), t.failures.Load()
}

// LastRun returns the start time of the most recent run
func (t *Trigger) LastRun() *time.Time {
	return t.lastRun.Load()
}

// RunNow executes the job once in the caller's goroutine
func (t *Trigger) RunNow(ctx context.Context) error {
	return t.runOnce(ctx)
}

func (t *Trigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		_ = t.runOnce(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = t.runOnce(ctx)
		}
	}
}

func (t *Trigger) runOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if t.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	t.lastRun.Store(&start)
	ctx, _ = logger.WithCorrelationID(ctx, t.logger, uuid.NewString())

	err := t.job(ctx)
	t.runs.Add(1)
	if err != nil {
		t.failures.Add(1)
		t.logger.Error("Scheduled run failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return err
	}
	t.logger.Debug("Scheduled run finished", zap.Duration("duration", time.Since(start)))
	return nil
}
