// Package schedule runs a task on a fixed interval with an explicit
// start/stop lifecycle.
package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context)

// Loop calls its task every interval while running. The first call happens
// one interval after Start. A Loop can be restarted after Stop.
type Loop struct {
	name     string
	interval time.Duration
	task     Task
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoop(name string, interval time.Duration, task Task, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With(zap.String("loop", name)),
	}
}

// Start launches the loop. It returns false if the loop is already running.
// The loop ends when Stop is called or ctx is done.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go l.run(runCtx, done)

	l.logger.Debug("loop started", zap.Duration("interval", l.interval))
	return true
}

// Stop cancels the loop and waits for an in-flight task to return. It
// returns false if the loop was not running.
func (l *Loop) Stop() bool {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return false
	}

	cancel()
	<-done

	l.logger.Debug("loop stopped")
	return true
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.safeTick(ctx)
		}
	}
}

func (l *Loop) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", zap.Any("panic", r))
		}
	}()
	l.task(ctx)
}
