package task

import (
	"context"
	"sync"

	"video-pipeline-service/pkg/logger"
)

// BackgroundTask is a long-running background process (consumer, worker pool).
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

type taskManager struct {
	tasks  []BackgroundTask
	mu     sync.Mutex
	cancel context.CancelFunc
}

var defaultManager = &taskManager{}

// Register adds a background task. Call during assembly, before StartAll.
func Register(t BackgroundTask) {
	if t == nil {
		return
	}
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.tasks = append(defaultManager.tasks, t)
}

// StartAll starts every registered task under a shared cancelable context.
// Calling it twice is a no-op.
func StartAll(ctx context.Context) error {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	defaultManager.cancel = cancel
	for _, t := range defaultManager.tasks {
		logger.Infof("Starting background task name=%s", t.Name())
		if err := t.Start(runCtx); err != nil {
			return err
		}
	}
	return nil
}

// StopAll cancels the shared context and stops tasks in reverse order.
func StopAll() {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		defaultManager.cancel()
	}
	for i := len(defaultManager.tasks) - 1; i >= 0; i-- {
		if err := defaultManager.tasks[i].Stop(); err != nil {
			logger.Warnf("Background task stop failed name=%s error=%v", defaultManager.tasks[i].Name(), err)
		}
	}
	defaultManager.cancel = nil
}
