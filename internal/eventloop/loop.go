// Package eventloop runs every engine operation on one goroutine.
//
// Sessions are owned by the loop goroutine. Input handlers hand work to it
// with Do, and deferred work (frame steps) is posted back with AfterFunc, so
// no session is ever touched from two goroutines and nothing needs a lock.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned when work is handed to a loop that is no longer running.
var ErrStopped = errors.New("event loop stopped")

// Loop is a single-goroutine task dispatcher.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
	logger   *zap.SugaredLogger
}

// New creates a Loop. Call Run to start dispatching.
func New(logger *zap.SugaredLogger) *Loop {
	return &Loop{
		tasks:   make(chan func(), 64),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run dispatches tasks in arrival order until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopping")
			return ctx.Err()
		case fn := <-l.tasks:
			l.dispatch(fn)
		}
	}
}

func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorw("event loop task panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn for the loop. It reports false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	queued := l.Post(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
			result <- err
		}()
		err = fn()
	})
	if !queued {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// AfterFunc posts fn to the loop once d has elapsed. Each call arms its own
// timer; nothing is coalesced.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		if !l.Post(fn) {
			l.logger.Debug("dropped deferred task after loop stopped")
		}
	})
}
