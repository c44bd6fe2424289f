package video

import (
	"context"
	"time"

	"github.com/chrissnell/motionsync/internal/syncerr"
	"go.uber.org/zap"
)

// Source is the part of a Store the navigator needs.
type Source interface {
	FPS() float64
	FrameCount() int
	Seek(ctx context.Context, index int) (*Frame, error)
}

// Scheduler runs fn once after d on the caller's event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// Boundary reports a relative jump that could not move because the cursor
// already sits on the first or last frame.
type Boundary struct {
	Index int
	Delta int
}

// AtStart reports whether the cursor hit the first frame.
func (b Boundary) AtStart() bool { return b.Delta < 0 }

// Navigator is the frame cursor of one video session.
type Navigator struct {
	source Source
	sched  Scheduler
	logger *zap.SugaredLogger

	current int
	frame   *Frame
	closed  bool

	onBoundary func(Boundary)
	onStep     func(*StepTask)
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithBoundaryHandler sets the callback for boundary notifications.
func WithBoundaryHandler(fn func(Boundary)) NavigatorOption {
	return func(n *Navigator) { n.onBoundary = fn }
}

// WithStepHandler sets the callback invoked after a scheduled step fires.
func WithStepHandler(fn func(*StepTask)) NavigatorOption {
	return func(n *Navigator) { n.onStep = fn }
}

// NewNavigator creates a cursor at frame 0. Nothing is decoded until the
// first jump.
func NewNavigator(source Source, sched Scheduler, logger *zap.SugaredLogger, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		source: source,
		sched:  sched,
		logger: logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Current returns the 0-based index of the cursor.
func (n *Navigator) Current() int { return n.current }

// Frame returns the most recently decoded frame, or nil before the first
// decode.
func (n *Navigator) Frame() *Frame { return n.frame }

// Jump moves the cursor by delta frames, clamped to the video. A jump that
// cannot move emits a boundary notification and keeps the current frame.
// A zero delta re-decodes the current frame.
func (n *Navigator) Jump(ctx context.Context, delta int) (*Frame, error) {
	count := n.source.FrameCount()
	if count <= 0 {
		return nil, syncerr.OutOfRange("frame", n.current+delta, count)
	}

	next := offset(n.current, delta, count)
	if next == n.current && delta != 0 {
		n.logger.Debugw("frame boundary reached", "index", n.current, "delta", delta)
		if n.onBoundary != nil {
			n.onBoundary(Boundary{Index: n.current, Delta: delta})
		}
		return n.frame, nil
	}
	return n.show(ctx, next)
}

// JumpAbsolute moves the cursor to index, clamped to the video.
func (n *Navigator) JumpAbsolute(ctx context.Context, index int) (*Frame, error) {
	count := n.source.FrameCount()
	if count <= 0 {
		return nil, syncerr.OutOfRange("frame", index, count)
	}
	return n.show(ctx, clamp(index, 0, count-1))
}

// show decodes index and commits it as the current frame. On a decode
// failure the cursor does not move.
func (n *Navigator) show(ctx context.Context, index int) (*Frame, error) {
	frame, err := n.source.Seek(ctx, index)
	if err != nil {
		return nil, err
	}
	n.current = index
	n.frame = frame
	return frame, nil
}

// Close releases the navigator. Steps that fire after Close are dropped
// without decoding.
func (n *Navigator) Close() {
	n.closed = true
	n.frame = nil
}

// Closed reports whether Close has been called.
func (n *Navigator) Closed() bool { return n.closed }

// StepInterval is the delay of a scheduled step: one frame period.
func (n *Navigator) StepInterval() time.Duration {
	fps := n.source.FPS()
	if fps <= 0 {
		return 0
	}
	return time.Duration(1000 / fps * float64(time.Millisecond))
}

// ScheduleStep arranges one Jump(delta) after one frame period. Every call
// arms an independent task; a burst of calls produces a burst of steps.
func (n *Navigator) ScheduleStep(ctx context.Context, delta int) *StepTask {
	task := &StepTask{nav: n, ctx: ctx, Delta: delta}
	n.sched.AfterFunc(n.StepInterval(), task.fire)
	return task
}

// StepTask is a one-shot deferred jump. It fires at most once and is never
// re-armed.
type StepTask struct {
	Delta int

	nav   *Navigator
	ctx   context.Context
	fired bool
	frame *Frame
	err   error
}

func (t *StepTask) fire() {
	if t.fired {
		return
	}
	t.fired = true
	if t.nav.closed {
		t.nav.logger.Debugw("dropping frame step of a released video", "delta", t.Delta)
		return
	}

	t.frame, t.err = t.nav.Jump(t.ctx, t.Delta)
	if t.err != nil {
		t.nav.logger.Warnw("scheduled frame step failed", "delta", t.Delta, "error", t.err)
	}
	if t.nav.onStep != nil {
		t.nav.onStep(t)
	}
}

// Fired reports whether the task has run.
func (t *StepTask) Fired() bool { return t.fired }

// Result returns the frame and error of the fired jump.
func (t *StepTask) Result() (*Frame, error) { return t.frame, t.err }

// offset returns cur+delta clamped to [0, count-1] without overflowing.
func offset(cur, delta, count int) int {
	switch {
	case delta > count-1-cur:
		return count - 1
	case delta < -cur:
		return 0
	}
	return cur + delta
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
