// Package uithread serialises work onto a single goroutine that owns
// window-affine state.
package uithread

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the number of pending functions a Loop buffers.
const DefaultQueueSize = 64

type loopKey struct{}

// Loop runs posted functions one at a time on the goroutine executing Run.
type Loop struct {
	queue   chan func(ctx context.Context)
	running atomic.Bool
	dropped atomic.Uint64

	doneOnce sync.Once
	done     chan struct{}
}

// New returns a Loop with a queue of size functions. size <= 0 uses
// DefaultQueueSize.
func New(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(ctx context.Context), size),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn without blocking. When the queue is full, or the loop has
// stopped, fn is dropped and Post returns false.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	return l.PostContext(func(context.Context) { fn() })
}

// PostContext is Post for functions that need to know they run on l. The
// context passed to fn satisfies OnLoop.
func (l *Loop) PostContext(fn func(ctx context.Context)) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		n := l.dropped.Add(1)
		slog.Warn("[WARN-UI] ui loop stopped, dropping posted function", "dropped", n)
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	default:
		n := l.dropped.Add(1)
		slog.Warn("[WARN-UI] ui loop queue full, dropping posted function", "dropped", n)
		return false
	}
}

// Dropped reports how many posts were rejected, either because the queue was
// full or because the loop had stopped.
func (l *Loop) Dropped() uint64 {
	return l.dropped.Load()
}

// Run processes posted functions until ctx ends. Only one Run may be active.
func (l *Loop) Run(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		slog.Warn("[WARN-UI] ui loop already running")
		return
	}
	defer l.doneOnce.Do(func() { close(l.done) })

	loopCtx := context.WithValue(ctx, loopKey{}, l)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			l.invoke(loopCtx, fn)
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) invoke(ctx context.Context, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ERROR-UI] posted function panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn(ctx)
}

// OnLoop reports whether ctx was handed out by l to a posted function.
func (l *Loop) OnLoop(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(loopKey{}).(*Loop)
	return owner == l
}
