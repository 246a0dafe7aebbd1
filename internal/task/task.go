// Package task provides the single-consumer event loop the widget runs on,
// cancellation tokens for superseded work and a small future type.
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCanceled resolves futures whose work was superseded or canceled.
var ErrCanceled = errors.New("task canceled")

// Dispatcher runs fn on the consumer goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Scheduler runs fn on the consumer goroutine after d. The returned stop
// func reports whether the call was prevented.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Group issues tokens with last-request-wins semantics: issuing a new
// token or calling Cancel invalidates every earlier one. A Group belongs
// to the consumer goroutine.
type Group struct {
	seq uint64
}

// Token identifies one unit of work issued by a Group.
type Token struct {
	g  *Group
	id uint64
}

// Next invalidates outstanding tokens and returns a fresh one.
func (g *Group) Next() Token {
	g.seq++
	return Token{g: g, id: g.seq}
}

// Cancel invalidates outstanding tokens.
func (g *Group) Cancel() { g.seq++ }

// Valid reports whether t is still the newest token of its group.
func (t Token) Valid() bool { return t.g != nil && t.id == t.g.seq }

// Future is a single-assignment result.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Failed returns a future already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := NewFuture[T]()
	var zero T
	f.Resolve(zero, err)
	return f
}

// Resolve sets the result. Only the first call has an effect.
func (f *Future[T]) Resolve(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result returns the value. It must only be called after Done is closed;
// before that it returns ErrPending.
func (f *Future[T]) Result() (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// ErrPending is returned by Result on an unresolved future.
var ErrPending = errors.New("task pending")

// Wait blocks until the future resolves or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Loop is a FIFO of funcs drained by one goroutine. Post and AfterFunc
// are safe to call from any goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

// NewLoop returns an idle loop.
func NewLoop() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Post queues fn.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// RunPending runs everything queued so far and returns how many funcs ran.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	q := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range q {
		fn()
	}
	return len(q)
}

// Run drains the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// RunUntil drains the loop until done is closed or ctx is done. A nil done
// never fires.
func (l *Loop) RunUntil(ctx context.Context, done <-chan struct{}) error {
	for {
		l.RunPending()
		select {
		case <-done:
			l.RunPending()
			return nil
		default:
		}
		select {
		case <-l.notify:
		case <-done:
			l.RunPending()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
