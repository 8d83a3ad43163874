package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Future is the eventual result of an operation issued on a command queue.
// It resolves exactly once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Event is a future that carries no value, such as a kernel launch.
type Event = Future[struct{}]

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already holding value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.resolve(value, nil)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.resolve(zero, err)
	return f
}

func (f *Future[T]) resolve(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Done is closed once the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Wait blocks until the future resolves or ctx is done. Giving up on the
// wait does not cancel the underlying operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

var pool = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0) * 4))

// Then returns a future resolving to fn applied to f's value. fn runs on a
// bounded pool of goroutines once f resolves; an error from f skips fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		value, err := f.Get()
		if err != nil {
			var zero U
			out.resolve(zero, err)
			return
		}

		if err := pool.Acquire(context.Background(), 1); err != nil {
			var zero U
			out.resolve(zero, err)
			return
		}
		defer pool.Release(1)
		out.resolve(fn(value))
	}()
	return out
}
