package compute

import "sync"

// queue is an in-order command queue. Commands run one at a time on a
// single goroutine, in submission order.
type queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

func newQueue() *queue {
	q := &queue{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue) run() {
	defer close(q.stopped)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, cmd := range batch {
			cmd()
		}
	}
}

// submit appends cmd to the queue. It never blocks on queue progress.
func (q *queue) submit(cmd func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// close stops accepting commands and waits for queued ones to finish.
func (q *queue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.stopped
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.stopped
}

// enqueue submits op and returns a future resolved with its result on the
// queue goroutine.
func enqueue[T any](q *queue, op func() (T, error)) (*Future[T], error) {
	f := newFuture[T]()
	if err := q.submit(func() {
		f.resolve(op())
	}); err != nil {
		return nil, err
	}
	return f, nil
}
