package compute

import (
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
)

// Memory is device memory that can be bound as a kernel argument.
type Memory interface {
	Handle() (driver.Memory, driver.Layout)
}

// ArrayBuffer is a fixed-capacity array of T resident in device memory.
// The host never holds a copy: writes are transferred immediately and
// reads return futures resolved by the context's queue.
type ArrayBuffer[T any] struct {
	ctx      *Context
	mem      driver.Memory
	layout   driver.Layout
	capacity int

	releaseOnce sync.Once
	releaseErr  error
}

// NewArrayBuffer allocates capacity elements of T on the context's device.
func NewArrayBuffer[T any](ctx *Context, capacity int) (*ArrayBuffer[T], error) {
	layout, err := LayoutFor[T]()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrAllocation, capacity)
	}

	alloc, err := enqueue(ctx.queue, func() (driver.Memory, error) {
		return ctx.drv.Alloc(capacity * layout.Stride)
	})
	if err != nil {
		return nil, err
	}
	mem, err := alloc.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %d x %s: %w", ErrAllocation, capacity, layout.Name, err)
	}

	ctx.log.Debug("array buffer allocated",
		zap.String("type", layout.Name),
		zap.Int("capacity", capacity),
		zap.Int("bytes", capacity*layout.Stride))

	return &ArrayBuffer[T]{
		ctx:      ctx,
		mem:      mem,
		layout:   layout,
		capacity: capacity,
	}, nil
}

// Size returns the capacity in elements.
func (a *ArrayBuffer[T]) Size() int {
	return a.capacity
}

// Layout returns the device layout of T.
func (a *ArrayBuffer[T]) Layout() driver.Layout {
	return a.layout
}

// Handle returns the underlying device memory and its element layout.
func (a *ArrayBuffer[T]) Handle() (driver.Memory, driver.Layout) {
	return a.mem, a.layout
}

// Set writes value at index and waits for the transfer to complete.
func (a *ArrayBuffer[T]) Set(index int, value T) error {
	if err := a.checkRange(index, 1); err != nil {
		return err
	}
	return a.write(index, []T{value})
}

// SetAll writes values into slots [0, len(values)) and waits for the
// transfer to complete. Slots beyond len(values) keep their contents.
func (a *ArrayBuffer[T]) SetAll(values []T) error {
	if len(values) == 0 {
		return nil
	}
	if err := a.checkRange(0, len(values)); err != nil {
		return err
	}
	return a.write(0, values)
}

func (a *ArrayBuffer[T]) write(index int, values []T) error {
	buf, err := encodeElements(values, a.layout.Stride)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrTransfer, a.layout.Name, err)
	}

	ev, err := enqueue(a.ctx.queue, func() (struct{}, error) {
		return struct{}{}, a.mem.Write(buf, index*a.layout.Stride)
	})
	if err != nil {
		return err
	}
	if _, err := ev.Get(); err != nil {
		return fmt.Errorf("%w: writing %d x %s at %d: %w", ErrTransfer, len(values), a.layout.Name, index, err)
	}
	return nil
}

// Fetch issues a read of the element at index. The read is ordered after
// every command already submitted to the queue.
func (a *ArrayBuffer[T]) Fetch(index int) (*Future[T], error) {
	if err := a.checkRange(index, 1); err != nil {
		return nil, err
	}
	return enqueue(a.ctx.queue, func() (T, error) {
		var zero T
		values, err := a.read(index, 1)
		if err != nil {
			return zero, err
		}
		return values[0], nil
	})
}

// FetchAll issues a read of every element.
func (a *ArrayBuffer[T]) FetchAll() (*Future[[]T], error) {
	return enqueue(a.ctx.queue, func() ([]T, error) {
		return a.read(0, a.capacity)
	})
}

// read runs on the queue goroutine.
func (a *ArrayBuffer[T]) read(index, count int) ([]T, error) {
	buf := make([]byte, count*a.layout.Stride)
	if err := a.mem.Read(buf, index*a.layout.Stride); err != nil {
		return nil, fmt.Errorf("%w: reading %d x %s at %d: %w", ErrTransfer, count, a.layout.Name, index, err)
	}
	values, err := decodeElements[T](buf, a.layout.Stride)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrTransfer, a.layout.Name, err)
	}
	return values, nil
}

func (a *ArrayBuffer[T]) checkRange(index, count int) error {
	if index < 0 || index+count > a.capacity {
		return fmt.Errorf("%w: [%d, %d) exceeds capacity %d", ErrIndex, index, index+count, a.capacity)
	}
	return nil
}

// Release frees the device memory once every earlier command has
// completed. Further calls are no-ops.
func (a *ArrayBuffer[T]) Release() error {
	a.releaseOnce.Do(func() {
		ev, err := a.ctx.Enqueue(func(driver.Device) error {
			return a.mem.Release()
		})
		if err != nil {
			// The queue is gone, nothing can still be using the memory.
			a.releaseErr = a.mem.Release()
			return
		}
		_, a.releaseErr = ev.Get()
	})
	return a.releaseErr
}
