package compute

import "github.com/plus3/computecs/compute/driver"

// Buffer holds a single T in device memory.
type Buffer[T any] struct {
	arr *ArrayBuffer[T]
}

// NewBuffer allocates a single-value buffer initialised to value.
func NewBuffer[T any](ctx *Context, value T) (*Buffer[T], error) {
	arr, err := NewArrayBuffer[T](ctx, 1)
	if err != nil {
		return nil, err
	}
	if err := arr.Set(0, value); err != nil {
		_ = arr.Release()
		return nil, err
	}
	return &Buffer[T]{arr: arr}, nil
}

// Set overwrites the value and waits for the transfer.
func (b *Buffer[T]) Set(value T) error {
	return b.arr.Set(0, value)
}

// Fetch issues a read of the value.
func (b *Buffer[T]) Fetch() (*Future[T], error) {
	return b.arr.Fetch(0)
}

func (b *Buffer[T]) Handle() (driver.Memory, driver.Layout) {
	return b.arr.Handle()
}

func (b *Buffer[T]) Release() error {
	return b.arr.Release()
}
