package ecs

import (
	"fmt"
	"reflect"

	"github.com/plus3/computecs/compute"
)

type singletonBinding interface {
	Binding
	release() error
}

// Singleton is a single device-resident value that is not associated
// with any entity, such as a time step or a global force. Bind it to a
// system like a component array; kernels read it at index 0.
type Singleton[T any] struct {
	buf *compute.Buffer[T]
}

// NewSingleton returns the registry's singleton of type T, creating it with
// the initializer value, or the zero value, on first use. Later calls
// return the existing singleton and ignore the initializer.
func NewSingleton[T any](r *Registry, initializer ...T) (*Singleton[T], error) {
	t := reflect.TypeFor[T]()
	if existing, ok := r.singletons[t]; ok {
		return existing.(*Singleton[T]), nil
	}

	var value T
	if len(initializer) > 0 {
		value = initializer[0]
	}
	buf, err := compute.NewBuffer(r.ctx, value)
	if err != nil {
		return nil, fmt.Errorf("singleton %s: %w", t, err)
	}

	s := &Singleton[T]{buf: buf}
	r.singletons[t] = s
	return s, nil
}

// Set overwrites the value on the device.
func (s *Singleton[T]) Set(value T) error {
	return s.buf.Set(value)
}

// Get issues a read of the value.
func (s *Singleton[T]) Get() (*compute.Future[T], error) {
	return s.buf.Fetch()
}

func (s *Singleton[T]) bind(*Registry) (compute.Memory, error) {
	return s.buf, nil
}

func (s *Singleton[T]) release() error {
	return s.buf.Release()
}
