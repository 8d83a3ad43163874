package ecs

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
)

type storeFactory func(ctx *compute.Context, capacity int) (componentStore, error)

// ComponentRegistry is the table of component types a Registry may store.
// Each Registry has its own ComponentRegistry, allowing multiple
// independent registries to coexist with different component sets.
type ComponentRegistry struct {
	factories map[reflect.Type]storeFactory
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]storeFactory),
	}
}

// RegisterComponent registers T with the given registry. It must be called
// for each component type before the type can be stored. T must have a
// fixed-size device layout; RegisterComponent panics otherwise.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, err := compute.LayoutFor[T](); err != nil {
		panic(fmt.Sprintf("cannot register component %s: %v", t, err))
	}

	r.factories[t] = func(ctx *compute.Context, capacity int) (componentStore, error) {
		arr, err := compute.NewArrayBuffer[T](ctx, capacity)
		if err != nil {
			return nil, err
		}
		return &deviceStore[T]{arr: arr}, nil
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

// Types returns the registered types sorted by name.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

func (r *ComponentRegistry) getFactory(t reflect.Type) storeFactory {
	return r.factories[t]
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// deviceStore is the componentStore of a single component type T.
type deviceStore[T any] struct {
	arr *compute.ArrayBuffer[T]
}

func (s *deviceStore[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *deviceStore[T]) Layout() driver.Layout {
	return s.arr.Layout()
}

func (s *deviceStore[T]) Capacity() int {
	return s.arr.Size()
}

// Set accepts either a T or a *T.
func (s *deviceStore[T]) Set(slot int, value any) error {
	var item T
	if ptr, ok := value.(*T); ok {
		item = *ptr
	} else if val, ok := value.(T); ok {
		item = val
	} else {
		return fmt.Errorf("%w: %T stored as %s", ErrComponentNotRegistered, value, s.Type())
	}
	return s.arr.Set(slot, item)
}

func (s *deviceStore[T]) Fetch(slot int) (*compute.Future[any], error) {
	f, err := s.arr.Fetch(slot)
	if err != nil {
		return nil, err
	}
	return compute.Then(f, func(v T) (any, error) {
		return v, nil
	}), nil
}

func (s *deviceStore[T]) FetchAll() (*compute.Future[[]any], error) {
	f, err := s.arr.FetchAll()
	if err != nil {
		return nil, err
	}
	return compute.Then(f, func(values []T) ([]any, error) {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out, nil
	}), nil
}

func (s *deviceStore[T]) Memory() compute.Memory {
	return s.arr
}

func (s *deviceStore[T]) Release() error {
	return s.arr.Release()
}
