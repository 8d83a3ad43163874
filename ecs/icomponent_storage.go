package ecs

import (
	"reflect"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
)

// componentStore is a type-erased device array holding one component type.
type componentStore interface {
	Type() reflect.Type
	Layout() driver.Layout
	Capacity() int
	Set(slot int, value any) error
	Fetch(slot int) (*compute.Future[any], error)
	FetchAll() (*compute.Future[[]any], error)
	Memory() compute.Memory
	Release() error
}
