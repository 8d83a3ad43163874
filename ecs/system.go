package ecs

import (
	"fmt"
	"reflect"

	"github.com/plus3/computecs/compute"
	"go.uber.org/zap"
)

// System is a data-parallel kernel applied to component arrays. Name is
// the kernel's entry point and Source its program text.
//
// A system is launched once per entity, with get_global_id(0) giving the
// slot. Because slots are assigned per component type, a kernel must guard
// against slots beyond the array and against slots that were never
// populated for the entity count in flight.
type System struct {
	Name   string
	Source string
}

// Binding resolves a kernel argument at dispatch time.
type Binding interface {
	bind(r *Registry) (compute.Memory, error)
}

type componentBinding struct {
	typ reflect.Type
}

func (b componentBinding) bind(r *Registry) (compute.Memory, error) {
	col, err := r.resolveOrCreate(b.typ)
	if err != nil {
		return nil, err
	}
	return col.store.Memory(), nil
}

// Component binds the device array of T, allocating it if no entity holds
// a T yet.
func Component[T any]() Binding {
	return componentBinding{typ: reflect.TypeFor[T]()}
}

// ComponentOf binds the device array of t.
func ComponentOf(t reflect.Type) Binding {
	return componentBinding{typ: t}
}

type memoryBinding struct {
	mem compute.Memory
}

func (b memoryBinding) bind(*Registry) (compute.Memory, error) {
	return b.mem, nil
}

// Memory binds arbitrary device memory, such as a shared texture.
func Memory(mem compute.Memory) Binding {
	return memoryBinding{mem: mem}
}

type kernelKey struct {
	name   string
	source string
}

func (r *Registry) kernelFor(sys System) (*compute.Kernel, error) {
	key := kernelKey{name: sys.Name, source: sys.Source}
	if k, ok := r.kernels[key]; ok {
		return k, nil
	}

	k, err := compute.NewKernel(r.ctx, sys.Source, sys.Name)
	if err != nil {
		return nil, err
	}
	r.kernels[key] = k
	r.log.Debug("system compiled", zap.String("system", sys.Name))
	return k, nil
}

// ExecuteSystem launches sys with argument i bound to bindings[i], over one
// work item per created entity. The launch is issued without waiting; the
// returned event resolves when it completes and may be ignored. With no
// entities nothing is launched and the event is already resolved.
func (r *Registry) ExecuteSystem(sys System, bindings ...Binding) (*compute.Event, error) {
	k, err := r.kernelFor(sys)
	if err != nil {
		return nil, fmt.Errorf("system %s: %w", sys.Name, err)
	}

	k.ResetArgs()
	for i, b := range bindings {
		mem, err := b.bind(r)
		if err != nil {
			return nil, fmt.Errorf("system %s: argument %d: %w", sys.Name, i, err)
		}
		if err := k.SetArg(i, mem); err != nil {
			return nil, fmt.Errorf("system %s: %w", sys.Name, err)
		}
	}

	n := r.EntityCount()
	if n == 0 {
		return compute.Resolved(struct{}{}), nil
	}

	ev, err := k.Run(n)
	if err != nil {
		return nil, fmt.Errorf("system %s: %w", sys.Name, err)
	}
	r.dispatches++
	return ev, nil
}
