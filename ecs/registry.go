package ecs

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"

	"github.com/plus3/computecs/compute"
	"go.uber.org/zap"
)

var (
	ErrDuplicateComponent     = errors.New("ecs: entity already has component")
	ErrCapacityExceeded       = errors.New("ecs: component capacity exceeded")
	ErrUnknownComponentType   = errors.New("ecs: component type was never added")
	ErrComponentNotFound      = errors.New("ecs: entity does not have component")
	ErrComponentNotRegistered = errors.New("ecs: component type not registered")
)

// DefaultCapacity is the per-type capacity used when NewRegistry is given
// a non-positive capacity.
const DefaultCapacity = 1024

// Registry keeps every component in device memory and dispatches systems
// over them. Each component type gets one device array of Capacity slots,
// allocated on first use.
//
// A Registry has a single writer: CreateEntity, AddComponent and
// ExecuteSystem must not run concurrently with each other. Reads
// (GetComponent and friends) may run concurrently with each other.
type Registry struct {
	ctx        *compute.Context
	components *ComponentRegistry
	capacity   int
	log        *zap.Logger

	nextEntity Entity

	mu      sync.RWMutex
	columns map[reflect.Type]*column

	kernels    map[kernelKey]*compute.Kernel
	singletons map[reflect.Type]singletonBinding
	dispatches int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates a registry storing components on ctx's device. The
// context must outlive the registry.
func NewRegistry(ctx *compute.Context, components *ComponentRegistry, capacity int, opts ...Option) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Registry{
		ctx:        ctx,
		components: components,
		capacity:   capacity,
		log:        zap.NewNop(),
		columns:    make(map[reflect.Type]*column),
		kernels:    make(map[kernelKey]*compute.Kernel),
		singletons: make(map[reflect.Type]singletonBinding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Context returns the compute context the registry was created with.
func (r *Registry) Context() *compute.Context {
	return r.ctx
}

// Components returns the registration table.
func (r *Registry) Components() *ComponentRegistry {
	return r.components
}

// Capacity returns the number of slots of every component type.
func (r *Registry) Capacity() int {
	return r.capacity
}

// CreateEntity returns a new entity. Entities are numbered from zero in
// creation order. A registry holds at most math.MaxUint32 entities;
// creating more panics.
func (r *Registry) CreateEntity() Entity {
	if r.nextEntity == math.MaxUint32 {
		panic("ecs: entity identifiers exhausted")
	}
	e := r.nextEntity
	r.nextEntity++
	return e
}

// EntityCount returns the number of entities created so far.
func (r *Registry) EntityCount() int {
	return int(r.nextEntity)
}

// Entities returns every entity created so far, in creation order.
func (r *Registry) Entities() []Entity {
	entities := make([]Entity, r.nextEntity)
	for i := range entities {
		entities[i] = Entity(i)
	}
	return entities
}

func componentType(value any) reflect.Type {
	t := reflect.TypeOf(value)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// resolveOrCreate returns the column of t, allocating its device array on
// first use. It is the only place device arrays are allocated.
func (r *Registry) resolveOrCreate(t reflect.Type) (*column, error) {
	r.mu.RLock()
	col, ok := r.columns[t]
	r.mu.RUnlock()
	if ok {
		return col, nil
	}

	factory := r.components.getFactory(t)
	if factory == nil {
		return nil, fmt.Errorf("%w: %v", ErrComponentNotRegistered, t)
	}
	store, err := factory(r.ctx, r.capacity)
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", t, err)
	}

	col = &column{
		typ:   t,
		store: store,
		index: newSlotIndex(r.capacity),
	}
	r.mu.Lock()
	r.columns[t] = col
	r.mu.Unlock()

	r.log.Debug("component store created",
		zap.Stringer("type", t),
		zap.Int("capacity", r.capacity),
		zap.Int("stride", store.Layout().Stride))
	return col, nil
}

func (r *Registry) lookup(t reflect.Type) (*column, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.columns[t]
	return col, ok
}

// AddComponent stores value, a component or a pointer to one, as e's
// component of that type. The value is written to the device before the
// entity is indexed, so a failed write leaves no trace.
func (r *Registry) AddComponent(e Entity, value any) error {
	t := componentType(value)
	if t == nil {
		return fmt.Errorf("%w: nil component", ErrComponentNotRegistered)
	}

	col, err := r.resolveOrCreate(t)
	if err != nil {
		return err
	}

	r.mu.RLock()
	duplicate := col.index.has(e)
	slot := col.index.next()
	r.mu.RUnlock()

	if duplicate {
		return fmt.Errorf("%w: %v already has %s", ErrDuplicateComponent, e, t)
	}
	if slot >= r.capacity {
		return fmt.Errorf("%w: %s has %d of %d slots in use", ErrCapacityExceeded, t, slot, r.capacity)
	}

	if err := col.store.Set(slot, value); err != nil {
		return fmt.Errorf("writing %s of %v: %w", t, e, err)
	}

	r.mu.Lock()
	col.index.insert(e)
	r.mu.Unlock()
	return nil
}

// AddComponent stores value as e's component of type T.
func AddComponent[T any](r *Registry, e Entity, value T) error {
	return r.AddComponent(e, value)
}

// SetComponent overwrites e's existing component of value's type in place.
func (r *Registry) SetComponent(e Entity, value any) error {
	t := componentType(value)
	if t == nil {
		return fmt.Errorf("%w: nil component", ErrComponentNotRegistered)
	}
	col, slot, err := r.slotOf(e, t)
	if err != nil {
		return err
	}
	if err := col.store.Set(slot, value); err != nil {
		return fmt.Errorf("writing %s of %v: %w", t, e, err)
	}
	return nil
}

func (r *Registry) slotOf(e Entity, t reflect.Type) (*column, int, error) {
	col, ok := r.lookup(t)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnknownComponentType, t)
	}

	r.mu.RLock()
	populated := col.index.len()
	slot, found := col.index.get(e)
	r.mu.RUnlock()

	if populated == 0 {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnknownComponentType, t)
	}
	if !found {
		return nil, 0, fmt.Errorf("%w: %v has no %s", ErrComponentNotFound, e, t)
	}
	return col, slot, nil
}

// GetComponent issues a read of e's component of type t. The read is
// ordered after every write and dispatch already issued.
func (r *Registry) GetComponent(e Entity, t reflect.Type) (*compute.Future[any], error) {
	col, slot, err := r.slotOf(e, t)
	if err != nil {
		return nil, err
	}
	return col.store.Fetch(slot)
}

// GetComponent issues a read of e's component of type T.
func GetComponent[T any](r *Registry, e Entity) (*compute.Future[T], error) {
	col, slot, err := r.slotOf(e, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return col.store.(*deviceStore[T]).arr.Fetch(slot)
}

// HasComponent reports whether e has a component of type t.
func (r *Registry) HasComponent(e Entity, t reflect.Type) bool {
	col, ok := r.lookup(t)
	if !ok {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return col.index.has(e)
}

// Slot returns the slot of e's component of type t.
func (r *Registry) Slot(e Entity, t reflect.Type) (int, bool) {
	col, ok := r.lookup(t)
	if !ok {
		return 0, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return col.index.get(e)
}

// EntitiesWith returns the entities holding a component of type t, in
// slot order.
func (r *Registry) EntitiesWith(t reflect.Type) []Entity {
	col, ok := r.lookup(t)
	if !ok {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entity(nil), col.index.entities...)
}

// ComponentTypes returns the types of e's components sorted by name.
func (r *Registry) ComponentTypes(e Entity) []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []reflect.Type
	for t, col := range r.columns {
		if col.index.has(e) {
			types = append(types, t)
		}
	}
	sort.Sort(byTypeName(types))
	return types
}

// StoredTypes returns every type with an allocated device array, sorted by
// name.
func (r *Registry) StoredTypes() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, 0, len(r.columns))
	for t := range r.columns {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// FetchColumn issues a read of every slot of type t's device array.
func (r *Registry) FetchColumn(t reflect.Type) (*compute.Future[[]any], error) {
	col, ok := r.lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownComponentType, t)
	}
	return col.store.FetchAll()
}

// Close releases every device array and compiled kernel owned by the
// registry. The compute context is left open.
func (r *Registry) Close() error {
	var errs []error

	for key, k := range r.kernels {
		if err := k.Release(); err != nil {
			errs = append(errs, fmt.Errorf("releasing kernel %s: %w", key.name, err))
		}
	}
	clear(r.kernels)

	r.mu.Lock()
	for t, col := range r.columns {
		if err := col.store.Release(); err != nil {
			errs = append(errs, fmt.Errorf("releasing %s store: %w", t, err))
		}
	}
	clear(r.columns)
	r.mu.Unlock()

	for t, s := range r.singletons {
		if err := s.release(); err != nil {
			errs = append(errs, fmt.Errorf("releasing singleton %s: %w", t, err))
		}
	}
	clear(r.singletons)

	return errors.Join(errs...)
}
