package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// slotIndex maps entities to slots of one component type's device array.
// Slots are handed out densely in insertion order and never reclaimed.
type slotIndex struct {
	slots    *intmap.Map[Entity, uint32]
	entities []Entity
}

func newSlotIndex(capacity int) *slotIndex {
	return &slotIndex{
		slots:    intmap.New[Entity, uint32](capacity),
		entities: make([]Entity, 0, capacity),
	}
}

func (x *slotIndex) get(e Entity) (int, bool) {
	slot, ok := x.slots.Get(e)
	return int(slot), ok
}

func (x *slotIndex) has(e Entity) bool {
	return x.slots.Has(e)
}

// next is the slot the next insertion will receive.
func (x *slotIndex) next() int {
	return len(x.entities)
}

func (x *slotIndex) insert(e Entity) int {
	slot := len(x.entities)
	x.slots.Put(e, uint32(slot))
	x.entities = append(x.entities, e)
	return slot
}

func (x *slotIndex) len() int {
	return len(x.entities)
}

// column is the storage of one component type: its device array plus the
// index of which entity lives in which slot.
type column struct {
	typ   reflect.Type
	store componentStore
	index *slotIndex
}
