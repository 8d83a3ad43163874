package ecs

import "strconv"

// Entity is an opaque identifier. Entities carry no data of their own;
// an entity exists once it has been created and holds whatever
// components were added to it. Identifiers are never reused.
type Entity uint32

func (e Entity) String() string {
	return "entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
