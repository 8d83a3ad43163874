package ecs

import (
	"errors"
	"fmt"
	"sync"
)

// Commands buffers registry mutations from many goroutines so that the
// registry's single writer can apply them in one place. Commands are
// applied by Flush in the order spawns, component additions, deferred
// functions.
type Commands struct {
	mu      sync.Mutex
	spawns  []spawnCommand
	adds    []addComponentCommand
	defers  []func() error
	pending int
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    Entity
	component any
}

// Spawn queues the creation of an entity holding the given components.
func (c *Commands) Spawn(components ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spawns = append(c.spawns, spawnCommand{components: components})
	c.pending++
}

// AddComponent queues a component addition to an existing entity.
func (c *Commands) AddComponent(entity Entity, component any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
	c.pending++
}

// Defer queues a function to run after the other commands.
func (c *Commands) Defer(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defers = append(c.defers, fn)
	c.pending++
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Flush applies every queued command to r and resets the buffer. Failing
// commands do not stop the others; their errors are joined.
func (c *Commands) Flush(r *Registry) error {
	c.mu.Lock()
	spawns, adds, defers := c.spawns, c.adds, c.defers
	c.spawns, c.adds, c.defers = nil, nil, nil
	c.pending = 0
	c.mu.Unlock()

	var errs []error
	for _, cmd := range spawns {
		e := r.CreateEntity()
		for _, comp := range cmd.components {
			if err := r.AddComponent(e, comp); err != nil {
				errs = append(errs, fmt.Errorf("spawn %v: %w", e, err))
			}
		}
	}

	for _, cmd := range adds {
		if err := r.AddComponent(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range defers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
