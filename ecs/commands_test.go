package ecs_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/plus3/computecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsSpawn(t *testing.T) {
	r := newTestRegistry(t, 4)
	cmds := ecs.NewCommands()

	cmds.Spawn(Position{X: 1}, Velocity{DX: 1})
	cmds.Spawn(Position{X: 2})
	assert.Equal(t, 2, cmds.Len())
	assert.Equal(t, 0, r.EntityCount(), "nothing applied before flush")

	require.NoError(t, cmds.Flush(r))
	assert.Equal(t, 0, cmds.Len())
	assert.Equal(t, 2, r.EntityCount())

	assert.Equal(t, Position{X: 2}, getComponent[Position](t, r, ecs.Entity(1)))
	assert.True(t, r.HasComponent(ecs.Entity(0), reflect.TypeFor[Velocity]()))
	assert.False(t, r.HasComponent(ecs.Entity(1), reflect.TypeFor[Velocity]()))
}

func TestCommandsAddAndDefer(t *testing.T) {
	r := newTestRegistry(t, 4)
	e := r.CreateEntity()
	cmds := ecs.NewCommands()

	var order []string
	cmds.Defer(func() error {
		order = append(order, "defer")
		return nil
	})
	cmds.AddComponent(e, Health{Current: 5, Max: 5})
	cmds.Spawn(Score(1))

	require.NoError(t, cmds.Flush(r))
	assert.Equal(t, []string{"defer"}, order)
	assert.Equal(t, Health{Current: 5, Max: 5}, getComponent[Health](t, r, e))
	assert.Equal(t, Score(1), getComponent[Score](t, r, ecs.Entity(1)))
}

func TestCommandsFlushJoinsErrors(t *testing.T) {
	r := newTestRegistry(t, 1)
	e := r.CreateEntity()
	cmds := ecs.NewCommands()

	boom := errors.New("boom")
	cmds.AddComponent(e, Position{})
	cmds.AddComponent(e, Position{})
	cmds.Spawn(Position{})
	cmds.Defer(func() error { return boom })

	err := cmds.Flush(r)
	assert.ErrorIs(t, err, ecs.ErrDuplicateComponent)
	assert.ErrorIs(t, err, ecs.ErrCapacityExceeded)
	assert.ErrorIs(t, err, boom)

	// the spawn still created its entity
	assert.Equal(t, 2, r.EntityCount())
}

func TestCommandsConcurrentProducers(t *testing.T) {
	r := newTestRegistry(t, 256)
	cmds := ecs.NewCommands()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				cmds.Spawn(Score(w*16 + i))
			}
		}(w)
	}
	wg.Wait()

	require.NoError(t, cmds.Flush(r))
	assert.Equal(t, 128, r.EntityCount())

	q := ecs.NewQuery[Score](r)
	require.NoError(t, q.Execute())
	seen := make(map[Score]bool)
	for s := range q.Values() {
		seen[s] = true
	}
	assert.Len(t, seen, 128)
}
