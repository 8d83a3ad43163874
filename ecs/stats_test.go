package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/computecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStats(t *testing.T) {
	r := newTestRegistry(t, 8)

	stats := r.CollectStats()
	assert.Equal(t, 0, stats.EntityCount)
	assert.Equal(t, 8, stats.Capacity)
	assert.Equal(t, 0, stats.StoreCount)
	assert.Equal(t, 0, stats.SingletonCount)

	for i := 0; i < 3; i++ {
		e := r.CreateEntity()
		require.NoError(t, r.AddComponent(e, Position{}))
		if i == 0 {
			require.NoError(t, r.AddComponent(e, Score(1)))
		}
	}
	_, err := ecs.NewSingleton(r, float32(1))
	require.NoError(t, err)
	_, err = ecs.NewSingleton[ecs.DeltaTime](r)
	require.NoError(t, err)

	stats = r.CollectStats()
	assert.Equal(t, 3, stats.EntityCount)
	assert.Equal(t, 2, stats.StoreCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[ecs.DeltaTime](), reflect.TypeFor[float32]()}, stats.SingletonTypes)

	require.Len(t, stats.StoreBreakdown, 2)
	pos := stats.StoreBreakdown[0]
	assert.Equal(t, reflect.TypeFor[Position](), pos.Type)
	assert.Equal(t, 3, pos.Population)
	assert.Equal(t, 12, pos.Stride)
	assert.Equal(t, 12*8, pos.Bytes)
	assert.Equal(t, 1, stats.StoreBreakdown[1].Population)
}

func TestSingletonReuse(t *testing.T) {
	r := newTestRegistry(t, 2)

	a, err := ecs.NewSingleton(r, Velocity{DX: 1})
	require.NoError(t, err)
	b, err := ecs.NewSingleton(r, Velocity{DX: 2})
	require.NoError(t, err)
	assert.Same(t, a, b)

	f, err := b.Get()
	require.NoError(t, err)
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, Velocity{DX: 1}, v)
}
