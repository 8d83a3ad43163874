package ecs_test

import (
	"testing"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/plus3/computecs/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X float32 `compute:"x"`
	Y float32 `compute:"y"`
	Z float32 `compute:"z"`
}

type Velocity struct {
	DX float32 `compute:"dx"`
	DY float32 `compute:"dy"`
	DZ float32 `compute:"dz"`
}

type Health struct {
	Current int32 `compute:"current"`
	Max     int32 `compute:"max"`
}

type Score int32

type Name struct {
	Value string
}

func newTestComponents() *ecs.ComponentRegistry {
	components := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](components)
	ecs.RegisterComponent[Velocity](components)
	ecs.RegisterComponent[Health](components)
	ecs.RegisterComponent[Score](components)
	return components
}

func newTestContext(t testing.TB) *compute.Context {
	t.Helper()
	dev, err := compute.NewPlatform(host.New(host.Options{})).Device(0)
	require.NoError(t, err)
	ctx, err := compute.NewContext(dev)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func newTestRegistry(t testing.TB, capacity int) *ecs.Registry {
	t.Helper()
	r := ecs.NewRegistry(newTestContext(t), newTestComponents(), capacity)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func getComponent[T any](t testing.TB, r *ecs.Registry, e ecs.Entity) T {
	t.Helper()
	f, err := ecs.GetComponent[T](r, e)
	require.NoError(t, err)
	v, err := f.Get()
	require.NoError(t, err)
	return v
}

const incrementX = `
function increment_x(positions)
  local i = get_global_id(0)
  if i >= #positions then return end
  local p = positions[i]
  p.x = p.x + 1
  positions[i] = p
end
`

const integrate = `
function integrate(positions, velocities, dt)
  local i = get_global_id(0)
  if i >= #positions or i >= #velocities then return end
  local p, v, t = positions[i], velocities[i], dt[0]
  positions[i] = {x = p.x + v.dx * t, y = p.y + v.dy * t, z = p.z + v.dz * t}
end
`
