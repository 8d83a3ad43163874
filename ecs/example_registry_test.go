package ecs_test

import (
	"fmt"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/ecs"
)

// ExampleRegistry stores a component on the device, runs a system over it
// a few times and reads the result back.
func ExampleRegistry() {
	components := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](components)

	dev, _ := compute.GetDevice(0)
	ctx, _ := compute.NewContext(dev)
	defer ctx.Close()

	registry := ecs.NewRegistry(ctx, components, 1024)
	defer registry.Close()

	e := registry.CreateEntity()
	_ = ecs.AddComponent(registry, e, Position{})

	for i := 0; i < 4; i++ {
		// dispatches are not awaited; the read below is ordered after them
		_, _ = registry.ExecuteSystem(incrementSystem, ecs.Component[Position]())
	}

	f, _ := ecs.GetComponent[Position](registry, e)
	pos, _ := f.Get()
	fmt.Printf("x = %g y = %g z = %g\n", pos.X, pos.Y, pos.Z)
	// Output: x = 4 y = 0 z = 0
}

// ExampleScheduler builds a frame loop from two systems and a command
// buffer. Commands are applied at the start of each frame, then systems
// are dispatched in registration order.
func ExampleScheduler() {
	components := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](components)
	ecs.RegisterComponent[Velocity](components)

	dev, _ := compute.GetDevice(0)
	ctx, _ := compute.NewContext(dev)
	defer ctx.Close()

	registry := ecs.NewRegistry(ctx, components, 16)
	defer registry.Close()

	scheduler, _ := ecs.NewScheduler(registry)
	scheduler.Register(ecs.System{Name: "integrate", Source: integrate},
		ecs.Component[Position](), ecs.Component[Velocity](), scheduler.DeltaTime())

	scheduler.Commands().Spawn(Position{}, Velocity{DX: 10, DY: 5})
	scheduler.Commands().Spawn(Position{X: 100}, Velocity{DX: -10})

	for i := 0; i < 3; i++ {
		_ = scheduler.Once(0.5)
	}

	q := ecs.NewQuery[Position](registry)
	_ = q.Execute()
	for e, pos := range q.Iter() {
		fmt.Printf("%v at (%g, %g)\n", e, pos.X, pos.Y)
	}

	stats := scheduler.GetStats()
	fmt.Printf("%s ran %d times\n", stats.Systems[0].Name, stats.Systems[0].ExecutionCount)
	// Output:
	// entity(0) at (15, 7.5)
	// entity(1) at (85, 0)
	// integrate ran 3 times
}

// ExampleSingleton binds a device-resident global to a system.
func ExampleSingleton() {
	components := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Health](components)

	dev, _ := compute.GetDevice(0)
	ctx, _ := compute.NewContext(dev)
	defer ctx.Close()

	registry := ecs.NewRegistry(ctx, components, 8)
	defer registry.Close()

	for _, hp := range []int32{10, 60, 95} {
		_ = registry.AddComponent(registry.CreateEntity(), Health{Current: hp, Max: 100})
	}

	regen, _ := ecs.NewSingleton(registry, int32(20))
	heal := ecs.System{Name: "heal", Source: `
function heal(health, regen)
  local i = get_global_id(0)
  if i >= #health then return end
  local h = health[i]
  h.current = math.min(h.current + regen[0], h.max)
  health[i] = h
end
`}
	_, _ = registry.ExecuteSystem(heal, ecs.Component[Health](), regen)

	q := ecs.NewQuery[Health](registry)
	_ = q.Execute()
	for h := range q.Values() {
		fmt.Println(h.Current)
	}
	// Output:
	// 30
	// 80
	// 100
}
