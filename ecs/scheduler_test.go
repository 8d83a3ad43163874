package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/computecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applyDelta = `
function apply_delta(positions, dt)
  local i = get_global_id(0)
  if i >= #positions then return end
  local p = positions[i]
  p.y = p.y + dt[0]
  positions[i] = p
end
`

func TestSchedulerOnce(t *testing.T) {
	r := newTestRegistry(t, 4)
	sched, err := ecs.NewScheduler(r)
	require.NoError(t, err)

	sched.Register(incrementSystem, ecs.Component[Position]())
	sched.Register(ecs.System{Name: "apply_delta", Source: applyDelta}, ecs.Component[Position](), sched.DeltaTime())

	sched.Commands().Spawn(Position{})
	require.NoError(t, sched.Once(0.5))
	require.NoError(t, sched.Once(0.25))

	assert.Equal(t, Position{X: 2, Y: 0.75}, getComponent[Position](t, r, ecs.Entity(0)))

	stats := sched.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(4), stats.TotalExecutions)
	assert.Equal(t, int64(2), stats.Frames)
	require.Len(t, stats.Systems, 2)
	assert.Equal(t, "increment_x", stats.Systems[0].Name)
	assert.Equal(t, "apply_delta", stats.Systems[1].Name)
	for _, s := range stats.Systems {
		assert.Equal(t, int64(2), s.ExecutionCount)
		assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
		assert.Equal(t, s.TotalDuration/2, s.AvgDuration)
	}
}

func TestSchedulerStatsBeforeRun(t *testing.T) {
	r := newTestRegistry(t, 4)
	sched, err := ecs.NewScheduler(r)
	require.NoError(t, err)
	sched.Register(incrementSystem, ecs.Component[Position]())

	stats := sched.GetStats()
	assert.Equal(t, int64(0), stats.TotalExecutions)
	assert.Equal(t, time.Duration(0), stats.Systems[0].MinDuration)
}

func TestSchedulerFrameFailure(t *testing.T) {
	r := newTestRegistry(t, 4)
	sched, err := ecs.NewScheduler(r)
	require.NoError(t, err)

	sched.Register(ecs.System{Name: "fail", Source: `function fail(a) error("nope") end`}, ecs.Component[Position]())
	sched.Commands().Spawn(Position{})

	err = sched.Once(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestSchedulerRun(t *testing.T) {
	r := newTestRegistry(t, 4)
	sched, err := ecs.NewScheduler(r)
	require.NoError(t, err)
	sched.Register(incrementSystem, ecs.Component[Position]())
	sched.Commands().Spawn(Position{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, sched.Run(ctx, time.Millisecond))

	frames := sched.GetStats().Frames
	assert.Greater(t, frames, int64(0))
	assert.Equal(t, float32(frames), getComponent[Position](t, r, ecs.Entity(0)).X)
}
