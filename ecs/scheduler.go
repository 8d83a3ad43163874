package ecs

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/computecs/compute"
	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system. Durations
// are measured from the completion of the previous system in the frame, so
// they approximate device time on the in-order queue.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type scheduledSystem struct {
	system   System
	bindings []Binding
}

// Scheduler dispatches an ordered list of systems once per frame.
type Scheduler struct {
	registry    *Registry
	commands    *Commands
	deltaTime   *Singleton[DeltaTime]
	systems     []scheduledSystem
	systemStats []*systemStatsInternal
	frame       updateFrame
}

// NewScheduler creates a scheduler for r along with its DeltaTime
// singleton.
func NewScheduler(r *Registry) (*Scheduler, error) {
	dt, err := NewSingleton[DeltaTime](r)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		registry:  r,
		commands:  NewCommands(),
		deltaTime: dt,
	}, nil
}

// Register appends a system. Bindings are resolved on every dispatch.
func (s *Scheduler) Register(system System, bindings ...Binding) {
	s.systems = append(s.systems, scheduledSystem{
		system:   system,
		bindings: bindings,
	})
	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        system.Name,
		minDuration: time.Duration(1<<63 - 1),
	})
}

// Commands returns the buffer flushed at the start of every frame.
func (s *Scheduler) Commands() *Commands {
	return s.commands
}

// DeltaTime returns the frame time singleton, for binding to systems.
func (s *Scheduler) DeltaTime() *Singleton[DeltaTime] {
	return s.deltaTime
}

// Once runs one frame: it flushes queued commands, publishes dt, then
// dispatches every system in registration order and waits for the last
// one to finish.
func (s *Scheduler) Once(dt float64) error {
	if err := s.commands.Flush(s.registry); err != nil {
		return fmt.Errorf("flushing commands: %w", err)
	}
	if dt != s.frame.dt {
		if err := s.deltaTime.Set(DeltaTime(dt)); err != nil {
			return fmt.Errorf("publishing delta time: %w", err)
		}
	}
	s.frame.dt = dt
	s.frame.number++

	start := time.Now()
	events := make([]*compute.Event, len(s.systems))
	for i, sched := range s.systems {
		ev, err := s.registry.ExecuteSystem(sched.system, sched.bindings...)
		if err != nil {
			return err
		}
		events[i] = ev
	}

	prev := start
	for i, ev := range events {
		if _, err := ev.Get(); err != nil {
			return fmt.Errorf("system %s: %w", s.systems[i].system.Name, err)
		}
		now := time.Now()
		duration := now.Sub(prev)
		prev = now

		stats := s.systemStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}
	return nil
}

// Run executes frames at the given interval until ctx is cancelled or a
// frame fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				s.registry.log.Error("frame failed", zap.Int64("frame", s.frame.number), zap.Error(err))
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frame.number,
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
