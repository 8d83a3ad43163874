package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/plus3/computecs/ecs"
	"github.com/plus3/computecs/internal/config"
	"github.com/plus3/computecs/internal/demo"
	"go.uber.org/zap"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	systemCount := flag.Int("systems", 4, "How many times the integrate/wrap pair is registered per frame.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	readbackEvery := flag.Int("readback-every", 0, "Read every position back to the host each N frames (0 disables).")
	profileMode := flag.String("profile", "", "Write a profile of the run: cpu, mem, block or trace.")
	configPath := flag.String("config", "", "Path to a TOML config file.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if cfg.Registry.Capacity < *entityCount {
		cfg.Registry.Capacity = *entityCount
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if stop := startProfile(*profileMode); stop != nil {
		defer stop()
	}

	log.Info("starting ECS stress test")

	// 1. Setup device, registry and scheduler
	platform := compute.NewPlatform(host.New(cfg.HostOptions(log.Named("host"))))
	dev, err := platform.Device(cfg.Device.Index)
	if err != nil {
		log.Fatal("no device", zap.Error(err))
	}
	ctx, err := compute.NewContext(dev, compute.WithLogger(log.Named("compute")))
	if err != nil {
		log.Fatal("creating context", zap.Error(err))
	}
	defer ctx.Close()

	components := ecs.NewComponentRegistry()
	demo.RegisterComponents(components)
	registry := ecs.NewRegistry(ctx, components, cfg.Registry.Capacity, ecs.WithLogger(log.Named("ecs")))
	defer registry.Close()

	scheduler, err := ecs.NewScheduler(registry)
	if err != nil {
		log.Fatal("creating scheduler", zap.Error(err))
	}
	for i := 0; i < *systemCount; i++ {
		scheduler.Register(demo.Integrate, ecs.Component[demo.Position](), ecs.Component[demo.Velocity](), scheduler.DeltaTime())
		scheduler.Register(demo.Wrap, ecs.Component[demo.Position]())
	}

	// 2. Populate the registry with initial entities
	log.Info("populating registry", zap.Int("entities", *entityCount))
	for i := 0; i < *entityCount; i++ {
		scheduler.Commands().Spawn(
			demo.Position{X: rand.Float32() * 100, Y: rand.Float32() * 100},
			demo.Velocity{Dx: rand.Float32()*20 - 10, Dy: rand.Float32()*20 - 10},
		)
	}
	if err := scheduler.Commands().Flush(registry); err != nil {
		log.Fatal("populating registry", zap.Error(err))
	}
	log.Info("population complete")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Device:         dev.Name(),
		Entities:       *entityCount,
		Systems:        2 * *systemCount,
		ReadbackEvery:  *readbackEvery,
		GCPauseMetrics: *gcPauseMetrics,
	}
	positions := ecs.NewQuery[demo.Position](registry)

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", *duration))
	runCtx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

	for runCtx.Err() == nil {
		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		frameStart := time.Now()
		if err := scheduler.Once(deltaTime.Seconds()); err != nil {
			log.Fatal("frame failed", zap.Error(err))
		}
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
		report.TotalFrames++

		if *readbackEvery > 0 && report.TotalFrames%int64(*readbackEvery) == 0 {
			readStart := time.Now()
			if err := positions.Execute(); err != nil {
				log.Fatal("readback failed", zap.Error(err))
			}
			report.Readback.Samples = append(report.Readback.Samples, time.Since(readStart))
		}
	}

	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	report.Readback.Finalize()
	report.Registry = registry.CollectStats()
	report.Scheduler = scheduler.GetStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// startProfile starts the profiler selected by mode and returns its stop
// function, or nil when profiling is off.
func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "block":
		opt = profile.BlockProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", mode)
		os.Exit(2)
	}
	return profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook).Stop
}
