// Command ecs-demo moves a position component on the device with the speed
// system and prints it after every dispatch. With -tui it instead animates
// many entities in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/plus3/computecs/ecs"
	"github.com/plus3/computecs/internal/config"
	"github.com/plus3/computecs/internal/demo"
	"github.com/plus3/computecs/internal/termview"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file.")
	tui := flag.Bool("tui", false, "Animate entities in the terminal.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, log, *tui); err != nil {
		log.Error("demo failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger, tui bool) error {
	platform := compute.NewPlatform(host.New(cfg.HostOptions(log.Named("host"))))
	dev, err := platform.Device(cfg.Device.Index)
	if err != nil {
		return err
	}
	ctx, err := compute.NewContext(dev, compute.WithLogger(log.Named("compute")))
	if err != nil {
		return err
	}
	defer ctx.Close()

	components := ecs.NewComponentRegistry()
	demo.RegisterComponents(components)
	registry := ecs.NewRegistry(ctx, components, cfg.Registry.Capacity, ecs.WithLogger(log.Named("ecs")))
	defer registry.Close()

	if tui {
		return animate(cfg, registry)
	}

	fmt.Println("device name :", dev.Name())
	e := registry.CreateEntity()
	if err := ecs.AddComponent(registry, e, demo.Position{}); err != nil {
		return err
	}

	if err := printPosition(registry, e); err != nil {
		return err
	}
	for i := 0; i < cfg.Demo.Iterations; i++ {
		if _, err := registry.ExecuteSystem(demo.Speed, ecs.Component[demo.Position]()); err != nil {
			return err
		}
		if err := printPosition(registry, e); err != nil {
			return err
		}
	}
	return nil
}

func printPosition(r *ecs.Registry, e ecs.Entity) error {
	f, err := ecs.GetComponent[demo.Position](r, e)
	if err != nil {
		return err
	}
	pos, err := f.Get()
	if err != nil {
		return err
	}
	fmt.Printf("x = %g y = %g z = %g\n", pos.X, pos.Y, pos.Z)
	return nil
}

func animate(cfg *config.Config, registry *ecs.Registry) error {
	scheduler, err := ecs.NewScheduler(registry)
	if err != nil {
		return err
	}
	scheduler.Register(demo.Integrate, ecs.Component[demo.Position](), ecs.Component[demo.Velocity](), scheduler.DeltaTime())
	scheduler.Register(demo.Wrap, ecs.Component[demo.Position]())

	for i := 0; i < cfg.Demo.Entities; i++ {
		scheduler.Commands().Spawn(
			demo.Position{X: rand.Float32() * 100, Y: rand.Float32() * 100},
			demo.Velocity{Dx: (rand.Float32()*2 - 1) * 10 * cfg.Demo.Speed, Dy: (rand.Float32()*2 - 1) * 10 * cfg.Demo.Speed},
		)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	view := termview.New(screen, termview.Bounds{MaxX: 100, MaxY: 100}, "●", "computecs demo (q to quit)")
	dt := cfg.Demo.TickRate.Seconds()
	query := ecs.NewQuery[demo.Position](registry)

	return view.Run(ctx, cfg.Demo.TickRate, func() ([]termview.Point, string, error) {
		if err := scheduler.Once(dt); err != nil {
			return nil, "", err
		}
		if err := query.Execute(); err != nil {
			return nil, "", err
		}

		points := make([]termview.Point, 0, query.Len())
		for e, pos := range query.Iter() {
			points = append(points, termview.Point{Entity: e, X: pos.X, Y: pos.Y})
		}
		stats := scheduler.GetStats()
		status := fmt.Sprintf("frame %d  entities %d  dispatches %d", stats.Frames, len(points), stats.TotalExecutions)
		return points, status, nil
	})
}
