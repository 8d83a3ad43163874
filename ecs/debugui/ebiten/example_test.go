package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/ecs"
	"github.com/plus3/computecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/computecs/ecs/debugui/ebiten"
)

type Position struct {
	X, Y float32
}

// Game implements ebiten.Game and draws the debug windows over the scene.
type Game struct {
	scheduler *ecs.Scheduler
	overlay   *debugui_ebiten.Overlay
}

func (g *Game) Update() error {
	// Dispatch this frame's systems before building the ImGui frame
	if err := g.scheduler.Once(1.0 / 60.0); err != nil {
		return err
	}
	g.overlay.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Draw game content to screen
	// ...

	// Draw ImGui overlay on top
	g.overlay.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.overlay.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("ECS ImGui Example", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	// Set up the component registry and a device context
	components := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](components)

	dev, err := compute.GetDevice(0)
	if err != nil {
		panic(err)
	}
	ctx, err := compute.NewContext(dev)
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	registry := ecs.NewRegistry(ctx, components, 1024)
	defer registry.Close()

	scheduler, err := ecs.NewScheduler(registry)
	if err != nil {
		panic(err)
	}
	scheduler.Commands().Spawn(Position{X: 10, Y: 20})

	ui := debugui.New(registry, scheduler)
	ui.Add(debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from the device!")
			imgui.End()
		},
	})

	game := &Game{
		scheduler: scheduler,
		overlay:   debugui_ebiten.NewOverlay(debugui_ebiten.ImguiBackend{EbitenBackend: imguiBackend}, ui),
	}

	// Run the game
	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
