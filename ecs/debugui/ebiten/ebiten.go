// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/computecs/ecs/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Overlay draws a DebugUI on top of an Ebiten game. Call Update, Draw and
// Layout from the game's methods of the same name.
type Overlay struct {
	backend ImguiBackend
	ui      *debugui.DebugUI
	timer   *debugui.FrameTimer
}

func NewOverlay(backend ImguiBackend, ui *debugui.DebugUI) *Overlay {
	return &Overlay{
		backend: backend,
		ui:      ui,
		timer:   debugui.NewFrameTimer(),
	}
}

// Update builds one ImGui frame. It runs on the registry's writer
// goroutine, after the frame's systems have been dispatched.
func (o *Overlay) Update() {
	o.backend.BeginFrame()
	o.ui.Render(o.timer.GetDeltaTime())
	o.backend.EndFrame()
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Layout(outsideWidth, outsideHeight)
}

// InputState reports whether ImGui consumed input in the last frame.
func (o *Overlay) InputState() debugui.ImguiInputState {
	return o.ui.InputState()
}
