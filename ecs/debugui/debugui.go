// Package debugui renders Dear ImGui windows for inspecting a device-backed
// ecs.Registry. Component values live in device memory, so the windows read
// them through futures and show the last value that arrived.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/computecs/ecs"
)

// ImguiItem holds a Dear ImGui render function drawn after the built-in
// windows every frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// DebugUI owns the state of every debug window for one registry.
type DebugUI struct {
	registry  *ecs.Registry
	scheduler *ecs.Scheduler

	EntityBrowser      *EntityBrowser
	ComponentInspector *ComponentInspector
	StoreViewer        *StoreViewer
	PerformanceStats   *PerformanceStats
	CoverageDebugger   *CoverageDebugger
	SpawnPanel         *SpawnPanel

	items []ImguiItem
	input ImguiInputState
}

// New creates the debug windows for r. The scheduler may be nil, in which
// case spawns are applied to the registry directly and no system timings
// are shown.
func New(r *ecs.Registry, scheduler *ecs.Scheduler) *DebugUI {
	return &DebugUI{
		registry:           r,
		scheduler:          scheduler,
		EntityBrowser:      NewEntityBrowser(100),
		ComponentInspector: NewComponentInspector(),
		StoreViewer:        NewStoreViewer(),
		PerformanceStats:   NewPerformanceStats(120),
		CoverageDebugger:   NewCoverageDebugger(),
		SpawnPanel:         NewSpawnPanel(),
	}
}

// Add appends a render function drawn after the built-in windows.
func (d *DebugUI) Add(item ImguiItem) {
	d.items = append(d.items, item)
}

// InputState returns the capture state observed by the last Render.
func (d *DebugUI) InputState() ImguiInputState {
	return d.input
}

// Render draws every window. It must be called between the backend's
// BeginFrame and EndFrame, on the registry's writer goroutine.
func (d *DebugUI) Render(deltaTime float32) {
	io := imgui.CurrentIO()
	d.input.WantCaptureMouse = io.WantCaptureMouse()
	d.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	d.EntityBrowser.Render(d.registry)
	selected, ok := d.EntityBrowser.Selected()
	d.ComponentInspector.Render(d.registry, selected, ok)
	d.StoreViewer.Render(d.registry)
	d.PerformanceStats.Render(d.registry, d.scheduler, deltaTime)
	d.CoverageDebugger.Render(d.registry)
	d.SpawnPanel.Render(d.registry, d.scheduler)

	for _, item := range d.items {
		item.Render()
	}
}
