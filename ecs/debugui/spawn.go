package debugui

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/computecs/ecs"
)

// SpawnPanel creates entities holding zero values of the chosen registered
// component types.
type SpawnPanel struct {
	selected map[reflect.Type]bool
	count    int32
	status   string
}

func NewSpawnPanel() *SpawnPanel {
	return &SpawnPanel{
		selected: make(map[reflect.Type]bool),
		count:    1,
	}
}

func (sp *SpawnPanel) Render(r *ecs.Registry, scheduler *ecs.Scheduler) {
	if !imgui.BeginV("Spawn", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	var types []reflect.Type
	for _, t := range r.Components().Types() {
		selected := sp.selected[t]
		if imgui.Checkbox(t.String(), &selected) {
			sp.selected[t] = selected
		}
		if selected {
			types = append(types, t)
		}
	}

	imgui.Separator()
	imgui.SetNextItemWidth(100)
	imgui.InputInt("Count", &sp.count)
	if sp.count < 1 {
		sp.count = 1
	}

	if imgui.Button("Spawn") && len(types) > 0 {
		if scheduler != nil {
			for i := int32(0); i < sp.count; i++ {
				scheduler.Commands().Spawn(zeroComponents(types)...)
			}
			sp.status = fmt.Sprintf("queued %d spawns", sp.count)
		} else {
			sp.status = spawnStatus(spawnNow(r, types, int(sp.count)))
		}
	}
	if sp.status != "" {
		imgui.Text(sp.status)
	}

	imgui.End()
}

func zeroComponents(types []reflect.Type) []any {
	components := make([]any, len(types))
	for i, t := range types {
		components[i] = reflect.New(t).Elem().Interface()
	}
	return components
}

// spawnNow creates n entities holding zero values of types and returns how
// many were fully populated.
func spawnNow(r *ecs.Registry, types []reflect.Type, n int) (int, error) {
	var errs []error
	spawned := 0
	for i := 0; i < n; i++ {
		e := r.CreateEntity()
		ok := true
		for _, c := range zeroComponents(types) {
			if err := r.AddComponent(e, c); err != nil {
				errs = append(errs, err)
				ok = false
			}
		}
		if ok {
			spawned++
		}
	}
	return spawned, errors.Join(errs...)
}

func spawnStatus(spawned int, err error) string {
	if err != nil {
		return fmt.Sprintf("spawned %d: %v", spawned, err)
	}
	return fmt.Sprintf("spawned %d", spawned)
}
