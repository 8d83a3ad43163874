package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/computecs/ecs"
)

// CoverageDebugger shows how a dispatch over a set of component types
// lines up with the stored data. A dispatch always runs EntityCount work
// items, so slots past a type's population are visited too.
type CoverageDebugger struct {
	selected map[reflect.Type]bool
}

func NewCoverageDebugger() *CoverageDebugger {
	return &CoverageDebugger{
		selected: make(map[reflect.Type]bool),
	}
}

func (cd *CoverageDebugger) Render(r *ecs.Registry) {
	if !imgui.BeginV("Dispatch Coverage", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(cd.selected)
	}

	stored := r.StoredTypes()
	for _, t := range stored {
		selected := cd.selected[t]
		if imgui.Checkbox(t.String(), &selected) {
			if selected {
				cd.selected[t] = true
			} else {
				delete(cd.selected, t)
			}
		}
	}

	imgui.Separator()

	var selectedTypes []reflect.Type
	for _, t := range stored {
		if cd.selected[t] {
			selectedTypes = append(selectedTypes, t)
		}
	}

	if len(selectedTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	width := r.EntityCount()
	matching := entitiesWithAll(r, selectedTypes)

	imgui.Text(fmt.Sprintf("Dispatch width: %d", width))
	imgui.Text(fmt.Sprintf("Entities with all selected: %d", len(matching)))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("CoverageTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Population")
		imgui.TableSetupColumn("Unpopulated Work Items")
		imgui.TableHeadersRow()

		for _, t := range selectedTypes {
			population := len(r.EntitiesWith(t))
			imgui.TableNextRow()

			imgui.TableSetColumnIndex(0)
			imgui.Text(t.String())

			imgui.TableSetColumnIndex(1)
			imgui.Text(fmt.Sprintf("%d", population))

			imgui.TableSetColumnIndex(2)
			imgui.Text(fmt.Sprintf("%d", max(width-population, 0)))
		}

		imgui.EndTable()
	}

	if len(matching) > 0 && imgui.TreeNodeStr("Matching Entities") {
		for _, e := range matching {
			imgui.BulletText(e.String())
		}
		imgui.TreePop()
	}

	imgui.End()
}

// entitiesWithAll returns the entities holding a component of every type
// in types, in creation order.
func entitiesWithAll(r *ecs.Registry, types []reflect.Type) []ecs.Entity {
	if len(types) == 0 {
		return nil
	}

	counts := make(map[ecs.Entity]int)
	for _, t := range types {
		for _, e := range r.EntitiesWith(t) {
			counts[e]++
		}
	}

	var matching []ecs.Entity
	for _, e := range r.Entities() {
		if counts[e] == len(types) {
			matching = append(matching, e)
		}
	}
	return matching
}
