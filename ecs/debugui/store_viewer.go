package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/computecs/ecs"
)

// StoreViewer lists the device array of every stored component type.
type StoreViewer struct {
	stores        []ecs.StoreStats
	selectedType  reflect.Type
	sortColumn    int
	sortAscending bool
}

func NewStoreViewer() *StoreViewer {
	return &StoreViewer{
		sortColumn:    1,
		sortAscending: false,
	}
}

// Render draws the window and returns the type clicked this frame, if any.
func (sv *StoreViewer) Render(r *ecs.Registry) reflect.Type {
	if !imgui.BeginV("Store Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	stats := r.CollectStats()
	sv.stores = stats.StoreBreakdown
	sortStores(sv.stores, sv.sortColumn, sv.sortAscending)

	var totalBytes int
	for _, s := range sv.stores {
		totalBytes += s.Bytes
	}
	imgui.Text(fmt.Sprintf("Stores: %d  Capacity: %d  Device bytes: %d", stats.StoreCount, stats.Capacity, totalBytes))

	var clicked reflect.Type

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("StoreTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Population")
		imgui.TableSetupColumn("Stride")
		imgui.TableSetupColumn("Bytes")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.sortColumn = int(spec.ColumnIndex())
			sv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortStores(sv.stores, sv.sortColumn, sv.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, store := range sv.stores {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := sv.selectedType == store.Type
			if imgui.SelectableBoolV(store.Type.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sv.selectedType = store.Type
				clicked = store.Type
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d / %d", store.Population, store.Capacity))
			if store.Capacity > 0 {
				barWidth := float32(store.Population) / float32(store.Capacity) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.Stride))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.Bytes))
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

func sortStores(stores []ecs.StoreStats, column int, ascending bool) {
	sort.SliceStable(stores, func(i, j int) bool {
		a, b := stores[i], stores[j]
		var less bool

		switch column {
		case 0:
			less = a.Type.String() < b.Type.String()
		case 2:
			less = a.Stride < b.Stride
		case 3:
			less = a.Bytes < b.Bytes
		default:
			less = a.Population < b.Population
		}

		if !ascending {
			return !less
		}
		return less
	})
}
