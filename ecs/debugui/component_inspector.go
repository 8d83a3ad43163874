package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/ecs"
)

// ComponentInspector shows the components of the selected entity. Values
// are read back asynchronously; edits are written to the device with
// Registry.SetComponent.
type ComponentInspector struct {
	entity      ecs.Entity
	hasEntity   bool
	autoRefresh bool

	pending map[reflect.Type]*compute.Future[any]
	values  map[reflect.Type]any
	errs    map[reflect.Type]error
}

func NewComponentInspector() *ComponentInspector {
	ci := &ComponentInspector{autoRefresh: true}
	ci.reset()
	return ci
}

func (ci *ComponentInspector) reset() {
	ci.pending = make(map[reflect.Type]*compute.Future[any])
	ci.values = make(map[reflect.Type]any)
	ci.errs = make(map[reflect.Type]error)
}

func (ci *ComponentInspector) Render(r *ecs.Registry, e ecs.Entity, ok bool) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if !ok {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !ci.hasEntity || ci.entity != e {
		ci.entity, ci.hasEntity = e, true
		ci.reset()
	}

	imgui.Text(fmt.Sprintf("Entity: %d", e))
	imgui.Checkbox("Auto Refresh", &ci.autoRefresh)
	imgui.SameLine()
	if imgui.Button("Refresh") {
		clear(ci.values)
	}
	imgui.Separator()

	for _, t := range r.ComponentTypes(e) {
		ci.poll(r, t)

		if !imgui.TreeNodeStr(t.String()) {
			continue
		}
		if err := ci.errs[t]; err != nil {
			imgui.Text(fmt.Sprintf("error: %v", err))
		} else if value, ok := ci.values[t]; ok {
			ci.renderComponent(r, t, value)
		} else {
			imgui.Text("fetching...")
		}
		imgui.TreePop()
	}

	imgui.End()
}

// poll collects a finished read of t and issues the next one. Only one
// read per type is in flight at a time.
func (ci *ComponentInspector) poll(r *ecs.Registry, t reflect.Type) {
	if f, ok := ci.pending[t]; ok {
		select {
		case <-f.Done():
		default:
			return
		}
		delete(ci.pending, t)
		value, err := f.Get()
		if err != nil {
			ci.errs[t] = err
			return
		}
		delete(ci.errs, t)
		ci.values[t] = value
	}

	if _, ok := ci.values[t]; ok && !ci.autoRefresh {
		return
	}
	f, err := r.GetComponent(ci.entity, t)
	if err != nil {
		ci.errs[t] = err
		return
	}
	ci.pending[t] = f
}

func (ci *ComponentInspector) renderComponent(r *ecs.Registry, t reflect.Type, component any) {
	val := reflect.New(t).Elem()
	val.Set(reflect.ValueOf(component))

	changed := false
	for _, field := range globalReflectionCache.GetFields(t) {
		fieldVal := val
		if field.Index >= 0 {
			fieldVal = val.Field(field.Index)
		}
		label := field.Name
		if field.DeviceName != "" && field.DeviceName != field.Name {
			label = fmt.Sprintf("%s (%s)", field.Name, field.DeviceName)
		}
		if renderField(label, fieldVal) {
			changed = true
		}
	}

	if !changed {
		return
	}
	updated := val.Interface()
	if err := r.SetComponent(ci.entity, updated); err != nil {
		ci.errs[t] = err
		return
	}
	// a read issued before the write would bring back the old value
	delete(ci.pending, t)
	ci.values[t] = updated
}

// renderField draws an editor for a scalar field and reports whether val
// was changed.
func renderField(name string, val reflect.Value) bool {
	if !val.CanSet() {
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		return false
	}

	switch val.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			val.SetInt(int64(v))
			return true
		}

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 {
			val.SetUint(uint64(v))
			return true
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			val.SetFloat(float64(v))
			return true
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			val.SetBool(v)
			return true
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
	return false
}
