package host

import (
	"fmt"

	"github.com/plus3/computecs/compute/driver"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type argument struct {
	mem    *memory
	layout driver.Layout
}

// kernel is a Lua program with one entry function. Each kernel owns its
// own VM; the compute queue guarantees a single goroutine drives it.
type kernel struct {
	dev      *device
	vm       *lua.LState
	entry    string
	fn       *lua.LFunction
	params   int
	variadic bool
	args     []*argument
	global   []int
	ids      []int
	released bool
}

var kernelLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.LoadLibName, lua.OpenPackage},
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

func build(d *device, source, entry string) (driver.Kernel, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range kernelLibs {
		if err := vm.CallByParam(lua.P{
			Fn:      vm.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			vm.Close()
			return nil, &driver.BuildError{Log: err.Error()}
		}
	}

	k := &kernel{
		dev:   d,
		vm:    vm,
		entry: entry,
	}
	k.openBuiltins()
	registerArrayType(vm)

	if err := vm.DoString(source); err != nil {
		vm.Close()
		return nil, &driver.BuildError{Log: err.Error()}
	}

	fn, ok := vm.GetGlobal(entry).(*lua.LFunction)
	if !ok {
		vm.Close()
		return nil, fmt.Errorf("%q: %w", entry, driver.ErrEntryPoint)
	}
	k.fn = fn
	if fn.Proto != nil {
		k.params = int(fn.Proto.NumParameters)
		k.variadic = fn.Proto.IsVarArg != 0
	}

	d.log.Debug("built lua kernel", zap.String("entry", entry), zap.Int("params", k.params))
	return k, nil
}

func (k *kernel) openBuiltins() {
	k.vm.SetGlobal("get_global_id", k.vm.NewFunction(func(L *lua.LState) int {
		dim := L.CheckInt(1)
		if dim < 0 || dim >= len(k.ids) {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(k.ids[dim]))
		return 1
	}))
	k.vm.SetGlobal("get_global_size", k.vm.NewFunction(func(L *lua.LState) int {
		dim := L.CheckInt(1)
		if dim < 0 || dim >= len(k.global) {
			L.Push(lua.LNumber(1))
			return 1
		}
		L.Push(lua.LNumber(k.global[dim]))
		return 1
	}))
	k.vm.SetGlobal("get_work_dim", k.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(len(k.global)))
		return 1
	}))
}

func (k *kernel) Entry() string {
	return k.entry
}

func (k *kernel) SetArg(index int, mem driver.Memory, layout driver.Layout) error {
	if k.released {
		return driver.ErrReleased
	}
	if index < 0 || (!k.variadic && index >= k.params) {
		return fmt.Errorf("%s: argument %d of %d: %w", k.entry, index, k.params, driver.ErrInvalidArgs)
	}
	m, ok := mem.(*memory)
	if !ok || m.dev != k.dev {
		return fmt.Errorf("%s: argument %d is not memory of this device: %w", k.entry, index, driver.ErrInvalidArgs)
	}
	if layout.Stride <= 0 {
		return fmt.Errorf("%s: argument %d has no element layout: %w", k.entry, index, driver.ErrInvalidArgs)
	}

	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = &argument{mem: m, layout: layout}
	return nil
}

func (k *kernel) ResetArgs() {
	clear(k.args)
	k.args = k.args[:0]
}

func (k *kernel) Launch(global []int) error {
	if k.released {
		return driver.ErrReleased
	}
	if len(global) == 0 || len(global) > 3 {
		return fmt.Errorf("%s: %d work dimensions: %w", k.entry, len(global), driver.ErrInvalidArgs)
	}

	total := 1
	for _, n := range global {
		if n < 0 {
			return fmt.Errorf("%s: negative work size %v: %w", k.entry, global, driver.ErrInvalidArgs)
		}
		total *= n
	}

	values := make([]lua.LValue, len(k.args))
	for i := 0; i < k.params || i < len(k.args); i++ {
		if i >= len(k.args) || k.args[i] == nil {
			return fmt.Errorf("%s: argument %d not bound: %w", k.entry, i, driver.ErrInvalidArgs)
		}
		arg := k.args[i]
		if !k.dev.sharing.usable(arg.mem) {
			return fmt.Errorf("%s: argument %d: %w", k.entry, i, driver.ErrNotAcquired)
		}
		data, err := arg.mem.bytes()
		if err != nil {
			return fmt.Errorf("%s: argument %d: %w", k.entry, i, err)
		}
		values[i] = newArrayValue(k.vm, &arrayView{
			data:   data,
			layout: arg.layout,
			count:  len(data) / arg.layout.Stride,
		})
	}

	k.global = append(k.global[:0], global...)
	k.ids = make([]int, len(global))
	defer func() {
		k.ids = k.ids[:0]
	}()

	for n := 0; n < total; n++ {
		rem := n
		for d, extent := range global {
			k.ids[d] = rem % extent
			rem /= extent
		}
		if err := k.vm.CallByParam(lua.P{
			Fn:      k.fn,
			NRet:    0,
			Protect: true,
		}, values...); err != nil {
			return fmt.Errorf("%s: work item %v: %w", k.entry, k.ids, err)
		}
	}

	return nil
}

func (k *kernel) Release() error {
	if k.released {
		return nil
	}
	k.released = true
	k.args = nil
	k.vm.Close()
	return nil
}
