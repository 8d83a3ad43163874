package host

import (
	"encoding/binary"
	"math"

	"github.com/plus3/computecs/compute/driver"
	lua "github.com/yuin/gopher-lua"
)

const arrayTypeName = "compute.array"

// arrayView is what a kernel sees for a bound memory argument.
type arrayView struct {
	data   []byte
	layout driver.Layout
	count  int
}

func registerArrayType(L *lua.LState) {
	mt := L.NewTypeMetatable(arrayTypeName)
	L.SetField(mt, "__index", L.NewFunction(arrayIndex))
	L.SetField(mt, "__newindex", L.NewFunction(arrayNewIndex))
	L.SetField(mt, "__len", L.NewFunction(arrayLen))
}

func newArrayValue(L *lua.LState, view *arrayView) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = view
	L.SetMetatable(ud, L.GetTypeMetatable(arrayTypeName))
	return ud
}

func checkArray(L *lua.LState) *arrayView {
	ud := L.CheckUserData(1)
	view, ok := ud.Value.(*arrayView)
	if !ok {
		L.ArgError(1, "compute array expected")
		return nil
	}
	return view
}

func checkElement(L *lua.LState, view *arrayView) []byte {
	i := L.CheckInt(2)
	if i < 0 || i >= view.count {
		L.RaiseError("index %d out of range [0, %d)", i, view.count)
		return nil
	}
	off := i * view.layout.Stride
	return view.data[off : off+view.layout.Stride]
}

func arrayIndex(L *lua.LState) int {
	view := checkArray(L)
	elem := checkElement(L, view)

	if view.layout.Scalar {
		f := view.layout.Fields[0]
		L.Push(load(elem[f.Offset:], f.Kind))
		return 1
	}

	t := L.CreateTable(0, len(view.layout.Fields))
	for _, f := range view.layout.Fields {
		t.RawSetString(f.Name, load(elem[f.Offset:], f.Kind))
	}
	L.Push(t)
	return 1
}

func arrayNewIndex(L *lua.LState) int {
	view := checkArray(L)
	elem := checkElement(L, view)
	value := L.Get(3)

	if view.layout.Scalar {
		f := view.layout.Fields[0]
		store(elem[f.Offset:], f.Kind, value)
		return 0
	}

	t, ok := value.(*lua.LTable)
	if !ok {
		L.ArgError(3, "table expected")
		return 0
	}
	for _, f := range view.layout.Fields {
		v := t.RawGetString(f.Name)
		if v == lua.LNil {
			continue
		}
		store(elem[f.Offset:], f.Kind, v)
	}
	return 0
}

func arrayLen(L *lua.LState) int {
	view := checkArray(L)
	L.Push(lua.LNumber(view.count))
	return 1
}

func load(b []byte, kind driver.Kind) lua.LValue {
	le := binary.LittleEndian
	switch kind {
	case driver.Bool:
		return lua.LBool(b[0] != 0)
	case driver.Int8:
		return lua.LNumber(int8(b[0]))
	case driver.Uint8:
		return lua.LNumber(b[0])
	case driver.Int16:
		return lua.LNumber(int16(le.Uint16(b)))
	case driver.Uint16:
		return lua.LNumber(le.Uint16(b))
	case driver.Int32:
		return lua.LNumber(int32(le.Uint32(b)))
	case driver.Uint32:
		return lua.LNumber(le.Uint32(b))
	case driver.Int64:
		return lua.LNumber(int64(le.Uint64(b)))
	case driver.Uint64:
		return lua.LNumber(le.Uint64(b))
	case driver.Float32:
		return lua.LNumber(math.Float32frombits(le.Uint32(b)))
	case driver.Float64:
		return lua.LNumber(math.Float64frombits(le.Uint64(b)))
	}
	return lua.LNil
}

func store(b []byte, kind driver.Kind, v lua.LValue) {
	le := binary.LittleEndian
	if kind == driver.Bool {
		if lua.LVAsBool(v) {
			b[0] = 1
		} else {
			b[0] = 0
		}
		return
	}

	n := float64(lua.LVAsNumber(v))
	switch kind {
	case driver.Int8:
		b[0] = byte(int8(n))
	case driver.Uint8:
		b[0] = byte(n)
	case driver.Int16:
		le.PutUint16(b, uint16(int16(n)))
	case driver.Uint16:
		le.PutUint16(b, uint16(n))
	case driver.Int32:
		le.PutUint32(b, uint32(int32(n)))
	case driver.Uint32:
		le.PutUint32(b, uint32(n))
	case driver.Int64:
		le.PutUint64(b, uint64(int64(n)))
	case driver.Uint64:
		le.PutUint64(b, uint64(n))
	case driver.Float32:
		le.PutUint32(b, math.Float32bits(float32(n)))
	case driver.Float64:
		le.PutUint64(b, math.Float64bits(n))
	}
}
