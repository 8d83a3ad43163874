package driver

// Kind is the scalar type of a device-side field.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var kindSizes = [...]int{
	Invalid: 0,
	Bool:    1,
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Int64:   8,
	Uint64:  8,
	Float32: 4,
	Float64: 8,
}

var kindNames = [...]string{
	Invalid: "invalid",
	Bool:    "bool",
	Int8:    "char",
	Uint8:   "uchar",
	Int16:   "short",
	Uint16:  "ushort",
	Int32:   "int",
	Uint32:  "uint",
	Int64:   "long",
	Uint64:  "ulong",
	Float32: "float",
	Float64: "double",
}

// Size returns the width of the kind in bytes.
func (k Kind) Size() int {
	if int(k) >= len(kindSizes) {
		return 0
	}
	return kindSizes[k]
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return kindNames[Invalid]
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given C name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if Kind(k) != Invalid && n == name {
			return Kind(k), true
		}
	}
	return Invalid, false
}

// Field is one named scalar inside an element.
type Field struct {
	Name   string
	Offset int
	Kind   Kind
}

// Layout describes how elements of a typed buffer are packed in device
// memory. Elements are little-endian and tightly packed; a scalar layout
// has exactly one unnamed field at offset zero.
type Layout struct {
	Name   string
	Stride int
	Scalar bool
	Fields []Field
}
