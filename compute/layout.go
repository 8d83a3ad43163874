package compute

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/plus3/computecs/compute/driver"
)

// TagName is the struct tag naming a field on the device side.
const TagName = "compute"

var layouts sync.Map // reflect.Type -> layoutEntry

type layoutEntry struct {
	layout driver.Layout
	err    error
}

var scalarKinds = map[reflect.Kind]driver.Kind{
	reflect.Bool:    driver.Bool,
	reflect.Int8:    driver.Int8,
	reflect.Uint8:   driver.Uint8,
	reflect.Int16:   driver.Int16,
	reflect.Uint16:  driver.Uint16,
	reflect.Int32:   driver.Int32,
	reflect.Uint32:  driver.Uint32,
	reflect.Int64:   driver.Int64,
	reflect.Uint64:  driver.Uint64,
	reflect.Float32: driver.Float32,
	reflect.Float64: driver.Float64,
}

// LayoutFor returns the device layout of T.
func LayoutFor[T any]() (driver.Layout, error) {
	return LayoutOf(reflect.TypeFor[T]())
}

// LayoutOf returns the device layout of t. Valid element types are fixed
// size scalars and structs whose exported fields are fixed size scalars;
// fields named "_" are padding.
func LayoutOf(t reflect.Type) (driver.Layout, error) {
	if cached, ok := layouts.Load(t); ok {
		entry := cached.(layoutEntry)
		return entry.layout, entry.err
	}

	layout, err := buildLayout(t)
	layouts.Store(t, layoutEntry{layout: layout, err: err})
	return layout, err
}

func buildLayout(t reflect.Type) (driver.Layout, error) {
	if kind, ok := scalarKinds[t.Kind()]; ok {
		return driver.Layout{
			Name:   t.String(),
			Stride: kind.Size(),
			Scalar: true,
			Fields: []driver.Field{{Kind: kind}},
		}, nil
	}

	if t.Kind() != reflect.Struct {
		return driver.Layout{}, fmt.Errorf("%w: %s is a %s", ErrLayout, t, t.Kind())
	}

	layout := driver.Layout{Name: t.String()}
	offset := 0
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		kind, ok := scalarKinds[field.Type.Kind()]
		if !ok {
			return driver.Layout{}, fmt.Errorf("%w: %s.%s is a %s", ErrLayout, t, field.Name, field.Type)
		}

		if field.Name != "_" {
			if !field.IsExported() {
				return driver.Layout{}, fmt.Errorf("%w: %s.%s is unexported", ErrLayout, t, field.Name)
			}
			name := field.Name
			if tag := field.Tag.Get(TagName); tag != "" {
				name = tag
			}
			layout.Fields = append(layout.Fields, driver.Field{
				Name:   name,
				Offset: offset,
				Kind:   kind,
			})
		}
		offset += kind.Size()
	}

	if offset == 0 || offset != binary.Size(reflect.New(t).Elem().Interface()) {
		return driver.Layout{}, fmt.Errorf("%w: %s has no fixed size", ErrLayout, t)
	}
	layout.Stride = offset
	return layout, nil
}

func encodeElements[T any](values []T, stride int) ([]byte, error) {
	buf := make([]byte, len(values)*stride)
	for i := range values {
		if _, err := binary.Encode(buf[i*stride:], binary.LittleEndian, values[i]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeElements[T any](buf []byte, stride int) ([]T, error) {
	values := make([]T, len(buf)/stride)
	for i := range values {
		if _, err := binary.Decode(buf[i*stride:(i+1)*stride], binary.LittleEndian, &values[i]); err != nil {
			return nil, err
		}
	}
	return values, nil
}
