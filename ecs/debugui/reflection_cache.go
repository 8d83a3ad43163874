package debugui

import (
	"reflect"
	"sync"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
)

// FieldInfo describes one field of a component as the device sees it.
type FieldInfo struct {
	Name       string
	DeviceName string
	Type       reflect.Type
	Index      int
	Offset     int
	Kind       driver.Kind
}

type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

// GetFields returns the named device fields of t in declaration order.
// Types without a device layout have no fields.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	fields := deviceFields(t)
	rc.fieldCache[t] = fields
	return fields
}

func deviceFields(t reflect.Type) []FieldInfo {
	layout, err := compute.LayoutOf(t)
	if err != nil {
		return nil
	}

	if layout.Scalar {
		return []FieldInfo{{
			Name:  t.Name(),
			Type:  t,
			Index: -1,
			Kind:  layout.Fields[0].Kind,
		}}
	}

	// padding fields have no layout entry, so walk both in step
	var fields []FieldInfo
	next := 0
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "_" {
			continue
		}
		lf := layout.Fields[next]
		next++
		fields = append(fields, FieldInfo{
			Name:       field.Name,
			DeviceName: lf.Name,
			Type:       field.Type,
			Index:      i,
			Offset:     lf.Offset,
			Kind:       lf.Kind,
		})
	}
	return fields
}

var globalReflectionCache = NewReflectionCache()
