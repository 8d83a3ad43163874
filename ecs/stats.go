package ecs

import (
	"reflect"
	"sort"
)

// RegistryStats is a snapshot of registry bookkeeping.
type RegistryStats struct {
	EntityCount    int
	Capacity       int
	StoreCount     int
	StoreBreakdown []StoreStats
	SingletonCount int
	SingletonTypes []reflect.Type
	KernelCount    int
	Dispatches     int64
}

// StoreStats describes one component type's device array.
type StoreStats struct {
	Type       reflect.Type
	Population int
	Capacity   int
	Stride     int
	Bytes      int
}

// CollectStats gathers statistics about the registry. Like the other
// mutating calls it belongs to the registry's single writer.
func (r *Registry) CollectStats() RegistryStats {
	stats := RegistryStats{
		EntityCount: r.EntityCount(),
		Capacity:    r.capacity,
		KernelCount: len(r.kernels),
		Dispatches:  r.dispatches,
	}

	for _, t := range r.StoredTypes() {
		col, ok := r.lookup(t)
		if !ok {
			continue
		}
		r.mu.RLock()
		population := col.index.len()
		r.mu.RUnlock()

		stride := col.store.Layout().Stride
		stats.StoreBreakdown = append(stats.StoreBreakdown, StoreStats{
			Type:       t,
			Population: population,
			Capacity:   col.store.Capacity(),
			Stride:     stride,
			Bytes:      stride * col.store.Capacity(),
		})
	}
	stats.StoreCount = len(stats.StoreBreakdown)

	for t := range r.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t)
	}
	stats.SingletonCount = len(stats.SingletonTypes)
	sort.Sort(byTypeName(stats.SingletonTypes))
	return stats
}
