package ecs

import (
	"context"
	"iter"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// Query reads every T back from the device in one transfer and pairs the
// values with their entities. Results are a snapshot taken by Execute;
// dispatches issued afterwards are not reflected until the next Execute.
type Query[T any] struct {
	registry *Registry

	entities []Entity
	values   []T
	executed bool
}

// NewQuery creates a query over the T components of r.
func NewQuery[T any](r *Registry) *Query[T] {
	return &Query[T]{registry: r}
}

// Execute reads the components and waits for the transfer.
func (q *Query[T]) Execute() error {
	return q.ExecuteContext(context.Background())
}

// ExecuteContext is Execute that stops waiting when ctx is done.
func (q *Query[T]) ExecuteContext(ctx context.Context) error {
	q.executed = false
	q.entities = q.entities[:0]
	q.values = q.values[:0]

	col, ok := q.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		q.executed = true
		return nil
	}

	// Snapshot the index before issuing the read so every listed entity
	// was written before the transfer.
	entities := q.registry.EntitiesWith(col.typ)
	f, err := col.store.(*deviceStore[T]).arr.FetchAll()
	if err != nil {
		return err
	}
	values, err := f.Wait(ctx)
	if err != nil {
		return err
	}

	q.entities = append(q.entities, entities...)
	q.values = append(q.values, values[:len(entities)]...)
	q.executed = true
	return nil
}

// Len returns the number of results.
// Panics if Execute() has not been called.
func (q *Query[T]) Len() int {
	if !q.executed {
		panic("Query.Len() called before Query.Execute()")
	}
	return len(q.entities)
}

// Iter returns an iterator over entities and their component values in
// slot order.
// Panics if Execute() has not been called.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	if !q.executed {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(Entity, T) bool) {
		for i := range q.entities {
			if !yield(q.entities[i], q.values[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component values only.
// Panics if Execute() has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.executed {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.values {
			if !yield(q.values[i]) {
				return
			}
		}
	}
}

// Executable is a query that can be run by ExecuteQueries.
type Executable interface {
	ExecuteContext(ctx context.Context) error
}

// ExecuteQueries runs the queries concurrently and returns the first error.
func ExecuteQueries(ctx context.Context, queries ...Executable) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		g.Go(func() error {
			return q.ExecuteContext(ctx)
		})
	}
	return g.Wait()
}
