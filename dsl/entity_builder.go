package dsl

import (
	"reflect"

	"github.com/reoring/docmap"
)

// Entity returns a typed builder for T bound to reg.
// This achieves a chain-style API over typed property selectors without
// method type parameters by parameterizing the builder type itself.
func Entity[T any](reg *docmap.Registry) *EntityBuilder[T] {
	return &EntityBuilder[T]{inner: EntityOf(reg, reflect.TypeFor[T]())}
}

// EntityBuilder is the typed front end of Builder.
type EntityBuilder[T any] struct{ inner *Builder }

// Prop is shorthand for docmap.Select bound to T.
func Prop[T, V any](sel func(*T) *V) docmap.Property { return docmap.Select(sel) }

// AutoMap maps the declared fields of T by convention.
func (tb *EntityBuilder[T]) AutoMap() *EntityBuilder[T] { tb.inner.AutoMap(); return tb }

// Collection overrides the collection name.
func (tb *EntityBuilder[T]) Collection(name string) *EntityBuilder[T] {
	tb.inner.Collection(name)
	return tb
}

// Include maps p explicitly.
func (tb *EntityBuilder[T]) Include(p docmap.Property) *EntityBuilder[T] {
	tb.inner.Include(p)
	return tb
}

// Ignore removes p from the mapping.
func (tb *EntityBuilder[T]) Ignore(p docmap.Property) *EntityBuilder[T] {
	tb.inner.Ignore(p)
	return tb
}

// Field sets the document key of p.
func (tb *EntityBuilder[T]) Field(p docmap.Property, name string) *EntityBuilder[T] {
	tb.inner.Field(p, name)
	return tb
}

// ID maps p to "_id"; autoID defaults to true.
func (tb *EntityBuilder[T]) ID(p docmap.Property, autoID ...bool) *EntityBuilder[T] {
	tb.inner.ID(p, autoID...)
	return tb
}

// Index sets the uniqueness flag of p.
func (tb *EntityBuilder[T]) Index(p docmap.Property, unique ...bool) *EntityBuilder[T] {
	tb.inner.Index(p, unique...)
	return tb
}

// IndexField sets the uniqueness flag of the member mapped to fieldName.
func (tb *EntityBuilder[T]) IndexField(fieldName string, unique ...bool) *EntityBuilder[T] {
	tb.inner.IndexField(fieldName, unique...)
	return tb
}

// DbRef marks p as a reference to another collection.
func (tb *EntityBuilder[T]) DbRef(p docmap.Property, collection ...string) *EntityBuilder[T] {
	tb.inner.DbRef(p, collection...)
	return tb
}

// IndexFunc registers a virtual member computed from a T value.
func (tb *EntityBuilder[T]) IndexFunc(name string, fn func(T) any, unique ...bool) *EntityBuilder[T] {
	var getter docmap.Getter
	if fn != nil {
		getter = func(obj any) any {
			switch v := obj.(type) {
			case T:
				return fn(v)
			case *T:
				if v == nil {
					return nil
				}
				return fn(*v)
			}
			return nil
		}
	}
	tb.inner.IndexFunc(name, getter, unique...)
	return tb
}

// Err returns the first error raised by the chain.
func (tb *EntityBuilder[T]) Err() error { return tb.inner.Err() }

// Draft exposes the descriptor under construction.
func (tb *EntityBuilder[T]) Draft() *docmap.EntityDescriptor { return tb.inner.Draft() }

// Build validates and publishes the mapping of T.
func (tb *EntityBuilder[T]) Build() (*docmap.EntityDescriptor, error) { return tb.inner.Build() }

// MustBuild builds, panicking on error.
func (tb *EntityBuilder[T]) MustBuild() *docmap.EntityDescriptor { return tb.inner.MustBuild() }
