package mapfile

import (
	"fmt"
	"reflect"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/dsl"
)

// TypeSet resolves the type names used in a File.
type TypeSet map[string]reflect.Type

// Types builds a TypeSet from sample values (T or *T), keyed by
// reflect.Type.String() of the struct type.
func Types(samples ...any) TypeSet {
	ts := make(TypeSet, len(samples))
	for _, s := range samples {
		t := reflect.TypeOf(s)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t != nil {
			ts[t.String()] = t
		}
	}
	return ts
}

// Apply lints f and configures every declared entity on reg through the
// string-keyed builder API, in file order. Operations of one entity run in
// this order: automap, collection, include, ignore, fields, id, unique,
// indexes, refs. The first failing entity aborts Apply; entities published
// before it stay published.
func Apply(reg *docmap.Registry, f *File, types TypeSet) ([]*docmap.EntityDescriptor, error) {
	if err := Lint(f); err != nil {
		return nil, err
	}
	out := make([]*docmap.EntityDescriptor, 0, len(f.Entities))
	for _, e := range f.Entities {
		t, ok := types[e.Type]
		if !ok {
			return out, fmt.Errorf("mapfile: entity %s: %w", e.Type, docmap.InvalidArgument(e.Type, "type is not in the TypeSet"))
		}
		ed, err := build(dsl.EntityOf(reg, t), e).Build()
		if err != nil {
			return out, fmt.Errorf("mapfile: entity %s: %w", e.Type, err)
		}
		out = append(out, ed)
	}
	return out, nil
}

func build(b *dsl.Builder, e Entity) *dsl.Builder {
	if e.AutoMap {
		b.AutoMap()
	}
	if e.Collection != "" {
		b.Collection(e.Collection)
	}
	for _, m := range e.Include {
		b.Include(docmap.Name(m))
	}
	for _, m := range e.Ignore {
		b.Ignore(docmap.Name(m))
	}
	for _, p := range e.Fields {
		b.Field(docmap.Name(p.Key), p.Value)
	}
	if e.ID != "" {
		if e.AutoID != nil {
			b.ID(docmap.Name(e.ID), *e.AutoID)
		} else {
			b.ID(docmap.Name(e.ID))
		}
	}
	for _, m := range e.Unique {
		b.Index(docmap.Name(m), true)
	}
	for _, ix := range e.Indexes {
		b.IndexField(ix.Field, ix.Unique)
	}
	for _, p := range e.Refs {
		b.DbRef(docmap.Name(p.Key), p.Value)
	}
	return b
}
