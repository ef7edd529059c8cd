package dsl

import (
	"reflect"
	"strings"

	"github.com/reoring/docmap"
)

// Builder configures the mapping of one struct type. It works on a draft
// clone of the registry's descriptor; Build publishes the draft.
//
// Every method returns the builder. The first failing call records its
// error and turns all later calls into no-ops; Err and Build report it.
type Builder struct {
	reg        *docmap.Registry
	typ        reflect.Type
	draft      *docmap.EntityDescriptor
	ignored    map[string]struct{}
	autoMapped bool
	built      bool
	err        error
}

// EntityOf returns a builder for t bound to reg.
func EntityOf(reg *docmap.Registry, t reflect.Type) *Builder {
	b := &Builder{reg: reg, typ: t, ignored: map[string]struct{}{}}
	e, ok := reg.Get(t, true)
	if !ok {
		b.err = docmap.InvalidArgument(typeString(t), "mapped types must be structs")
		return b
	}
	b.typ = e.Type()
	b.draft = e.Draft()
	return b
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func (b *Builder) path(member string) string { return b.typ.Name() + "." + member }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// ok reports whether the chain may continue.
func (b *Builder) ok() bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.err = docmap.InvalidArgument(b.path("build"), "builder was already built")
		return false
	}
	return true
}

// Err returns the first error raised by the chain.
func (b *Builder) Err() error { return b.err }

// Draft exposes the descriptor under construction (read it, don't keep it).
func (b *Builder) Draft() *docmap.EntityDescriptor { return b.draft }

// Collection overrides the target collection name.
func (b *Builder) Collection(name string) *Builder {
	if !b.ok() {
		return b
	}
	if err := b.draft.SetCollection(name); err != nil {
		return b.fail(err)
	}
	return b
}

// AutoMap populates the draft from the type's declared fields. It runs once
// per builder, never replaces existing members and skips members ignored
// earlier in the chain.
func (b *Builder) AutoMap() *Builder {
	if !b.ok() || b.autoMapped {
		return b
	}
	b.autoMapped = true
	skip := func(name string) bool { _, ok := b.ignored[name]; return ok }
	if err := b.reg.AutoMap(b.draft, skip); err != nil {
		return b.fail(err)
	}
	return b
}

func (b *Builder) include(sf reflect.StructField) (*docmap.MemberDescriptor, error) {
	m, err := b.reg.NewMember(b.draft, sf, false)
	if err != nil {
		return nil, err
	}
	if err := b.draft.Append(m); err != nil {
		return nil, err
	}
	delete(b.ignored, sf.Name)
	return m, nil
}

// member resolves p, including it when it is not mapped yet.
func (b *Builder) member(p docmap.Property) (*docmap.MemberDescriptor, error) {
	m, sf, ok, err := docmap.Resolve(b.draft, p)
	if err != nil {
		return nil, err
	}
	if ok {
		return m, nil
	}
	return b.include(sf)
}

// Include maps p explicitly. Including an already mapped member, or one
// whose key is taken, fails with a duplicate member error.
func (b *Builder) Include(p docmap.Property) *Builder {
	if !b.ok() {
		return b
	}
	_, sf, ok, err := docmap.Resolve(b.draft, p)
	if err != nil {
		return b.fail(err)
	}
	if ok {
		return b.fail(docmap.DuplicateMember(b.path(sf.Name), "member is already included"))
	}
	if _, err := b.include(sf); err != nil {
		return b.fail(err)
	}
	return b
}

// Ignore removes p from the mapping. A later AutoMap on this builder does
// not bring it back.
func (b *Builder) Ignore(p docmap.Property) *Builder {
	if !b.ok() {
		return b
	}
	m, sf, ok, err := docmap.Resolve(b.draft, p)
	if err != nil {
		return b.fail(err)
	}
	if ok {
		if _, err := b.draft.Remove(m.MemberName); err != nil {
			return b.fail(err)
		}
	}
	b.ignored[sf.Name] = struct{}{}
	return b
}

// Field sets the document key of p. Member name and accessors are unchanged.
func (b *Builder) Field(p docmap.Property, name string) *Builder {
	if !b.ok() {
		return b
	}
	if strings.TrimSpace(name) == "" {
		return b.fail(docmap.InvalidArgument(b.path(propName(p)), "field name must not be blank"))
	}
	m, err := b.member(p)
	if err != nil {
		return b.fail(err)
	}
	if other, ok := b.draft.Field(name); ok && other != m {
		return b.fail(docmap.DuplicateMember(b.path(m.MemberName), "field "+name+" is already mapped by "+other.MemberName))
	}
	m.FieldName = name
	return b
}

// ID maps p to the identifier key "_id". autoID defaults to true. Claiming
// "_id" for a second member is a duplicate member error; rename the
// previous identifier with Field first.
func (b *Builder) ID(p docmap.Property, autoID ...bool) *Builder {
	if !b.ok() {
		return b
	}
	m, err := b.member(p)
	if err != nil {
		return b.fail(err)
	}
	if other, ok := b.draft.ID(); ok && other != m {
		return b.fail(docmap.DuplicateMember(b.path(m.MemberName), "identifier is already mapped by "+other.MemberName))
	}
	m.FieldName = docmap.IDField
	m.AutoID = last(autoID, true)
	return b
}

// Index sets the uniqueness flag of p. unique defaults to false.
func (b *Builder) Index(p docmap.Property, unique ...bool) *Builder {
	if !b.ok() {
		return b
	}
	m, err := b.member(p)
	if err != nil {
		return b.fail(err)
	}
	m.IsUnique = last(unique, false)
	return b
}

// IndexFunc appends a virtual member computed by getter. The member has no
// setter; its field and member name are both name.
func (b *Builder) IndexFunc(name string, getter docmap.Getter, unique ...bool) *Builder {
	if !b.ok() {
		return b
	}
	if strings.TrimSpace(name) == "" {
		return b.fail(docmap.InvalidArgument(b.path("<index>"), "index name must not be blank"))
	}
	if getter == nil {
		return b.fail(docmap.InvalidArgument(b.path(name), "index getter must not be nil"))
	}
	m := &docmap.MemberDescriptor{
		FieldName:  name,
		MemberName: name,
		Getter:     getter,
		DataType:   reflect.TypeFor[any](),
		IsUnique:   last(unique, false),
	}
	if err := b.draft.Append(m); err != nil {
		return b.fail(err)
	}
	return b
}

// IndexField sets the uniqueness flag of the member already mapped to fieldName.
func (b *Builder) IndexField(fieldName string, unique ...bool) *Builder {
	if !b.ok() {
		return b
	}
	if strings.TrimSpace(fieldName) == "" {
		return b.fail(docmap.InvalidArgument(b.path("<field>"), "field name must not be blank"))
	}
	m, ok := b.draft.Field(fieldName)
	if !ok {
		return b.fail(docmap.InvalidArgument(b.path(fieldName), "no member is mapped to field "+fieldName))
	}
	m.IsUnique = last(unique, false)
	return b
}

// DbRef marks p as a reference to another collection. Without collection,
// the name is derived from the property's target type.
func (b *Builder) DbRef(p docmap.Property, collection ...string) *Builder {
	if !b.ok() {
		return b
	}
	m, err := b.member(p)
	if err != nil {
		return b.fail(err)
	}
	if err := b.reg.RegisterReference(m, last(collection, "")); err != nil {
		return b.fail(err)
	}
	return b
}

// Build validates and publishes a copy of the draft, returning the sealed
// descriptor. Members read through Draft stay detached from it.
func (b *Builder) Build() (*docmap.EntityDescriptor, error) {
	if !b.ok() {
		return nil, b.err
	}
	e := b.draft.Draft()
	if err := b.reg.Publish(e); err != nil {
		b.err = err
		return nil, err
	}
	b.built = true
	return e, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *docmap.EntityDescriptor {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

func propName(p docmap.Property) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

func last[V any](vs []V, def V) V {
	if len(vs) == 0 {
		return def
	}
	return vs[len(vs)-1]
}
