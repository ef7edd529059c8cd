package docmap

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Discoverer populates a draft from the type's declared fields.
// skip reports member names that must not be added (for example members
// ignored earlier in a builder chain). Discovery is additive: members
// already present are left untouched.
type Discoverer interface {
	Discover(reg *Registry, e *EntityDescriptor, skip func(memberName string) bool) error
}

// MemberFactory builds the descriptor of a concrete struct field.
type MemberFactory interface {
	NewMember(e *EntityDescriptor, sf reflect.StructField, isID bool) (*MemberDescriptor, error)
}

// ReferenceRegistrar turns a member into a cross-collection reference.
type ReferenceRegistrar interface {
	RegisterReference(reg *Registry, m *MemberDescriptor, collection string) error
}

// CollectionNamer names the collection that stores a type.
type CollectionNamer interface {
	CollectionName(t reflect.Type) string
}

// Options configures a Registry. Nil collaborators fall back to DefaultConventions.
type Options struct {
	Discoverer         Discoverer
	MemberFactory      MemberFactory
	ReferenceRegistrar ReferenceRegistrar
	CollectionNamer    CollectionNamer
	Logger             *slog.Logger
}

// Registry holds the published Entity Descriptors, one per struct type.
type Registry struct {
	mu       sync.RWMutex
	entities map[reflect.Type]*EntityDescriptor
	opts     Options
	log      *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opt ...Options) *Registry {
	var o Options
	if len(opt) > 0 {
		o = opt[len(opt)-1]
	}
	if o.Discoverer == nil {
		o.Discoverer = DefaultConventions
	}
	if o.MemberFactory == nil {
		o.MemberFactory = DefaultConventions
	}
	if o.ReferenceRegistrar == nil {
		o.ReferenceRegistrar = DefaultConventions
	}
	if o.CollectionNamer == nil {
		o.CollectionNamer = DefaultConventions
	}
	lg := o.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	return &Registry{entities: map[reflect.Type]*EntityDescriptor{}, opts: o, log: lg}
}

// Get returns the published descriptor for t. When none exists and
// createIfMissing is set, an empty sealed descriptor is registered.
// Non-struct types yield (nil, false).
func (r *Registry) Get(t reflect.Type, createIfMissing bool) (*EntityDescriptor, bool) {
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	r.mu.RLock()
	e, ok := r.entities[t]
	r.mu.RUnlock()
	if ok || !createIfMissing {
		return e, ok
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entities[t]; ok {
		return e, true
	}
	e = newEntity(t, r.opts.CollectionNamer.CollectionName(t))
	e.sealed = true
	r.entities[t] = e
	r.log.Debug("docmap: entity created", slog.String("type", t.String()), slog.String("collection", e.collection))
	return e, true
}

// Publish seals the draft and replaces the registered snapshot of its type.
func (r *Registry) Publish(e *EntityDescriptor) error {
	if err := e.Seal(); err != nil {
		return err
	}
	r.mu.Lock()
	r.entities[e.typ] = e
	r.mu.Unlock()
	if r.log.Enabled(context.Background(), slog.LevelDebug) {
		r.log.Debug("docmap: entity published", slog.String("type", e.typ.String()), slog.Int("members", e.Len()))
	}
	return nil
}

// Types lists the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	out := make([]reflect.Type, 0, len(r.entities))
	for t := range r.entities {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Lookup finds a published descriptor by collection name. When several
// types share the collection, the first by type name wins.
func (r *Registry) Lookup(collection string) (*EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *EntityDescriptor
	for t, e := range r.entities {
		if e.collection != collection {
			continue
		}
		if found == nil || t.String() < found.typ.String() {
			found = e
		}
	}
	return found, found != nil
}

// Describe returns the published descriptor for t, or a detached sealed
// descriptor built by the Discoverer when none is published.
func (r *Registry) Describe(t reflect.Type) (*EntityDescriptor, error) {
	if e, ok := r.Get(t, false); ok && e.Len() > 0 {
		return e, nil
	}
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, InvalidArgument(typeName(t), "mapped types must be structs")
	}
	d := newEntity(t, r.opts.CollectionNamer.CollectionName(t))
	if e, ok := r.Get(t, false); ok {
		d = e.Draft()
	}
	if err := r.AutoMap(d, nil); err != nil {
		return nil, err
	}
	if err := d.Seal(); err != nil {
		return nil, err
	}
	return d, nil
}

// AutoMap runs the configured Discoverer on a draft.
func (r *Registry) AutoMap(e *EntityDescriptor, skip func(string) bool) error {
	if err := e.checkDraft("automap"); err != nil {
		return err
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}
	before := e.Len()
	if err := r.opts.Discoverer.Discover(r, e, skip); err != nil {
		return err
	}
	r.log.Debug("docmap: automap", slog.String("type", e.typ.String()), slog.Int("added", e.Len()-before))
	return nil
}

// NewMember delegates to the configured MemberFactory.
func (r *Registry) NewMember(e *EntityDescriptor, sf reflect.StructField, isID bool) (*MemberDescriptor, error) {
	return r.opts.MemberFactory.NewMember(e, sf, isID)
}

// RegisterReference delegates to the configured ReferenceRegistrar.
func (r *Registry) RegisterReference(m *MemberDescriptor, collection string) error {
	return r.opts.ReferenceRegistrar.RegisterReference(r, m, collection)
}

// CollectionName delegates to the configured CollectionNamer.
func (r *Registry) CollectionName(t reflect.Type) string {
	return r.opts.CollectionNamer.CollectionName(indirectType(t))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
