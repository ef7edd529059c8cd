package docmap

import (
	"reflect"
	"strings"

	tfmt "github.com/tinywasm/fmt"
)

// Conventions is the default tag- and name-driven mapping policy. It
// implements Discoverer, MemberFactory, ReferenceRegistrar and CollectionNamer.
type Conventions struct{}

// DefaultConventions is used by registries created without explicit collaborators.
var DefaultConventions = Conventions{}

// CollectionName returns the snake_case plural of the type name ("UserRole" -> "user_roles").
func (Conventions) CollectionName(t reflect.Type) string {
	t = indirectType(t)
	if t == nil || t.Name() == "" {
		return ""
	}
	return tfmt.Convert(t.Name() + "s").SnakeLow().String()
}

// NewMember builds a reflect-backed descriptor for sf. The key follows
// ResolveStructKey unless the member is the identifier.
func (Conventions) NewMember(e *EntityDescriptor, sf reflect.StructField, isID bool) (*MemberDescriptor, error) {
	if !sf.IsExported() || len(sf.Index) == 0 {
		return nil, IllegalExpression(e.path(sf.Name), "only exported fields can be mapped")
	}
	ft := ParseFieldTag(sf)
	key := ft.Key
	if key == "-" || key == "" {
		key = sf.Name
	}
	m := &MemberDescriptor{
		FieldName:  key,
		MemberName: sf.Name,
		Getter:     fieldGetter(sf.Index),
		Setter:     fieldSetter(e.path(sf.Name), sf.Index),
		DataType:   sf.Type,
		IsUnique:   ft.Unique,
		Index:      append([]int(nil), sf.Index...),
	}
	if isID {
		m.FieldName = IDField
		m.AutoID = !ft.NoAuto
	}
	return m, nil
}

// RegisterReference attaches a Reference to m. Struct, *struct and slices of
// those are accepted.
func (c Conventions) RegisterReference(reg *Registry, m *MemberDescriptor, collection string) error {
	target, many, ok := referenceTarget(m.DataType)
	if !ok {
		return InvalidArgument(m.MemberName, "references must point to a struct type, got "+typeName(m.DataType))
	}
	if strings.TrimSpace(collection) == "" {
		if reg != nil {
			collection = reg.CollectionName(target)
		} else {
			collection = c.CollectionName(target)
		}
	}
	m.Reference = &Reference{Collection: collection, Target: target, Many: many}
	return nil
}

// Discover adds every exported, non-embedded field of e's type in declaration
// order. The first identifier candidate becomes "_id": a field tagged `id`,
// otherwise a field named ID/Id, otherwise <Type>ID/<Type>Id.
func (c Conventions) Discover(reg *Registry, e *EntityDescriptor, skip func(string) bool) error {
	t := e.typ
	idName := ""
	if _, claimed := e.ID(); !claimed {
		idName = c.identifierField(t)
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		ft := ParseFieldTag(sf)
		if ft.Key == "-" || skip(sf.Name) {
			continue
		}
		if m, ok := e.Member(sf.Name); ok && !m.IsVirtual() {
			continue
		}
		m, err := reg.NewMember(e, sf, sf.Name == idName)
		if err != nil {
			return err
		}
		if err := e.Append(m); err != nil {
			return err
		}
		if ft.Ref {
			if err := reg.RegisterReference(m, ft.RefColl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (Conventions) identifierField(t reflect.Type) string {
	var byName, byType string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		ft := ParseFieldTag(sf)
		if ft.Key == "-" {
			continue
		}
		if ft.ID || ft.Key == IDField {
			return sf.Name
		}
		switch sf.Name {
		case "ID", "Id":
			if byName == "" {
				byName = sf.Name
			}
		case t.Name() + "ID", t.Name() + "Id":
			if byType == "" {
				byType = sf.Name
			}
		}
	}
	if byName != "" {
		return byName
	}
	return byType
}
