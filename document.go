package docmap

import (
	"reflect"
)

// Reference document keys.
const (
	RefIDKey         = "$id"
	RefCollectionKey = "$ref"
)

// Value is one extracted document field.
type Value struct {
	Field string
	Value any
}

// Extract reads obj (T or *T) through the published mapping of its type and
// returns the document fields in member order. Reference members are
// rendered as {"$id": <target id>, "$ref": <collection>} (a slice of those
// for Many references; nil stays nil).
func (r *Registry) Extract(obj any) ([]Value, error) {
	t := indirectType(reflect.TypeOf(obj))
	e, ok := r.Get(t, false)
	if !ok {
		return nil, InvalidArgument(typeName(t), "type is not mapped")
	}
	out := make([]Value, 0, e.Len())
	for _, m := range e.members {
		v := m.Getter(obj)
		if m.Reference != nil {
			rv, err := r.referenceValue(m, v)
			if err != nil {
				return nil, err
			}
			v = rv
		}
		out = append(out, Value{Field: m.FieldName, Value: v})
	}
	return out, nil
}

func (r *Registry) referenceValue(m *MemberDescriptor, v any) (any, error) {
	target, err := r.Describe(m.Reference.Target)
	if err != nil {
		return nil, err
	}
	tid, ok := target.ID()
	if !ok {
		return nil, InvalidArgument(m.MemberName, "reference target "+target.typ.String()+" has no identifier")
	}
	ref := func(elem reflect.Value) any {
		for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
			if elem.IsNil() {
				return nil
			}
			elem = elem.Elem()
		}
		return map[string]any{RefIDKey: tid.Getter(elem.Interface()), RefCollectionKey: m.Reference.Collection}
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil
	}
	if !m.Reference.Many {
		return ref(rv), nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	refs := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		refs = append(refs, ref(rv.Index(i)))
	}
	return refs, nil
}

// Assign sets the fields present in doc onto obj (a *T) through member
// setters. Virtual and reference members are skipped.
func (e *EntityDescriptor) Assign(obj any, doc map[string]any) error {
	for _, m := range e.members {
		if m.Setter == nil || m.Reference != nil {
			continue
		}
		v, ok := doc[m.FieldName]
		if !ok {
			continue
		}
		if err := m.Setter(obj, v); err != nil {
			return err
		}
	}
	return nil
}
