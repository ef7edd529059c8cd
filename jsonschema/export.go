package jsonschema

import (
	"encoding"
	"reflect"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/docmap"
)

// Draft is the JSON Schema dialect emitted by FromEntity.
const Draft = "https://json-schema.org/draft/2020-12/schema"

var (
	timeType          = reflect.TypeFor[time.Time]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// FromEntity renders the document shape described by e.
// Reference members become {"$id", "$ref"} objects (arrays of them when Many).
func FromEntity(e *docmap.EntityDescriptor) *Schema {
	s := &Schema{
		Schema:               Draft,
		Title:                e.Type().Name(),
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
		Collection:           e.Collection(),
	}
	for _, m := range e.Members() {
		var p *Schema
		if m.Reference != nil {
			p = refSchema(m.Reference)
		} else {
			p = typeSchema(m.DataType)
		}
		p.Member = m.MemberName
		p.Unique = m.IsUnique
		p.AutoID = m.AutoID
		p.ReadOnly = m.IsVirtual()
		s.Properties[m.FieldName] = p
		s.Order = append(s.Order, m.FieldName)
		if m.IsID() && !m.AutoID {
			s.Required = append(s.Required, m.FieldName)
		}
	}
	return s
}

// Marshal encodes the schema of e with go-json.
func Marshal(e *docmap.EntityDescriptor) ([]byte, error) {
	return json.Marshal(FromEntity(e))
}

// MarshalIndent is like Marshal with indentation.
func MarshalIndent(e *docmap.EntityDescriptor) ([]byte, error) {
	return json.MarshalIndent(FromEntity(e), "", "  ")
}

func refSchema(r *docmap.Reference) *Schema {
	one := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			docmap.RefIDKey:         {},
			docmap.RefCollectionKey: {Type: "string"},
		},
		Required: []string{docmap.RefIDKey, docmap.RefCollectionKey},
	}
	if r.Many {
		return &Schema{Type: "array", Items: one, Collection: r.Collection}
	}
	one.Collection = r.Collection
	return one
}

func typeSchema(t reflect.Type) *Schema {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return &Schema{}
	}
	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}
	}
	if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return &Schema{Type: "string"}
	}
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: typeSchema(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: typeSchema(t.Elem())}
	case reflect.Struct:
		return &Schema{Type: "object"}
	}
	// interface / any: unconstrained
	return &Schema{}
}
