package docmap

import (
	"reflect"
	"slices"
)

// IDField is the document key reserved for the identifier member.
const IDField = "_id"

// Getter reads a member value from an instance (T or *T).
type Getter func(obj any) any

// Setter assigns a member value onto an instance (*T).
type Setter func(obj any, value any) error

// Reference marks a member as pointing to records of another collection.
type Reference struct {
	Collection string
	Target     reflect.Type // referenced struct type (pointer/slice stripped)
	Many       bool         // member holds a slice of references
}

// MemberDescriptor is the mapping record of one document field.
type MemberDescriptor struct {
	FieldName  string // document key
	MemberName string // originating struct field, or the index name for virtual members
	Getter     Getter
	Setter     Setter // nil for virtual (computed) members
	DataType   reflect.Type
	IsUnique   bool
	AutoID     bool
	Reference  *Reference
	Index      []int // reflect field index; nil for virtual members
}

// IsVirtual reports whether the member has no backing struct field.
func (m *MemberDescriptor) IsVirtual() bool { return m.Index == nil }

// IsID reports whether the member is mapped to the identifier key.
func (m *MemberDescriptor) IsID() bool { return m.FieldName == IDField }

func (m *MemberDescriptor) clone() *MemberDescriptor {
	c := *m
	c.Index = slices.Clone(m.Index)
	if m.Reference != nil {
		r := *m.Reference
		c.Reference = &r
	}
	return &c
}
