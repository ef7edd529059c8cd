package docmap

import (
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
)

// EntityDescriptor is the ordered member registry of one struct type.
//
// A descriptor is either a draft, owned and mutated by a single builder, or
// a sealed snapshot published in a Registry. Accessors on a sealed
// descriptor hand out copies so the snapshot cannot be changed in place.
type EntityDescriptor struct {
	typ        reflect.Type
	collection string
	members    []*MemberDescriptor
	sealed     bool
	ids        *idState
}

func newEntity(t reflect.Type, collection string) *EntityDescriptor {
	return &EntityDescriptor{typ: t, collection: collection, ids: newIDState()}
}

// Type returns the mapped struct type.
func (e *EntityDescriptor) Type() reflect.Type { return e.typ }

// Collection returns the target collection name.
func (e *EntityDescriptor) Collection() string { return e.collection }

// Sealed reports whether the descriptor is an immutable snapshot.
func (e *EntityDescriptor) Sealed() bool { return e.sealed }

// Len returns the number of members.
func (e *EntityDescriptor) Len() int { return len(e.members) }

// Members returns copies of the members in registration order.
func (e *EntityDescriptor) Members() []MemberDescriptor {
	out := make([]MemberDescriptor, len(e.members))
	for i, m := range e.members {
		out[i] = *m.clone()
	}
	return out
}

func (e *EntityDescriptor) view(m *MemberDescriptor) *MemberDescriptor {
	if e.sealed {
		return m.clone()
	}
	return m
}

// Member looks a member up by its originating member name. A struct-backed
// member wins over a virtual member of the same name.
// On a draft the returned pointer may be mutated in place.
func (e *EntityDescriptor) Member(memberName string) (*MemberDescriptor, bool) {
	if i := e.memberIndex(memberName); i >= 0 {
		return e.view(e.members[i]), true
	}
	return nil, false
}

func (e *EntityDescriptor) memberIndex(memberName string) int {
	found := -1
	for i, m := range e.members {
		if m.MemberName != memberName {
			continue
		}
		if !m.IsVirtual() {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

// Field looks a member up by its document key.
func (e *EntityDescriptor) Field(fieldName string) (*MemberDescriptor, bool) {
	for _, m := range e.members {
		if m.FieldName == fieldName {
			return e.view(m), true
		}
	}
	return nil, false
}

// ID returns the identifier member, if any.
func (e *EntityDescriptor) ID() (*MemberDescriptor, bool) { return e.Field(IDField) }

// Draft clones the descriptor into a new mutable draft. The auto-id state
// is shared with the source descriptor.
func (e *EntityDescriptor) Draft() *EntityDescriptor {
	d := &EntityDescriptor{typ: e.typ, collection: e.collection, ids: e.ids}
	d.members = make([]*MemberDescriptor, len(e.members))
	for i, m := range e.members {
		d.members[i] = m.clone()
	}
	return d
}

func (e *EntityDescriptor) path(member string) string {
	return e.typ.Name() + "." + member
}

func (e *EntityDescriptor) checkDraft(op string) error {
	if e.sealed {
		return InvalidArgument(e.path(op), "descriptor is sealed; call Draft() first")
	}
	return nil
}

// SetCollection renames the target collection of a draft.
func (e *EntityDescriptor) SetCollection(name string) error {
	if err := e.checkDraft("collection"); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return InvalidArgument(e.path("collection"), "collection name must not be blank")
	}
	e.collection = name
	return nil
}

// Append adds a member at the end of a draft.
func (e *EntityDescriptor) Append(m *MemberDescriptor) error {
	if err := e.checkDraft("append"); err != nil {
		return err
	}
	if m == nil || strings.TrimSpace(m.FieldName) == "" {
		return InvalidArgument(e.path("?"), "member field name must not be blank")
	}
	if _, ok := e.Field(m.FieldName); ok {
		return DuplicateMember(e.path(m.MemberName), "field "+m.FieldName+" is already mapped")
	}
	// virtual members share the name space of document keys only
	for _, o := range e.members {
		if o.MemberName == m.MemberName && o.IsVirtual() == m.IsVirtual() {
			return DuplicateMember(e.path(m.MemberName), "member is already included")
		}
	}
	e.members = append(e.members, m)
	return nil
}

// Remove deletes the member with the given member name from a draft.
// It reports whether a member was removed.
func (e *EntityDescriptor) Remove(memberName string) (bool, error) {
	if err := e.checkDraft("remove"); err != nil {
		return false, err
	}
	i := e.memberIndex(memberName)
	if i < 0 {
		return false, nil
	}
	e.members = append(e.members[:i], e.members[i+1:]...)
	return true, nil
}

// Validate checks that every member has a non-blank, distinct field name.
func (e *EntityDescriptor) Validate() error {
	var iss Issues
	seen := make(map[string]string, len(e.members))
	for _, m := range e.members {
		if strings.TrimSpace(m.FieldName) == "" {
			iss = AppendIssues(iss, newIssue(CodeInvalidArgument, e.path(m.MemberName), "blank field name"))
			continue
		}
		if prev, ok := seen[m.FieldName]; ok {
			iss = AppendIssues(iss, newIssue(CodeDuplicateMember, e.path(m.MemberName), "field "+m.FieldName+" is also mapped by "+prev))
			continue
		}
		seen[m.FieldName] = m.MemberName
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Seal validates the draft and freezes it.
func (e *EntityDescriptor) Seal() error {
	if e.sealed {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	e.sealed = true
	return nil
}

type memberJSON struct {
	Field     string `json:"field"`
	Member    string `json:"member"`
	Type      string `json:"type,omitempty"`
	Unique    bool   `json:"unique,omitempty"`
	AutoID    bool   `json:"autoId,omitempty"`
	Virtual   bool   `json:"virtual,omitempty"`
	Ref       string `json:"ref,omitempty"`
	RefMany   bool   `json:"refMany,omitempty"`
	RefEntity string `json:"refEntity,omitempty"`
}

type entityJSON struct {
	Entity     string       `json:"entity"`
	Collection string       `json:"collection"`
	Sealed     bool         `json:"sealed"`
	Members    []memberJSON `json:"members"`
}

// MarshalJSON renders a diagnostic view of the descriptor.
func (e *EntityDescriptor) MarshalJSON() ([]byte, error) {
	out := entityJSON{Entity: e.typ.String(), Collection: e.collection, Sealed: e.sealed, Members: make([]memberJSON, 0, len(e.members))}
	for _, m := range e.members {
		mj := memberJSON{Field: m.FieldName, Member: m.MemberName, Unique: m.IsUnique, AutoID: m.AutoID, Virtual: m.IsVirtual()}
		if m.DataType != nil {
			mj.Type = m.DataType.String()
		}
		if r := m.Reference; r != nil {
			mj.Ref = r.Collection
			mj.RefMany = r.Many
			if r.Target != nil {
				mj.RefEntity = r.Target.String()
			}
		}
		out.Members = append(out.Members, mj)
	}
	return json.Marshal(out)
}
