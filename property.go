package docmap

import (
	"fmt"
	"reflect"
	"strings"
)

// Property references one direct field of a struct type. It is the Go
// stand-in for a typed property-accessor expression; values come from
// Name or Select.
type Property interface {
	fmt.Stringer
	resolveField(t reflect.Type) (reflect.StructField, error)
}

type nameProperty string

// Name references a direct exported field by its Go name.
func Name(name string) Property { return nameProperty(name) }

func (p nameProperty) String() string { return string(p) }

func (p nameProperty) resolveField(t reflect.Type) (reflect.StructField, error) {
	name := strings.TrimSpace(string(p))
	path := t.Name() + "." + name
	if name == "" {
		return reflect.StructField{}, IllegalExpression(path, "empty property name")
	}
	if strings.ContainsAny(name, ".[]() \t*&") {
		return reflect.StructField{}, IllegalExpression(path, "only direct field access is allowed")
	}
	sf, ok := t.FieldByName(name)
	if !ok {
		return reflect.StructField{}, IllegalExpression(path, "no such field on "+t.String())
	}
	if len(sf.Index) != 1 {
		return reflect.StructField{}, IllegalExpression(path, "promoted fields are not direct field accesses")
	}
	if !sf.IsExported() {
		return reflect.StructField{}, IllegalExpression(path, "field is not exported")
	}
	return sf, nil
}

type selectorProperty[T, V any] struct {
	sel func(*T) *V
}

// Select references the field whose address sel returns, for example
//
//	docmap.Select(func(u *User) *string { return &u.Name })
//
// The selector runs once against a zero *T at resolution time.
func Select[T, V any](sel func(*T) *V) Property { return selectorProperty[T, V]{sel: sel} }

func (p selectorProperty[T, V]) String() string {
	return fmt.Sprintf("func(*%s) *%s", reflect.TypeFor[T]().Name(), reflect.TypeFor[V]().String())
}

func (p selectorProperty[T, V]) resolveField(t reflect.Type) (sf reflect.StructField, err error) {
	path := t.Name() + "." + p.String()
	if reflect.TypeFor[T]() != t {
		return sf, IllegalExpression(path, "selector is declared for "+reflect.TypeFor[T]().String())
	}
	if p.sel == nil {
		return sf, IllegalExpression(path, "nil selector")
	}
	defer func() {
		if r := recover(); r != nil {
			sf, err = reflect.StructField{}, IllegalExpression(path, fmt.Sprintf("selector panicked: %v", r))
		}
	}()
	base := new(T)
	ptr := p.sel(base)
	if ptr == nil {
		return sf, IllegalExpression(path, "selector returned nil")
	}
	lo := reflect.ValueOf(base).Pointer()
	at := reflect.ValueOf(ptr).Pointer()
	if at < lo || at >= lo+t.Size() {
		return sf, IllegalExpression(path, "selector must return the address of a field of its argument")
	}
	off := at - lo
	vt := reflect.TypeFor[V]()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Offset != off || f.Type != vt {
			continue
		}
		if !f.IsExported() {
			return sf, IllegalExpression(t.Name()+"."+f.Name, "field is not exported")
		}
		return f, nil
	}
	return sf, IllegalExpression(path, "selector addresses a nested or computed value")
}

// ResolveField maps p to a direct field of t.
func ResolveField(t reflect.Type, p Property) (reflect.StructField, error) {
	if p == nil {
		return reflect.StructField{}, IllegalExpression(t.Name()+".<nil>", "nil property")
	}
	return p.resolveField(t)
}

// Resolve locates the member registered for p. It returns the resolved
// struct field alongside, so callers can include the member when absent.
func Resolve(e *EntityDescriptor, p Property) (*MemberDescriptor, reflect.StructField, bool, error) {
	sf, err := ResolveField(e.typ, p)
	if err != nil {
		return nil, sf, false, err
	}
	m, ok := e.Member(sf.Name)
	if ok && m.IsVirtual() {
		return nil, sf, false, nil
	}
	return m, sf, ok, nil
}
