package docmap

import (
	"math"
	"reflect"
	"strings"
)

// FieldTag is the parsed mapping information of one struct field.
type FieldTag struct {
	Key     string // document key; "-" disables the field
	ID      bool
	NoAuto  bool // autoid=false
	Unique  bool
	Ref     bool
	RefColl string
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's document key.
// Priority: docmap:"name" > bson tag name > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string { return ParseFieldTag(sf).Key }

// ParseFieldTag parses `docmap:"name,id,autoid=false,unique,ref=coll"`.
// The name part may be empty to keep the bson/json/field-name fallback.
func ParseFieldTag(sf reflect.StructField) FieldTag {
	var ft FieldTag
	if dt, ok := sf.Tag.Lookup("docmap"); ok {
		parts := strings.Split(dt, ",")
		ft.Key = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			switch {
			case p == "id":
				ft.ID = true
			case p == "autoid=false":
				ft.NoAuto = true
			case p == "unique":
				ft.Unique = true
			case p == "ref":
				ft.Ref = true
			case strings.HasPrefix(p, "ref="):
				ft.Ref = true
				ft.RefColl = strings.TrimPrefix(p, "ref=")
			}
		}
		if ft.Key != "" {
			return ft
		}
	}
	for _, tag := range []string{"bson", "json"} {
		if jt := sf.Tag.Get(tag); jt != "" {
			if jt == "-" {
				ft.Key = "-"
				return ft
			}
			if i := strings.IndexByte(jt, ','); i >= 0 {
				jt = jt[:i]
			}
			if jt != "" {
				ft.Key = jt
				return ft
			}
		}
	}
	ft.Key = sf.Name
	return ft
}

// indirectType strips pointer levels.
func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// referenceTarget returns the struct type a reference member points to.
func referenceTarget(t reflect.Type) (reflect.Type, bool, bool) {
	many := false
	t = indirectType(t)
	if t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		many = true
		t = indirectType(t.Elem())
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, many, false
	}
	return t, many, true
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumericKind(k reflect.Kind) bool {
	return isIntKind(k) || k == reflect.Float32 || k == reflect.Float64
}

func fieldGetter(index []int) Getter {
	return func(obj any) any {
		rv := reflect.ValueOf(obj)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		if !rv.IsValid() {
			return nil
		}
		return rv.FieldByIndex(index).Interface()
	}
}

func fieldSetter(path string, index []int) Setter {
	return func(obj any, value any) error {
		rv := reflect.ValueOf(obj)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return InvalidArgument(path, "setter requires a non-nil pointer")
		}
		fv := rv.Elem().FieldByIndex(index)
		if value == nil {
			// Gracefully handle nulls: zero value for any field kind.
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		vv := reflect.ValueOf(value)
		switch {
		case vv.Type().AssignableTo(fv.Type()):
			fv.Set(vv)
		case isNumericKind(vv.Kind()) && isNumericKind(fv.Kind()):
			if !fitsNumber(vv, fv.Type()) {
				return InvalidArgument(path, "value "+vv.Type().String()+" does not fit "+fv.Type().String())
			}
			fv.Set(vv.Convert(fv.Type()))
		case vv.Kind() == fv.Kind() && vv.Type().ConvertibleTo(fv.Type()):
			fv.Set(vv.Convert(fv.Type()))
		default:
			return InvalidArgument(path, "cannot assign "+vv.Type().String()+" to "+fv.Type().String())
		}
		return nil
	}
}

// fitsNumber reports whether v converts to the numeric type t without
// losing a fraction, wrapping or overflowing.
func fitsNumber(v reflect.Value, t reflect.Type) bool {
	z := reflect.New(t).Elem()
	switch {
	case v.CanInt():
		n := v.Int()
		switch {
		case z.CanInt():
			return !z.OverflowInt(n)
		case z.CanUint():
			return n >= 0 && !z.OverflowUint(uint64(n))
		}
		return true
	case v.CanUint():
		n := v.Uint()
		switch {
		case z.CanInt():
			return n <= math.MaxInt64 && !z.OverflowInt(int64(n))
		case z.CanUint():
			return !z.OverflowUint(n)
		}
		return true
	}
	f := v.Float()
	switch {
	case z.CanFloat():
		return math.IsNaN(f) || math.IsInf(f, 0) || !z.OverflowFloat(f)
	case math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f):
		return false
	case z.CanInt():
		return f >= math.MinInt64 && f < math.MaxInt64 && !z.OverflowInt(int64(f))
	}
	return f >= 0 && f < math.MaxUint64 && !z.OverflowUint(uint64(f))
}
