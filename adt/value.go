package adt

import (
	"fmt"
	"reflect"
)

// Value is an immutable variant or record value. Record fields are held
// in declared order.
type Value struct {
	shape  *Shape
	fields []any
}

// ============================================================
// Accessors
// ============================================================

// Shape returns the shape of the constructor that built v.
func (v *Value) Shape() *Shape {
	if v == nil {
		return nil
	}
	return v.shape
}

// Tag returns the tag of v.
func (v *Value) Tag() string {
	return v.Shape().Tag()
}

// Kind returns whether v is a variant or a record.
func (v *Value) Kind() Kind {
	return v.Shape().Kind()
}

// Len returns the number of fields.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	return len(v.fields)
}

// Index returns the i-th field in positional (or declared) order.
func (v *Value) Index(i int) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("adt: nil value")
	}
	if i < 0 || i >= len(v.fields) {
		return nil, fmt.Errorf("adt: %s: index %d out of bounds (len=%d)", v.Tag(), i, len(v.fields))
	}
	return v.fields[i], nil
}

// Get returns a record field by name.
func (v *Value) Get(name string) (any, bool) {
	if v == nil || v.shape.kind != KindRecord {
		return nil, false
	}
	for i, n := range v.shape.names {
		if n == name {
			return v.fields[i], true
		}
	}
	return nil, false
}

// Fields returns a copy of the field values in order.
func (v *Value) Fields() []any {
	if v == nil {
		return nil
	}
	out := make([]any, len(v.fields))
	copy(out, v.fields)
	return out
}

// Names returns the field names of a record value.
func (v *Value) Names() []string {
	return v.Shape().Names()
}

// Is returns true if v was built by constructor c.
func (v *Value) Is(c Constructor) bool {
	return v != nil && c != nil && c.Shape() != nil && v.shape == c.Shape()
}

// ============================================================
// Equality
// ============================================================

// Equal reports structural equality: same kind and tag name, then equal
// fields pairwise in order for variants, or equal field-name sets and
// per-name values for records. Values built by distinct declarations
// that share a tag compare equal, as re-materialized values must.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind() != other.Kind() || v.Tag() != other.Tag() || len(v.fields) != len(other.fields) {
		return false
	}

	if v.Kind() == KindRecord {
		for i, name := range v.shape.names {
			ov, ok := other.Get(name)
			if !ok || !equalAny(v.fields[i], ov) {
				return false
			}
		}
		return true
	}

	for i := range v.fields {
		if !equalAny(v.fields[i], other.fields[i]) {
			return false
		}
	}
	return true
}

// equalAny compares field values, descending into slices, arrays and
// maps so that nested values compare with Equal.
func equalAny(a, b any) bool {
	if av, ok := a.(*Value); ok {
		bv, ok := b.(*Value)
		return ok && av.Equal(bv)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Slice, reflect.Array:
		if ra.Kind() == reflect.Slice && ra.IsNil() != rb.IsNil() {
			return false
		}
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !equalAny(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true

	case reflect.Map:
		if ra.Len() != rb.Len() {
			return false
		}
		iter := ra.MapRange()
		for iter.Next() {
			bval := rb.MapIndex(iter.Key())
			if !bval.IsValid() || !equalAny(iter.Value().Interface(), bval.Interface()) {
				return false
			}
		}
		return true
	}

	if ra.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
