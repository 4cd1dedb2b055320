package adt

import (
	"fmt"
	"sort"
)

// Field is a named field spec of a record.
type Field struct {
	Name string
	Spec Spec
}

// F creates a Field for use in DeclareRecord.
func F(name string, spec Spec) Field {
	return Field{Name: name, Spec: spec}
}

// Record constructs tagged values with named fields. Field order is the
// declaration order and is used for printing and match unpacking.
type Record struct {
	shape  *Shape
	fields []Field
	index  map[string]int
}

// DeclareRecord declares a record constructor. It panics if tag is
// empty or if field names are empty or repeated.
func DeclareRecord(tag string, fields ...Field) *Record {
	if tag == "" {
		panic("adt: record tag must not be empty")
	}
	names := make([]string, len(fields))
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			panic(fmt.Sprintf("adt: %s: field %d has no name", tag, i))
		}
		if _, dup := index[f.Name]; dup {
			panic(fmt.Sprintf("adt: %s: duplicate field %q", tag, f.Name))
		}
		names[i] = f.Name
		index[f.Name] = i
	}
	decl := make([]Field, len(fields))
	copy(decl, fields)
	return &Record{
		shape:  &Shape{tag: tag, kind: KindRecord, arity: len(fields), names: names},
		fields: decl,
		index:  index,
	}
}

// Tag returns the record tag.
func (c *Record) Tag() string {
	return c.Shape().Tag()
}

// Shape returns the shape of values built by c.
func (c *Record) Shape() *Shape {
	if c == nil {
		return nil
	}
	return c.shape
}

// Arity returns the number of declared fields.
func (c *Record) Arity() int {
	return c.Shape().Arity()
}

// Fields returns the declared fields in order.
func (c *Record) Fields() []Field {
	if c == nil {
		return nil
	}
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Names returns the declared field names in order.
func (c *Record) Names() []string {
	return c.Shape().Names()
}

// New validates vals against the declared fields and returns the value.
//
// Keys that are not declared fail with *UnexpectedFieldError, declared
// fields absent from vals fail with *MissingFieldError, and the first
// field that does not conform fails with *FieldTypeError.
func (c *Record) New(vals map[string]any) (*Value, error) {
	var extras []string
	for k := range vals {
		if _, ok := c.index[k]; !ok {
			extras = append(extras, k)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return nil, &UnexpectedFieldError{Tag: c.Tag(), Fields: extras}
	}

	var missing []string
	for _, f := range c.fields {
		if _, ok := vals[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Tag: c.Tag(), Fields: missing}
	}

	ordered := make([]any, len(c.fields))
	for i, f := range c.fields {
		v := vals[f.Name]
		if err := Validate(f.Spec, v); err != nil {
			return nil, &FieldTypeError{
				Tag:   c.Tag(),
				Index: i,
				Field: f.Name,
				Value: v,
				Spec:  f.Spec,
				Cause: err.(*ValidationError),
			}
		}
		ordered[i] = v
	}
	return c.materialize(ordered), nil
}

// MustNew is like New but panics on error.
func (c *Record) MustNew(vals map[string]any) *Value {
	v, err := c.New(vals)
	if err != nil {
		panic(err)
	}
	return v
}

func (c *Record) materialize(fields []any) *Value {
	out := make([]any, len(fields))
	copy(out, fields)
	return &Value{shape: c.shape, fields: out}
}
