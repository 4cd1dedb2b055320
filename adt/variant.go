package adt

import "github.com/Neumenon/adt/partial"

// Variant constructs tagged values with an ordered list of positional
// fields.
type Variant struct {
	shape *Shape
	specs []Spec
}

// DeclareVariant declares a variant constructor of arity len(specs).
// It panics if tag is empty.
func DeclareVariant(tag string, specs ...Spec) *Variant {
	if tag == "" {
		panic("adt: variant tag must not be empty")
	}
	return &Variant{
		shape: &Shape{tag: tag, kind: KindVariant, arity: len(specs)},
		specs: cloneSpecs(specs),
	}
}

// Tag returns the variant tag.
func (c *Variant) Tag() string {
	return c.Shape().Tag()
}

// Shape returns the shape of values built by c.
func (c *Variant) Shape() *Shape {
	if c == nil {
		return nil
	}
	return c.shape
}

// Arity returns the number of positional fields.
func (c *Variant) Arity() int {
	return c.Shape().Arity()
}

// Specs returns the field specs in positional order.
func (c *Variant) Specs() []Spec {
	if c == nil {
		return nil
	}
	return cloneSpecs(c.specs)
}

// New validates vals against the field specs and returns the value.
//
// Any count other than Arity fails with *ArityError. The first field
// that does not conform fails with *FieldTypeError; no value is built.
func (c *Variant) New(vals ...any) (*Value, error) {
	if len(vals) != len(c.specs) {
		return nil, &ArityError{Tag: c.Tag(), Expected: len(c.specs), Given: len(vals)}
	}
	for i, spec := range c.specs {
		if err := Validate(spec, vals[i]); err != nil {
			return nil, &FieldTypeError{
				Tag:   c.Tag(),
				Index: i,
				Value: vals[i],
				Spec:  spec,
				Cause: err.(*ValidationError),
			}
		}
	}
	return c.materialize(vals), nil
}

// MustNew is like New but panics on error.
func (c *Variant) MustNew(vals ...any) *Value {
	v, err := c.New(vals...)
	if err != nil {
		panic(err)
	}
	return v
}

// Curry returns a builder that accumulates positional arguments and
// calls New once Arity of them have been supplied. Surplus arguments are
// passed through, so New reports them as an *ArityError.
func (c *Variant) Curry() partial.Builder[*Value] {
	return partial.New(c.Arity(), func(args []any) (*Value, error) {
		return c.New(args...)
	})
}

// Apply is shorthand for c.Curry().Apply(vals...).
func (c *Variant) Apply(vals ...any) partial.Builder[*Value] {
	return c.Curry().Apply(vals...)
}

func (c *Variant) materialize(fields []any) *Value {
	out := make([]any, len(fields))
	copy(out, fields)
	return &Value{shape: c.shape, fields: out}
}
