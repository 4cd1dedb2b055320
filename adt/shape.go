package adt

// Kind distinguishes positional variants from keyed records.
type Kind uint8

const (
	KindVariant Kind = iota + 1
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindVariant:
		return "variant"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Shape is the runtime shape a constructor produces. Every value carries
// its shape; membership and nested-constructor checks compare shapes by
// identity, so two declarations sharing a tag are still distinct shapes.
type Shape struct {
	tag   string
	kind  Kind
	arity int
	names []string // records only, declared order
}

// Tag returns the declared tag name.
func (s *Shape) Tag() string {
	if s == nil {
		return ""
	}
	return s.tag
}

// Kind returns whether the shape is a variant or a record.
func (s *Shape) Kind() Kind {
	if s == nil {
		return 0
	}
	return s.kind
}

// Arity returns the number of fields.
func (s *Shape) Arity() int {
	if s == nil {
		return 0
	}
	return s.arity
}

// Names returns the declared field names of a record shape.
func (s *Shape) Names() []string {
	if s == nil || len(s.names) == 0 {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// String returns the tag.
func (s *Shape) String() string {
	return s.Tag()
}

// Constructor is a declared variant or record constructor.
// It is implemented only by *Variant and *Record.
type Constructor interface {
	Tag() string
	Shape() *Shape
	Arity() int

	// materialize assembles a value without validation.
	materialize(fields []any) *Value
}

// ShapeOf returns the shape produced by constructor c. It fails with
// *NotAConstructorError if c was not declared with DeclareVariant or
// DeclareRecord.
func ShapeOf(c any) (*Shape, error) {
	switch ctor := c.(type) {
	case *Variant:
		if ctor != nil && ctor.shape != nil {
			return ctor.shape, nil
		}
	case *Record:
		if ctor != nil && ctor.shape != nil {
			return ctor.shape, nil
		}
	}
	return nil, &NotAConstructorError{Value: c}
}
