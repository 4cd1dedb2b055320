package adt

import (
	"reflect"
	"strings"
)

// SpecKind identifies the variant of a Spec.
type SpecKind uint8

const (
	SpecInvalid     SpecKind = iota // zero Spec; never validates
	SpecType                        // Go type: instance-of or exact
	SpecConstructor                 // nested variant/record shape
	SpecPredicate                   // func(any) bool
	SpecAnyOf                       // any member validates
	SpecSequenceOf                  // every element validates
	SpecTupleOf                     // positional, prefix only
	SpecAnything                    // always validates
)

// String returns the kind name.
func (k SpecKind) String() string {
	switch k {
	case SpecInvalid:
		return "invalid"
	case SpecType:
		return "type"
	case SpecConstructor:
		return "constructor"
	case SpecPredicate:
		return "predicate"
	case SpecAnyOf:
		return "anyof"
	case SpecSequenceOf:
		return "seqof"
	case SpecTupleOf:
		return "tupleof"
	case SpecAnything:
		return "anything"
	default:
		return "unknown"
	}
}

// Spec describes the accepted shape of one field.
//
// Specs are immutable values; build them with Type, Exact, Of,
// Predicate, Func, AnyOf, SequenceOf, TupleOf or Anything.
type Spec struct {
	kind  SpecKind
	name  string
	test  func(any) bool // SpecType, SpecPredicate
	shape *Shape         // SpecConstructor
	specs []Spec         // SpecAnyOf, SpecTupleOf; SpecSequenceOf holds one
}

// Kind returns the spec variant.
func (s Spec) Kind() SpecKind {
	return s.kind
}

// Name returns the type, constructor or predicate name.
func (s Spec) Name() string {
	return s.name
}

// Shape returns the nested shape of a SpecConstructor spec.
func (s Spec) Shape() *Shape {
	return s.shape
}

// Specs returns the member specs of a composite spec.
func (s Spec) Specs() []Spec {
	if len(s.specs) == 0 {
		return nil
	}
	out := make([]Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// String renders the spec for diagnostics.
func (s Spec) String() string {
	switch s.kind {
	case SpecType, SpecConstructor, SpecPredicate:
		return s.name
	case SpecAnything:
		return "any"
	case SpecAnyOf:
		return joinSpecs(s.specs, "|")
	case SpecSequenceOf:
		return "seq<" + s.specs[0].String() + ">"
	case SpecTupleOf:
		return "tuple<" + joinSpecs(s.specs, ", ") + ">"
	default:
		return "<invalid spec>"
	}
}

func joinSpecs(specs []Spec, sep string) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}

// ============================================================
// Spec Constructors
// ============================================================

// Type returns a spec accepting values of Go type T.
//
// For an interface T any value implementing T is accepted; for a concrete
// T the dynamic type must be exactly T. A nil value is never an instance.
func Type[T any]() Spec {
	return Spec{
		kind: SpecType,
		name: typeName(reflect.TypeFor[T]()),
		test: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	}
}

// Exact returns a spec accepting values whose dynamic type is t, or which
// implement t when t is an interface type. A nil t yields an invalid spec.
func Exact(t reflect.Type) Spec {
	if t == nil {
		return Spec{}
	}
	return Spec{
		kind: SpecType,
		name: typeName(t),
		test: func(v any) bool {
			if v == nil {
				return false
			}
			vt := reflect.TypeOf(v)
			if vt == t {
				return true
			}
			return t.Kind() == reflect.Interface && vt.Implements(t)
		},
	}
}

// Of returns a spec accepting values produced by constructor c.
func Of(c Constructor) Spec {
	if c == nil || c.Shape() == nil {
		return Spec{}
	}
	return Spec{kind: SpecConstructor, name: c.Tag(), shape: c.Shape()}
}

// Predicate returns a spec accepting values for which f returns true.
func Predicate(name string, f func(any) bool) Spec {
	if f == nil {
		return Spec{}
	}
	if name == "" {
		name = "predicate"
	}
	return Spec{kind: SpecPredicate, name: name, test: f}
}

// Func returns a predicate spec over values of type T. Values of any
// other type are rejected without calling f.
func Func[T any](name string, f func(T) bool) Spec {
	if f == nil {
		return Spec{}
	}
	return Predicate(name, func(v any) bool {
		t, ok := v.(T)
		return ok && f(t)
	})
}

// AnyOf returns a spec accepting values matched by at least one of specs.
func AnyOf(specs ...Spec) Spec {
	return Spec{kind: SpecAnyOf, specs: cloneSpecs(specs)}
}

// SequenceOf returns a spec accepting slices or arrays whose every
// element validates against spec. Empty sequences pass.
func SequenceOf(spec Spec) Spec {
	return Spec{kind: SpecSequenceOf, specs: []Spec{spec}}
}

// TupleOf returns a positional spec over slices, arrays and variant
// values. Only the prefix shared by the value and specs is checked: a
// shorter value passes if its elements conform.
func TupleOf(specs ...Spec) Spec {
	return Spec{kind: SpecTupleOf, specs: cloneSpecs(specs)}
}

// Anything returns a spec that accepts every value.
func Anything() Spec {
	return Spec{kind: SpecAnything}
}

func cloneSpecs(specs []Spec) []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// typeName renders Go builtin names the way declarations spell them.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 && t.Name() == "" {
		return "any"
	}
	return t.String()
}
