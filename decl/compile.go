package decl

import (
	"fmt"

	"github.com/Neumenon/adt/adt"
)

// Primitive type names. Numbers are int64 and float64, as the JSON
// bridge produces them.
var primitives = map[string]func() adt.Spec{
	"int":   adt.Type[int64],
	"float": adt.Type[float64],
	"num": func() adt.Spec {
		return adt.AnyOf(adt.Type[int64](), adt.Type[float64]())
	},
	"str":  adt.Type[string],
	"bool": adt.Type[bool],
	"any":  adt.Anything,
	"null": func() adt.Spec {
		return adt.Predicate("null", func(v any) bool { return v == nil })
	},
}

// compile turns a parsed expression into a spec. Names resolve to
// primitives first, then to types declared so far.
func (s *Set) compile(src string, e *Expr) (adt.Spec, error) {
	switch e.Kind {
	case ExprName:
		if mk, ok := primitives[e.Name]; ok {
			return mk(), nil
		}
		if ent, ok := s.entries[e.Name]; ok {
			return adt.Of(ent.ctor), nil
		}
		return adt.Spec{}, &ExprError{Expr: src, Pos: e.Pos, Reason: fmt.Sprintf("unknown type %s", e.Name)}

	case ExprSeq:
		elem, err := s.compile(src, e.Args[0])
		if err != nil {
			return adt.Spec{}, err
		}
		return adt.SequenceOf(elem), nil

	case ExprTuple, ExprUnion:
		specs := make([]adt.Spec, len(e.Args))
		for i, a := range e.Args {
			spec, err := s.compile(src, a)
			if err != nil {
				return adt.Spec{}, err
			}
			specs[i] = spec
		}
		if e.Kind == ExprTuple {
			return adt.TupleOf(specs...), nil
		}
		return adt.AnyOf(specs...), nil

	default:
		return adt.Spec{}, &ExprError{Expr: src, Pos: e.Pos, Reason: "malformed expression"}
	}
}
