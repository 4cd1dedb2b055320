// Package adt implements runtime-declared algebraic data types.
//
// Programs declare composite shapes at run time and then construct,
// validate, compare, print and exhaustively match values of those shapes:
//   - Variants: a tag plus an ordered list of positional field specs
//   - Records: a tag plus named, typed fields in declared order
//   - Unions: an ordered, closed set of variant/record constructors
//
// # Specs
//
// Every field is described by a Spec:
//
//	Type[int]()                 // instance of / exact Go type
//	Of(Point)                   // nested constructor (shape equality)
//	Func("positive", isPos)     // predicate
//	AnyOf(Type[int](), Type[string]())
//	SequenceOf(Type[int]())     // every element of a slice/array
//	TupleOf(Of(Point), Type[int]())
//
// # Example
//
//	Point := adt.DeclareRecord("Point", adt.F("x", adt.Type[int]()), adt.F("y", adt.Type[int]()))
//	Rectangle := adt.DeclareVariant("Rectangle", adt.Of(Point), adt.Of(Point))
//	Circle := adt.DeclareVariant("Circle", adt.Type[int](), adt.Of(Point))
//	Shape := adt.MustUnion("Shape", Rectangle, Circle)
//
//	rect := Rectangle.MustNew(
//	  Point.MustNew(map[string]any{"x": 0, "y": 0}),
//	  Point.MustNew(map[string]any{"x": 100, "y": 100}),
//	)
//
//	area, err := adt.Match[int](Shape, rect,
//	  adt.On(Rectangle, func(tl, br *adt.Value) int { ... }),
//	  adt.On(Circle, func(r int, c *adt.Value) int { ... }),
//	)
//
// # Matching
//
// Match proves at call time that every member of the union is covered by
// a case or by the Otherwise wildcard, and that the target belongs to the
// union, before it dispatches. Field values are passed to the handler
// positionally; the wildcard handler receives no arguments.
//
// # Persistence
//
// Values re-materialize from (tag, field names, field values) through
// constructors whose specs accept anything, so decoding data that was
// validated at construction time cannot fail validation. Value implements
// gob encoding on top of that contract.
package adt
