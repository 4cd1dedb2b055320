package adt

import "testing"

// shapes is the geometry fixture used across tests.
type shapes struct {
	Point     *Record
	Rectangle *Variant
	Circle    *Variant
	Triangle  *Variant
	Shape     *Union
}

func newShapes(t *testing.T) shapes {
	t.Helper()
	point := DeclareRecord("Point", F("x", Type[int]()), F("y", Type[int]()))
	rect := DeclareVariant("Rectangle", Of(point), Of(point))
	circle := DeclareVariant("Circle", Type[int](), Of(point))
	tri := DeclareVariant("Triangle", Of(point), Of(point), Type[int]())
	u, err := NewUnion("Shape", rect, circle, tri)
	if err != nil {
		t.Fatalf("NewUnion: %v", err)
	}
	return shapes{Point: point, Rectangle: rect, Circle: circle, Triangle: tri, Shape: u}
}

func (s shapes) pt(x, y int) *Value {
	return s.Point.MustNew(map[string]any{"x": x, "y": y})
}
