package adt

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecord_New(t *testing.T) {
	s := newShapes(t)
	p, err := s.Point.New(map[string]any{"y": 2, "x": 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]any{1, 2}, p.Fields()); diff != "" {
		t.Errorf("fields not in declared order (-want +got):\n%s", diff)
	}
	if x, ok := p.Get("x"); !ok || x != 1 {
		t.Errorf("Get(x) = %v, %v", x, ok)
	}
	if _, ok := p.Get("z"); ok {
		t.Error("Get(z) should miss")
	}
	if diff := cmp.Diff([]string{"x", "y"}, p.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
}

func TestRecord_Missing(t *testing.T) {
	s := newShapes(t)
	_, err := s.Point.New(map[string]any{})
	var me *MissingFieldError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, me.Fields); diff != "" {
		t.Errorf("Fields (-want +got):\n%s", diff)
	}
	if got, want := err.Error(), "Point: expected value for 'x', 'y', none given"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRecord_Unexpected(t *testing.T) {
	s := newShapes(t)
	_, err := s.Point.New(map[string]any{"x": 1, "y": 2, "z": 3, "w": 4})
	var ue *UnexpectedFieldError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnexpectedFieldError, got %v", err)
	}
	if got, want := err.Error(), "Point: unexpected values given: 'w', 'z'"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRecord_UnexpectedBeforeMissing(t *testing.T) {
	s := newShapes(t)
	_, err := s.Point.New(map[string]any{"z": 3})
	var ue *UnexpectedFieldError
	if !errors.As(err, &ue) {
		t.Errorf("expected UnexpectedFieldError first, got %v", err)
	}
}

func TestRecord_FieldTypeError(t *testing.T) {
	s := newShapes(t)
	_, err := s.Point.New(map[string]any{"x": 1, "y": "2"})
	var fe *FieldTypeError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldTypeError, got %v", err)
	}
	if fe.Field != "y" || fe.Index != 1 {
		t.Errorf("FieldTypeError = %+v", fe)
	}
	want := "Point: invalid type in field 'y': \"2\"\n  \"2\" does not conform to int"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRecord_DeclarePanics(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		fields []Field
	}{
		{"empty tag", "", nil},
		{"empty field", "R", []Field{F("", Anything())}},
		{"duplicate field", "R", []Field{F("a", Anything()), F("a", Anything())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			DeclareRecord(tt.tag, tt.fields...)
		})
	}
}

// ============================================================
// Equality & Printing
// ============================================================

func TestValue_Equal(t *testing.T) {
	s := newShapes(t)
	a := s.Rectangle.MustNew(s.pt(0, 0), s.pt(1, 1))
	b := s.Rectangle.MustNew(s.pt(0, 0), s.pt(1, 1))
	c := s.Rectangle.MustNew(s.pt(0, 0), s.pt(1, 2))
	if !a.Equal(b) {
		t.Error("structurally equal values should be Equal")
	}
	if a.Equal(c) {
		t.Error("different nested fields should not be Equal")
	}
	if a.Equal(nil) || !(*Value)(nil).Equal(nil) {
		t.Error("nil handling")
	}

	// Tag and kind matter, equal fields alone do not.
	box := DeclareVariant("Box", Anything(), Anything())
	if a.Equal(box.MustNew(s.pt(0, 0), s.pt(1, 1))) {
		t.Error("different tags should not be Equal")
	}
	pr := DeclareRecord("Rectangle", F("a", Anything()), F("b", Anything()))
	if a.Equal(pr.MustNew(map[string]any{"a": s.pt(0, 0), "b": s.pt(1, 1)})) {
		t.Error("record and variant should not be Equal")
	}
}

func TestValue_EqualDistinctDeclarations(t *testing.T) {
	p1 := DeclareRecord("P", F("x", Anything()), F("y", Anything()))
	p2 := DeclareRecord("P", F("y", Anything()), F("x", Anything()))
	a := p1.MustNew(map[string]any{"x": 1, "y": []int{1, 2}})
	b := p2.MustNew(map[string]any{"x": 1, "y": []int{1, 2}})
	if !a.Equal(b) {
		t.Error("records compare per name regardless of declaration")
	}
}

func TestValue_EqualUncomparableFields(t *testing.T) {
	box := DeclareVariant("Box", Anything())
	a := box.MustNew(map[string][]int{"a": {1}})
	b := box.MustNew(map[string][]int{"a": {1}})
	if !a.Equal(b) {
		t.Error("maps of slices should compare by content")
	}
	if box.MustNew([]int{}).Equal(box.MustNew([]int(nil))) {
		t.Error("nil slice and empty slice differ")
	}
}

func TestValue_String(t *testing.T) {
	s := newShapes(t)
	tests := []struct {
		v    *Value
		want string
	}{
		{s.pt(0, 1), "Point( x=0, y=1 )"},
		{s.Circle.MustNew(3, s.pt(0, 0)), "Circle( 3, Point( x=0, y=0 ) )"},
		{DeclareVariant("S", Anything()).MustNew("hi"), `S( "hi" )`},
		{DeclareVariant("L", Anything()).MustNew([]any{1, "a", nil}), `L( [1, "a", nil] )`},
		{DeclareVariant("M", Anything()).MustNew(map[string]int{"b": 2, "a": 1}), "M( {a: 1, b: 2} )"},
		{DeclareRecord("Unit").MustNew(nil), "Unit()"},
		{nil, "nil"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestShapeOf(t *testing.T) {
	s := newShapes(t)
	sh, err := ShapeOf(s.Point)
	if err != nil {
		t.Fatalf("ShapeOf: %v", err)
	}
	if sh.Tag() != "Point" || sh.Kind() != KindRecord || sh.Arity() != 2 {
		t.Errorf("shape = %s", sh)
	}
	for _, bad := range []any{nil, 3, (*Variant)(nil), s.pt(0, 0)} {
		var ne *NotAConstructorError
		if _, err := ShapeOf(bad); !errors.As(err, &ne) {
			t.Errorf("ShapeOf(%T) = %v, want NotAConstructorError", bad, err)
		}
	}
}
