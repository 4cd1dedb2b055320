package decl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Neumenon/adt/adt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loadShapes(t *testing.T) *Set {
	t.Helper()
	s, err := LoadFile("testdata/shapes.yaml")
	require.NoError(t, err)
	return s
}

// ============================================================
// Loading
// ============================================================

func TestLoadFile(t *testing.T) {
	s := loadShapes(t)
	assert.Equal(t, []string{"Point", "Rectangle", "Circle", "Triangle", "Polygon", "Label"}, s.Tags())

	u, ok := s.Union("Shape")
	require.True(t, ok)
	assert.Equal(t, []string{"Rectangle", "Circle", "Triangle"}, u.Tags())
	require.Len(t, s.Unions(), 2)

	c, ok := s.Constructor("Circle")
	require.True(t, ok)
	assert.Equal(t, 2, c.Arity())
	_, ok = s.Constructor("Square")
	assert.False(t, ok)

	reg, ok := s.Registry().Lookup("Point")
	require.True(t, ok)
	pc, _ := s.Constructor("Point")
	assert.Same(t, pc.Shape(), reg.Shape())
}

func TestDescribe(t *testing.T) {
	s := loadShapes(t)
	want := strings.Join([]string{
		"record Point(x: int, y: int)",
		"variant Rectangle(Point, Point)",
		"variant Circle(int, Point)",
		"variant Triangle(Point, Point, int)",
		"variant Polygon(seq<Point>, str|null)",
		"record Label(text: str, at: tuple<num, num>)",
		"union Shape = Rectangle | Circle | Triangle",
		"union Drawable = Rectangle | Circle | Triangle | Polygon | Label",
	}, "\n") + "\n"
	assert.Equal(t, want, s.Describe())
}

func TestLoad_Empty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Tags())
	assert.Empty(t, s.Unions())
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("types:\n  - record: P\n    shape: round\n"))
	require.Error(t, err)

	_, err = Load(strings.NewReader("types:\n  - record: P\n    fields:\n      - {name: x, type: int, default: 0}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default")
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	_, err := Load(strings.NewReader("types: []\n---\ntypes: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple YAML documents")
}

func TestLoad_ForwardReference(t *testing.T) {
	src := `
types:
  - variant: Box
    fields: [Point]
  - record: Point
    fields:
      - {name: x, type: int}
`
	_, err := Load(strings.NewReader(src))
	var ee *ExprError
	require.True(t, errors.As(err, &ee), "got %v", err)
	assert.Contains(t, ee.Reason, "unknown type Point")
}

func TestLoad_JoinsAllProblems(t *testing.T) {
	src := `
types:
  - record: A
    fields: [int]
  - variant: B
    fields: ["seq<"]
  - record: C
    variant: C
  - variant: D
    fields: [int]
  - variant: D
unions:
  - name: U
    members: [D, Missing]
`
	_, err := Load(strings.NewReader(src))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "types[0] A: field 0 has no name")
	assert.Contains(t, msg, "types[1] B:")
	assert.Contains(t, msg, "types[2] C: declares both")
	assert.Contains(t, msg, "types[4] D:")
	assert.Contains(t, msg, `unions[0] U: decl: type "Missing" is not declared`)

	var de *adt.DuplicateTagError
	assert.True(t, errors.As(err, &de))
	var nd *NotDeclaredError
	assert.True(t, errors.As(err, &nd))
}

func TestLoad_VariantFieldNames(t *testing.T) {
	_, err := Load(strings.NewReader("types:\n  - variant: V\n    fields:\n      - {name: a, type: int}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positional")
}

func TestLoad_LogsDeclarations(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := LoadFile("testdata/shapes.yaml", WithLogger(zap.New(core)))
	require.NoError(t, err)

	declared := logs.FilterMessage("declared constructor").All()
	require.Len(t, declared, 6)
	assert.Equal(t, "Point", declared[0].ContextMap()["tag"])
	assert.Equal(t, 2, logs.FilterMessage("declared union").Len())
}

// ============================================================
// JSON Bridge
// ============================================================

func TestDecode_Nested(t *testing.T) {
	s := loadShapes(t)
	v, err := s.Decode([]byte(`{"Rectangle": [{"Point": {"x": 0, "y": 0}}, {"Point": {"y": 100, "x": 100}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Rectangle( Point( x=0, y=0 ), Point( x=100, y=100 ) )", v.String())

	shape, _ := s.Union("Shape")
	assert.True(t, shape.Contains(v))

	x, _ := v.Fields()[1].(*adt.Value).Get("x")
	assert.Equal(t, int64(100), x)
}

func TestDecode_Combinators(t *testing.T) {
	s := loadShapes(t)

	v, err := s.Decode([]byte(`{"Polygon": [[{"Point": {"x": 0, "y": 0}}, {"Point": {"x": 1, "y": 1}}], null]}`))
	require.NoError(t, err)
	assert.Equal(t, `Polygon( [Point( x=0, y=0 ), Point( x=1, y=1 )], nil )`, v.String())

	v, err = s.Decode([]byte(`{"Label": {"text": "origin", "at": [0, 0.5]}}`))
	require.NoError(t, err)
	at, _ := v.Get("at")
	assert.Equal(t, []any{int64(0), 0.5}, at)
}

func TestDecode_Errors(t *testing.T) {
	s := loadShapes(t)
	tests := []struct {
		name string
		doc  string
		want any
	}{
		{"arity", `{"Circle": [5]}`, new(*adt.ArityError)},
		{"field type", `{"Circle": ["5", {"Point": {"x": 0, "y": 0}}]}`, new(*adt.FieldTypeError)},
		{"missing", `{"Point": {"x": 0}}`, new(*adt.MissingFieldError)},
		{"unexpected", `{"Point": {"x": 0, "y": 0, "z": 0}}`, new(*adt.UnexpectedFieldError)},
		{"unknown tag", `{"Square": [1]}`, new(*NotDeclaredError)},
		{"nested field", `{"Circle": [5, {"Point": {"x": 1.5, "y": 0}}]}`, new(*adt.FieldTypeError)},
		{"seq element", `{"Polygon": [[1], null]}`, new(*adt.FieldTypeError)},
		{"bad payload", `{"Circle": {"r": 5}}`, new(*DecodeError)},
		{"not a value", `[1, 2]`, new(*DecodeError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.want)
		})
	}
}

func TestDecode_ErrorPath(t *testing.T) {
	s := loadShapes(t)
	_, err := s.Decode([]byte(`{"Circle": [5, {"Point": {"x": "a", "y": 0}}]}`))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "$.Circle[1].Point", de.Path)
}

func TestDecode_MalformedJSON(t *testing.T) {
	s := loadShapes(t)
	_, err := s.Decode([]byte(`{"Circle": [5,`))
	require.Error(t, err)
	_, err = s.Decode([]byte(`{"Circle": [5, null]} {}`))
	require.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	s := loadShapes(t)
	docs := []string{
		`{"Rectangle":[{"Point":{"x":0,"y":0}},{"Point":{"x":100,"y":100}}]}`,
		`{"Polygon":[[],"empty"]}`,
		`{"Label":{"text":"a\"b","at":[1,2.0]}}`,
	}
	for _, doc := range docs {
		v, err := s.Decode([]byte(doc))
		require.NoError(t, err, doc)
		out, err := s.Encode(v)
		require.NoError(t, err)
		assert.JSONEq(t, doc, string(out))

		back, err := s.Decode(out)
		require.NoError(t, err)
		assert.True(t, v.Equal(back), "%s != %s", v, back)
	}
}

func TestDecodeValue_Float64Input(t *testing.T) {
	s := loadShapes(t)
	raw := map[string]any{"Point": map[string]any{"x": float64(3), "y": float64(-4)}}
	v, err := s.DecodeValue(raw)
	require.NoError(t, err)
	assert.Equal(t, "Point( x=3, y=-4 )", v.String())
}

// ============================================================
// Batch Checking & Coverage
// ============================================================

func TestCheckAll(t *testing.T) {
	s := loadShapes(t)
	var docs [][]byte
	for i := 0; i < 50; i++ {
		if i%5 == 0 {
			docs = append(docs, []byte(`{"Circle": ["bad", null]}`))
			continue
		}
		docs = append(docs, []byte(fmt.Sprintf(`{"Circle": [%d, {"Point": {"x": 0, "y": 0}}]}`, i)))
	}

	results := s.CheckAll(context.Background(), docs, 4)
	require.Len(t, results, len(docs))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if i%5 == 0 {
			assert.Error(t, r.Err)
			assert.Nil(t, r.Value)
			continue
		}
		require.NoError(t, r.Err)
		radius, _ := r.Value.Index(0)
		assert.Equal(t, int64(i), radius)
	}
}

func TestCheckAll_Cancelled(t *testing.T) {
	s := loadShapes(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.CheckAll(ctx, [][]byte{[]byte(`{"Point": {"x": 0, "y": 0}}`)}, 0)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestCoverage(t *testing.T) {
	s := loadShapes(t)
	assert.NoError(t, s.Coverage("Shape", []string{"Rectangle", "Circle", "Triangle"}))

	err := s.Coverage("Shape", []string{"Circle"})
	var ne *adt.NonExhaustiveMatchError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, []string{"Rectangle", "Triangle"}, ne.Missing)

	var nd *NotDeclaredError
	assert.ErrorAs(t, s.Coverage("Nope", nil), &nd)
	assert.ErrorAs(t, s.Coverage("Shape", []string{"Square"}), &nd)
}
