package decl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpr_Canonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{" Point ", "Point"},
		{"seq<int>", "seq<int>"},
		{"list< str >", "seq<str>"},
		{"tuple<int,str>", "tuple<int, str>"},
		{"tuple<>", "tuple<>"},
		{"int|str|null", "int|str|null"},
		{"(int|str)|null", "(int|str)|null"},
		{"seq<int|float>", "seq<int|float>"},
		{"tuple<seq<Point>, (int)>", "tuple<seq<Point>, int>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := ParseExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseExpr_Structure(t *testing.T) {
	e, err := ParseExpr("tuple<int, seq<str>>")
	require.NoError(t, err)
	require.Equal(t, ExprTuple, e.Kind)
	require.Len(t, e.Args, 2)
	assert.Equal(t, ExprName, e.Args[0].Kind)
	assert.Equal(t, ExprSeq, e.Args[1].Kind)
	assert.Equal(t, 11, e.Args[1].Pos)
}

func TestParseExpr_Errors(t *testing.T) {
	tests := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"seq", 0},
		{"seq<int", 7},
		{"int<str>", 0},
		{"tuple<int str>", 10},
		{"int|", 4},
		{"(int", 4},
		{"int)", 3},
		{"in$t", 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseExpr(tt.in)
			var ee *ExprError
			require.True(t, errors.As(err, &ee), "got %v", err)
			assert.Equal(t, tt.pos, ee.Pos)
			assert.Equal(t, tt.in, ee.Expr)
		})
	}
}
