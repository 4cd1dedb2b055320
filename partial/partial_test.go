package partial

import (
	"errors"
	"fmt"
	"testing"
)

func sum3() Builder[int] {
	return New(3, func(args []any) (int, error) {
		total := 0
		for _, a := range args {
			n, ok := a.(int)
			if !ok {
				return 0, fmt.Errorf("not an int: %v", a)
			}
			total += n
		}
		return total, nil
	})
}

func TestBuilder_Accumulates(t *testing.T) {
	b := sum3().Apply(1).Apply(2)
	if b.Ready() || b.Remaining() != 1 || b.Arity() != 3 {
		t.Fatalf("Ready=%v Remaining=%d Arity=%d", b.Ready(), b.Remaining(), b.Arity())
	}
	got, err := b.Apply(3).Call()
	if err != nil || got != 6 {
		t.Errorf("Call = %d, %v", got, err)
	}
}

func TestBuilder_Immutable(t *testing.T) {
	base := sum3().Apply(10)
	a, _ := base.Apply(1, 1).Call()
	b, _ := base.Apply(2, 2).Call()
	if a != 12 || b != 14 {
		t.Errorf("a=%d b=%d", a, b)
	}
	if len(base.Args()) != 1 {
		t.Errorf("base mutated: %v", base.Args())
	}

	args := base.Args()
	args[0] = 99
	if base.Args()[0] != 10 {
		t.Error("Args should return a copy")
	}
}

func TestBuilder_Incomplete(t *testing.T) {
	_, err := sum3().Apply(1).Call()
	var ie *IncompleteError
	if !errors.As(err, &ie) || ie.Need != 3 || ie.Have != 1 {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if err.Error() != "partial: need 3 arguments, have 1" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBuilder_Invoke(t *testing.T) {
	next, _, fired, err := sum3().Invoke(1)
	if fired || err != nil {
		t.Fatalf("fired=%v err=%v", fired, err)
	}
	next, _, fired, _ = next.Invoke(2)
	if fired {
		t.Fatal("fired early")
	}
	_, got, fired, err := next.Invoke(3)
	if !fired || err != nil || got != 6 {
		t.Errorf("got=%d fired=%v err=%v", got, fired, err)
	}
}

func TestBuilder_SurplusPassesThrough(t *testing.T) {
	var seen int
	b := New(1, func(args []any) (int, error) {
		seen = len(args)
		return 0, nil
	})
	if _, _, fired, _ := b.Invoke(1, 2, 3); !fired || seen != 3 {
		t.Errorf("fired=%v seen=%d", fired, seen)
	}
}

func TestBuilder_ZeroArity(t *testing.T) {
	b := New(0, func(args []any) (string, error) { return "done", nil })
	if !b.Ready() || b.Remaining() != 0 {
		t.Fatal("zero-arity builder should be ready")
	}
	if got, err := b.Call(); err != nil || got != "done" {
		t.Errorf("Call = %q, %v", got, err)
	}
	if New[int](-2, nil).Arity() != 0 {
		t.Error("negative arity should clamp to zero")
	}
}

func TestBuilder_NoCall(t *testing.T) {
	if _, err := New[int](0, nil).Call(); err == nil {
		t.Error("expected error for builder without call")
	}
	var zero Builder[int]
	if _, err := zero.Call(); err == nil {
		t.Error("zero Builder should fail to call")
	}
}
