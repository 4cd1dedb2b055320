package adt

import (
	"fmt"
	"reflect"
)

// Validate reports whether v conforms to spec. It returns nil on success
// and a *ValidationError otherwise.
func Validate(spec Spec, v any) error {
	ok, cause := spec.check(v)
	if ok {
		return nil
	}
	return &ValidationError{Spec: spec, Value: v, Cause: cause}
}

// Valid returns true if v conforms to spec.
func Valid(spec Spec, v any) bool {
	ok, _ := spec.check(v)
	return ok
}

// Check is Validate in (ok, err) form. err is nil when ok is true.
func Check(spec Spec, v any) (bool, error) {
	if err := Validate(spec, v); err != nil {
		return false, err
	}
	return true, nil
}

// check dispatches on the spec variant. The returned error is a cause
// worth attaching to the diagnostic, such as a recovered predicate panic.
func (s Spec) check(v any) (bool, error) {
	switch s.kind {
	case SpecAnything:
		return true, nil

	case SpecType:
		return s.test(v), nil

	case SpecConstructor:
		val, ok := v.(*Value)
		return ok && val != nil && val.shape == s.shape, nil

	case SpecPredicate:
		return s.callPredicate(v)

	case SpecAnyOf:
		for _, member := range s.specs {
			if ok, _ := member.check(v); ok {
				return true, nil
			}
		}
		return false, nil

	case SpecSequenceOf:
		elems, ok := elements(v)
		if !ok {
			return false, fmt.Errorf("%s is not a sequence", repr(v))
		}
		for i, elem := range elems {
			if ok, _ := s.specs[0].check(elem); !ok {
				return false, fmt.Errorf("element %d: %s", i, repr(elem))
			}
		}
		return true, nil

	case SpecTupleOf:
		elems, ok := elements(v)
		if !ok {
			return false, fmt.Errorf("%s is not a tuple", repr(v))
		}
		n := min(len(elems), len(s.specs))
		for i := 0; i < n; i++ {
			if ok, _ := s.specs[i].check(elems[i]); !ok {
				return false, fmt.Errorf("element %d: %s", i, repr(elems[i]))
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("unrecognized spec kind %s", s.kind)
	}
}

func (s Spec) callPredicate(v any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &PredicatePanicError{Predicate: s.name, Recovered: r}
		}
	}()
	return s.test(v), nil
}

// elements returns the items of a slice, array or variant value.
func elements(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case []any:
		return x, true
	case *Value:
		if x == nil {
			return nil, false
		}
		return x.fields, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}
