package adt

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// invoke calls handler with args and converts its result to R.
//
// Handlers of type func(...any) R and func(...any) (R, error) are called
// directly. Any other func is called through reflect after checking that
// its parameters accept args and its results are R or (R, error); a
// mismatch is a *NotCallableError and the handler is not called.
func invoke[R any](tag string, handler any, args []any) (R, error) {
	var zero R

	switch h := handler.(type) {
	case nil:
		return zero, &NotCallableError{Tag: tag, Handler: handler, Reason: "handler is nil"}
	case func(...any) R:
		if h != nil {
			return h(args...), nil
		}
	case func(...any) (R, error):
		if h != nil {
			return h(args...)
		}
	}

	if len(args) == 0 {
		switch h := handler.(type) {
		case func() R:
			if h != nil {
				return h(), nil
			}
		case func() (R, error):
			if h != nil {
				return h()
			}
		}
	}

	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		return zero, &NotCallableError{Tag: tag, Handler: handler, Reason: fmt.Sprintf("%T is not a function", handler)}
	}
	if fn.IsNil() {
		return zero, &NotCallableError{Tag: tag, Handler: handler, Reason: "handler is a nil function"}
	}

	ft := fn.Type()
	in, err := handlerArgs(ft, args)
	if err != nil {
		return zero, &NotCallableError{Tag: tag, Handler: handler, Reason: err.Error()}
	}
	if err := checkResults[R](ft); err != nil {
		return zero, &NotCallableError{Tag: tag, Handler: handler, Reason: err.Error()}
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return zero, nil
	case 1:
		return resultOf[R](out[0]), nil
	default:
		var callErr error
		if !out[1].IsNil() {
			callErr = out[1].Interface().(error)
		}
		return resultOf[R](out[0]), callErr
	}
}

// handlerArgs converts args to call arguments for a func of type ft.
func handlerArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("handler takes at least %d arguments, value has %d fields", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("handler takes %d arguments, value has %d fields", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}

		if arg == nil {
			if !nilable(pt) {
				return nil, fmt.Errorf("field %d is nil, parameter type %s cannot hold nil", i, pt)
			}
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("field %d of type %s is not assignable to parameter of type %s", i, av.Type(), pt)
		}
		in[i] = av
	}
	return in, nil
}

func checkResults[R any](ft reflect.Type) error {
	rt := reflect.TypeFor[R]()
	switch ft.NumOut() {
	case 0:
		return nil
	case 1:
		if !ft.Out(0).AssignableTo(rt) {
			return fmt.Errorf("handler returns %s, want %s", ft.Out(0), rt)
		}
		return nil
	case 2:
		if !ft.Out(0).AssignableTo(rt) {
			return fmt.Errorf("handler returns %s, want %s", ft.Out(0), rt)
		}
		if ft.Out(1) != errorType {
			return fmt.Errorf("handler's second result is %s, want error", ft.Out(1))
		}
		return nil
	default:
		return fmt.Errorf("handler returns %d results", ft.NumOut())
	}
}

func resultOf[R any](v reflect.Value) R {
	var zero R
	if nilable(v.Type()) && v.IsNil() {
		return zero
	}
	r, _ := v.Interface().(R)
	return r
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
