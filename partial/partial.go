// Package partial implements arity-bound partial application.
//
// A Builder is bound to a target arity and a call. Arguments accumulate
// across Apply calls; the call fires only once the cumulative count
// reaches the arity. Builders do not enforce an upper bound: surplus
// arguments are handed to the call, which owns its own arity checks.
package partial

import "fmt"

// Builder accumulates positional arguments for a call of fixed arity.
// Builders are immutable: Apply returns a new Builder and never changes
// the receiver, so one partially applied Builder can be reused.
type Builder[R any] struct {
	arity int
	args  []any
	call  func(args []any) (R, error)
}

// New binds call to arity n.
func New[R any](n int, call func(args []any) (R, error)) Builder[R] {
	if n < 0 {
		n = 0
	}
	return Builder[R]{arity: n, call: call}
}

// Apply returns a Builder with args appended.
func (b Builder[R]) Apply(args ...any) Builder[R] {
	next := make([]any, 0, len(b.args)+len(args))
	next = append(next, b.args...)
	next = append(next, args...)
	return Builder[R]{arity: b.arity, args: next, call: b.call}
}

// Arity returns the target arity.
func (b Builder[R]) Arity() int {
	return b.arity
}

// Args returns a copy of the accumulated arguments.
func (b Builder[R]) Args() []any {
	out := make([]any, len(b.args))
	copy(out, b.args)
	return out
}

// Remaining returns how many arguments are still needed.
func (b Builder[R]) Remaining() int {
	return max(b.arity-len(b.args), 0)
}

// Ready returns true once enough arguments have accumulated.
func (b Builder[R]) Ready() bool {
	return len(b.args) >= b.arity
}

// Call fires the bound call with every accumulated argument. It fails
// with *IncompleteError if the builder is not Ready.
func (b Builder[R]) Call() (R, error) {
	if !b.Ready() {
		var zero R
		return zero, &IncompleteError{Need: b.arity, Have: len(b.args)}
	}
	if b.call == nil {
		var zero R
		return zero, fmt.Errorf("partial: builder has no call")
	}
	return b.call(b.Args())
}

// Invoke applies args and fires the call if that makes the builder
// Ready. fired reports whether the call ran; when it did not, next is
// the accumulated builder to continue from.
func (b Builder[R]) Invoke(args ...any) (next Builder[R], result R, fired bool, err error) {
	next = b.Apply(args...)
	if !next.Ready() {
		return next, result, false, nil
	}
	result, err = next.Call()
	return next, result, true, err
}

// IncompleteError is returned by Call before the arity is reached.
type IncompleteError struct {
	Need int
	Have int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("partial: need %d arguments, have %d", e.Need, e.Have)
}
