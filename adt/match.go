package adt

import "fmt"

// Case pairs a constructor, or the wildcard, with a handler.
type Case struct {
	ctor     Constructor
	handler  any
	wildcard bool
}

// On returns a case handling values built by c. The handler receives
// the value's fields as positional arguments, records in declared order.
func On(c Constructor, handler any) Case {
	return Case{ctor: c, handler: handler}
}

// Otherwise returns the wildcard case. Its handler takes no arguments
// and covers every union member without a case of its own.
func Otherwise(handler any) Case {
	return Case{handler: handler, wildcard: true}
}

// Wildcard returns true for the Otherwise case.
func (c Case) Wildcard() bool {
	return c.wildcard
}

// Constructor returns the constructor a non-wildcard case handles.
func (c Case) Constructor() Constructor {
	return c.ctor
}

// caseTable is a case list normalized to mapping semantics: one entry per
// constructor, in first-insertion order, holding the last handler given.
type caseTable struct {
	entries  []Case
	wildcard *Case
}

func buildCaseTable(cases []Case) (caseTable, error) {
	var t caseTable
	wildcards := 0
	pos := make(map[*Shape]int, len(cases))

	for _, c := range cases {
		if c.wildcard {
			wildcards++
			wc := c
			t.wildcard = &wc
			continue
		}
		if c.ctor == nil || c.ctor.Shape() == nil {
			return caseTable{}, &NotAConstructorError{Value: c.ctor}
		}
		if i, ok := pos[c.ctor.Shape()]; ok {
			t.entries[i].handler = c.handler
			continue
		}
		pos[c.ctor.Shape()] = len(t.entries)
		t.entries = append(t.entries, c)
	}

	if wildcards > 1 {
		return caseTable{}, &DuplicateWildcardError{Count: wildcards}
	}
	return t, nil
}

// missing returns the tags of union members with no case, or nil when a
// wildcard is present.
func (t caseTable) missing(u *Union) []string {
	if t.wildcard != nil {
		return nil
	}
	covered := make(map[*Shape]bool, len(t.entries))
	for _, c := range t.entries {
		covered[c.ctor.Shape()] = true
	}
	var out []string
	for _, m := range u.Members() {
		if !covered[m.Shape()] {
			out = append(out, m.Tag())
		}
	}
	return out
}

// selectFor returns the first case whose constructor built target, then
// the wildcard.
func (t caseTable) selectFor(target *Value) (*Case, bool) {
	for i := range t.entries {
		if t.entries[i].ctor.Shape() == target.shape {
			return &t.entries[i], false
		}
	}
	if t.wildcard != nil {
		return t.wildcard, true
	}
	return nil, false
}

// ============================================================
// Matcher
// ============================================================

// Matcher is a union bound to a case list, ready to dispatch targets.
// It is immutable and safe for concurrent use.
type Matcher[R any] struct {
	union *Union
	table caseTable
	err   error // case-list or exhaustiveness failure found at bind time
}

// Bind checks cases against u once and returns a reusable Matcher.
// Problems with the case list, including *NonExhaustiveMatchError, are
// reported by Err and by every call to Match.
func Bind[R any](u *Union, cases ...Case) *Matcher[R] {
	m := &Matcher[R]{union: u}
	table, err := buildCaseTable(cases)
	if err != nil {
		m.err = err
		return m
	}
	m.table = table
	if missing := table.missing(u); len(missing) > 0 {
		m.err = &NonExhaustiveMatchError{Union: u.Name(), Missing: missing}
	}
	return m
}

// Err returns the bind-time error, if any.
func (m *Matcher[R]) Err() error {
	return m.err
}

// Match dispatches target to its case.
//
// Membership is checked first (*NotInUnionError), then the bind-time
// exhaustiveness result (*NonExhaustiveMatchError), which fails even when
// target itself has a case. The wildcard handler is called with no
// arguments; any other handler receives target's fields.
func (m *Matcher[R]) Match(target *Value) (R, error) {
	var zero R

	if !m.union.Contains(target) {
		return zero, &NotInUnionError{Tag: target.Tag(), Union: m.union.Name(), Members: m.union.Tags()}
	}
	if m.err != nil {
		return zero, m.err
	}

	c, wildcard := m.table.selectFor(target)
	if c == nil {
		return zero, fmt.Errorf("%w: no case matches %s", ErrInvariant, target.Tag())
	}
	if wildcard {
		return invoke[R](target.Tag(), c.handler, nil)
	}
	return invoke[R](target.Tag(), c.handler, target.fields)
}

// Match checks and dispatches target against cases in one call. It is
// Bind(u, cases...).Match(target).
func Match[R any](u *Union, target *Value, cases ...Case) (R, error) {
	return Bind[R](u, cases...).Match(target)
}
