package adt

import (
	"sort"
	"sync"
)

// Union is an ordered, closed set of constructors that a match must
// cover.
type Union struct {
	name    string
	members []Constructor
}

// NewUnion declares a union. Members must be declared constructors and
// may not repeat.
func NewUnion(name string, members ...Constructor) (*Union, error) {
	seen := make(map[*Shape]bool, len(members))
	for _, m := range members {
		if m == nil || m.Shape() == nil {
			return nil, &NotAConstructorError{Value: m}
		}
		if seen[m.Shape()] {
			return nil, &DuplicateTagError{Tag: m.Tag()}
		}
		seen[m.Shape()] = true
	}
	out := make([]Constructor, len(members))
	copy(out, members)
	return &Union{name: name, members: out}, nil
}

// MustUnion is like NewUnion but panics on error.
func MustUnion(name string, members ...Constructor) *Union {
	u, err := NewUnion(name, members...)
	if err != nil {
		panic(err)
	}
	return u
}

// Name returns the union name.
func (u *Union) Name() string {
	if u == nil {
		return ""
	}
	return u.name
}

// Members returns the member constructors in declaration order.
func (u *Union) Members() []Constructor {
	if u == nil {
		return nil
	}
	out := make([]Constructor, len(u.members))
	copy(out, u.members)
	return out
}

// Len returns the member count.
func (u *Union) Len() int {
	if u == nil {
		return 0
	}
	return len(u.members)
}

// Tags returns the member tags in declaration order.
func (u *Union) Tags() []string {
	if u == nil {
		return nil
	}
	tags := make([]string, len(u.members))
	for i, m := range u.members {
		tags[i] = m.Tag()
	}
	return tags
}

// Contains returns true if v was built by one of the members.
func (u *Union) Contains(v *Value) bool {
	return u.memberOf(v) != nil
}

func (u *Union) memberOf(v *Value) Constructor {
	if u == nil || v == nil {
		return nil
	}
	for _, m := range u.members {
		if m.Shape() == v.shape {
			return m
		}
	}
	return nil
}

// ============================================================
// Registry
// ============================================================

// Registry maps tags to declared constructors. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byTag map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: make(map[string]Constructor)}
}

// Register adds constructors. Registering the same constructor twice is
// a no-op; a different constructor with a registered tag fails with
// *DuplicateTagError and nothing from the call is registered.
func (r *Registry) Register(cs ...Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]Constructor, len(cs))
	for _, c := range cs {
		if c == nil || c.Shape() == nil {
			return &NotAConstructorError{Value: c}
		}
		if prev, ok := r.byTag[c.Tag()]; ok && prev.Shape() != c.Shape() {
			return &DuplicateTagError{Tag: c.Tag()}
		}
		if prev, ok := pending[c.Tag()]; ok && prev.Shape() != c.Shape() {
			return &DuplicateTagError{Tag: c.Tag()}
		}
		pending[c.Tag()] = c
	}
	for tag, c := range pending {
		r.byTag[tag] = c
	}
	return nil
}

// Lookup returns the constructor registered for tag.
func (r *Registry) Lookup(tag string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byTag[tag]
	return c, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Restore re-materializes a snapshot using the constructor registered
// for its tag, so the value keeps that constructor's shape and union
// membership. Nested values with registered tags are moved onto their
// registered shapes too. Fields are not re-validated. Unknown tags fall
// back to the package-level Restore.
func (r *Registry) Restore(s Snapshot) (*Value, error) {
	c, ok := r.Lookup(s.Tag)
	if !ok {
		return Restore(s)
	}
	shape := c.Shape()
	if shape.kind != s.Kind {
		return nil, &RestoreError{Tag: s.Tag, Reason: "snapshot is a " + s.Kind.String() + ", registered constructor is a " + shape.kind.String()}
	}
	if len(s.Fields) != shape.arity {
		return nil, &RestoreError{Tag: s.Tag, Reason: "field count does not match registered constructor"}
	}

	ordered := s.Fields
	if shape.kind == KindRecord {
		byName, err := s.byName()
		if err != nil {
			return nil, err
		}
		ordered = make([]any, len(shape.names))
		for i, name := range shape.names {
			v, ok := byName[name]
			if !ok {
				return nil, &RestoreError{Tag: s.Tag, Reason: "missing field " + name}
			}
			ordered[i] = v
		}
	}

	fields := make([]any, len(ordered))
	for i, f := range ordered {
		rebound, err := r.rebind(f)
		if err != nil {
			return nil, err
		}
		fields[i] = rebound
	}
	return c.materialize(fields), nil
}

// rebind moves nested values, directly or inside []any, onto the
// registered shapes for their tags.
func (r *Registry) rebind(x any) (any, error) {
	switch val := x.(type) {
	case *Value:
		if val == nil {
			return val, nil
		}
		if _, ok := r.Lookup(val.Tag()); !ok {
			return val, nil
		}
		return r.Restore(val.Snapshot())
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			rebound, err := r.rebind(elem)
			if err != nil {
				return nil, err
			}
			out[i] = rebound
		}
		return out, nil
	default:
		return x, nil
	}
}
