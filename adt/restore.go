package adt

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Snapshot is the re-materialization form of a value: its tag, kind,
// record field names and field values. Nested values stay *Value.
type Snapshot struct {
	Tag    string
	Kind   Kind
	Names  []string // records only, matching Fields
	Fields []any
}

// Snapshot returns the re-materialization form of v.
func (v *Value) Snapshot() Snapshot {
	if v == nil {
		return Snapshot{}
	}
	return Snapshot{
		Tag:    v.shape.tag,
		Kind:   v.shape.kind,
		Names:  v.shape.Names(),
		Fields: v.Fields(),
	}
}

// Restore rebuilds a value from a snapshot through a constructor whose
// specs accept anything, so already-validated data cannot fail
// validation. Only a structurally broken snapshot fails, with
// *RestoreError.
//
// Each call declares a fresh shape: the result is Equal to the original
// but is not a member of the original's unions. Use Registry.Restore to
// keep membership.
func Restore(s Snapshot) (*Value, error) {
	if s.Tag == "" {
		return nil, &RestoreError{Reason: "empty tag"}
	}

	switch s.Kind {
	case KindVariant:
		if len(s.Names) != 0 {
			return nil, &RestoreError{Tag: s.Tag, Reason: "variant snapshot has field names"}
		}
		specs := make([]Spec, len(s.Fields))
		for i := range specs {
			specs[i] = Anything()
		}
		return DeclareVariant(s.Tag, specs...).New(s.Fields...)

	case KindRecord:
		byName, err := s.byName()
		if err != nil {
			return nil, err
		}
		fields := make([]Field, len(s.Names))
		for i, name := range s.Names {
			fields[i] = F(name, Anything())
		}
		return DeclareRecord(s.Tag, fields...).New(byName)

	default:
		return nil, &RestoreError{Tag: s.Tag, Reason: fmt.Sprintf("unknown kind %d", s.Kind)}
	}
}

func (s Snapshot) byName() (map[string]any, error) {
	if len(s.Names) != len(s.Fields) {
		return nil, &RestoreError{Tag: s.Tag, Reason: fmt.Sprintf("%d names for %d fields", len(s.Names), len(s.Fields))}
	}
	out := make(map[string]any, len(s.Names))
	for i, name := range s.Names {
		if name == "" {
			return nil, &RestoreError{Tag: s.Tag, Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := out[name]; dup {
			return nil, &RestoreError{Tag: s.Tag, Reason: "duplicate field " + name}
		}
		out[name] = s.Fields[i]
	}
	return out, nil
}

// ============================================================
// Gob
// ============================================================

func init() {
	gob.Register(&Value{})
	gob.Register([]any(nil))
	gob.Register(map[string]any(nil))
}

// GobEncode encodes the snapshot of v.
func (v *Value) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v.Snapshot()); err != nil {
		return nil, fmt.Errorf("adt: encode %s: %w", v.Tag(), err)
	}
	return buf.Bytes(), nil
}

// GobDecode restores v from an encoded snapshot without re-validation.
func (v *Value) GobDecode(data []byte) error {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("adt: decode value: %w", err)
	}
	restored, err := Restore(s)
	if err != nil {
		return err
	}
	*v = *restored
	return nil
}
