// Package decl loads ADT declarations from YAML.
//
// A declaration file lists types in construction order and unions over
// them:
//
//	types:
//	  - record: Point
//	    fields:
//	      - {name: x, type: int}
//	      - {name: y, type: int}
//	  - variant: Circle
//	    fields: [int, Point]
//	unions:
//	  - name: Shape
//	    members: [Circle]
//
// Field types are type expressions (see ParseExpr). A type may only
// reference types declared before it. The loaded Set builds validated
// values from JSON documents with Decode.
package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/adt/adt"
)

// ============================================================
// File Format
// ============================================================

// File is the YAML document layout.
type File struct {
	Types  []TypeDecl  `yaml:"types"`
	Unions []UnionDecl `yaml:"unions"`
}

// TypeDecl declares one constructor. Exactly one of Record and Variant
// is set.
type TypeDecl struct {
	Record  string      `yaml:"record,omitempty"`
	Variant string      `yaml:"variant,omitempty"`
	Fields  []FieldDecl `yaml:"fields,omitempty"`
}

// FieldDecl is a field type expression, named for record fields.
// Variant fields may be written as a bare expression string.
type FieldDecl struct {
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type"`
}

// UnmarshalYAML accepts a scalar expression or a {name, type} mapping
// and rejects unknown keys.
func (f *FieldDecl) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Type = node.Value
		return nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: field %s must be a string", val.Line, key.Value)
			}
			switch key.Value {
			case "name":
				f.Name = val.Value
			case "type":
				f.Type = val.Value
			default:
				return fmt.Errorf("line %d: field %s not found in field declaration", key.Line, key.Value)
			}
		}
		return nil

	default:
		return fmt.Errorf("line %d: field must be a type expression or a {name, type} mapping", node.Line)
	}
}

// UnionDecl declares a union over previously declared types.
type UnionDecl struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// ============================================================
// Options
// ============================================================

// Option configures loading.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for declaration and decode events.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// ============================================================
// Loading
// ============================================================

// Load reads one YAML declaration document from r. Unknown keys and
// multiple documents are rejected.
func Load(r io.Reader, opts ...Option) (*Set, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decl: parse: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("decl: multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decl: after first YAML document: %w", err)
	}

	return Build(&f, opts...)
}

// LoadFile reads a declaration file.
func LoadFile(path string, opts ...Option) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	s, err := Load(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build declares every type and union of f. Problems in independent
// entries are all reported, joined; a type that fails to declare is
// unavailable to later entries.
func Build(f *File, opts ...Option) (*Set, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := newSet(o.log)
	if f == nil {
		return s, nil
	}
	var errs []error
	for i, td := range f.Types {
		if err := s.declare(td); err != nil {
			errs = append(errs, &DeclError{Section: "types", Index: i, Name: declName(td), Err: err})
		}
	}
	for i, ud := range f.Unions {
		if err := s.declareUnion(ud); err != nil {
			errs = append(errs, &DeclError{Section: "unions", Index: i, Name: ud.Name, Err: err})
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

func declName(td TypeDecl) string {
	if td.Record != "" {
		return td.Record
	}
	return td.Variant
}

// ============================================================
// Set
// ============================================================

// entry is one declared constructor with its source expressions.
type entry struct {
	ctor   adt.Constructor
	fields []FieldDecl
	exprs  []*Expr
}

// Set is a loaded declaration file. It is immutable after loading and
// safe for concurrent use.
type Set struct {
	log      *zap.Logger
	reg      *adt.Registry
	entries  map[string]*entry
	order    []string
	unions   map[string]*adt.Union
	unionSeq []*adt.Union
}

func newSet(log *zap.Logger) *Set {
	return &Set{
		log:     log,
		reg:     adt.NewRegistry(),
		entries: make(map[string]*entry),
		unions:  make(map[string]*adt.Union),
	}
}

func (s *Set) declare(td TypeDecl) error {
	switch {
	case td.Record != "" && td.Variant != "":
		return fmt.Errorf("declares both record %s and variant %s", td.Record, td.Variant)
	case td.Record == "" && td.Variant == "":
		return fmt.Errorf("missing record or variant tag")
	}
	tag := declName(td)
	if _, dup := s.entries[tag]; dup {
		return &adt.DuplicateTagError{Tag: tag}
	}

	e := &entry{fields: td.Fields, exprs: make([]*Expr, len(td.Fields))}
	specs := make([]adt.Spec, len(td.Fields))
	for i, fd := range td.Fields {
		expr, err := ParseExpr(fd.Type)
		if err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		spec, err := s.compile(fd.Type, expr)
		if err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		e.exprs[i] = expr
		specs[i] = spec
	}

	if td.Record != "" {
		seen := make(map[string]bool, len(td.Fields))
		fields := make([]adt.Field, len(td.Fields))
		for i, fd := range td.Fields {
			if fd.Name == "" {
				return fmt.Errorf("field %d has no name", i)
			}
			if seen[fd.Name] {
				return fmt.Errorf("duplicate field %s", fd.Name)
			}
			seen[fd.Name] = true
			fields[i] = adt.F(fd.Name, specs[i])
		}
		e.ctor = adt.DeclareRecord(tag, fields...)
	} else {
		for i, fd := range td.Fields {
			if fd.Name != "" {
				return fmt.Errorf("field %d: variant fields are positional, got name %s", i, fd.Name)
			}
		}
		e.ctor = adt.DeclareVariant(tag, specs...)
	}

	if err := s.reg.Register(e.ctor); err != nil {
		return err
	}
	s.entries[tag] = e
	s.order = append(s.order, tag)
	s.log.Debug("declared constructor",
		zap.String("tag", tag),
		zap.Stringer("kind", e.ctor.Shape().Kind()),
		zap.Int("arity", e.ctor.Arity()))
	return nil
}

func (s *Set) declareUnion(ud UnionDecl) error {
	if ud.Name == "" {
		return fmt.Errorf("missing union name")
	}
	if _, dup := s.unions[ud.Name]; dup {
		return fmt.Errorf("duplicate union %s", ud.Name)
	}
	members := make([]adt.Constructor, len(ud.Members))
	for i, tag := range ud.Members {
		e, ok := s.entries[tag]
		if !ok {
			return &NotDeclaredError{Kind: "type", Name: tag}
		}
		members[i] = e.ctor
	}
	u, err := adt.NewUnion(ud.Name, members...)
	if err != nil {
		return err
	}
	s.unions[ud.Name] = u
	s.unionSeq = append(s.unionSeq, u)
	s.log.Debug("declared union", zap.String("union", ud.Name), zap.Strings("members", ud.Members))
	return nil
}

// Registry returns the registry holding every declared constructor.
func (s *Set) Registry() *adt.Registry {
	return s.reg
}

// Constructor returns the constructor declared for tag.
func (s *Set) Constructor(tag string) (adt.Constructor, bool) {
	e, ok := s.entries[tag]
	if !ok {
		return nil, false
	}
	return e.ctor, true
}

// Tags returns the declared tags in declaration order.
func (s *Set) Tags() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Union returns the union declared as name.
func (s *Set) Union(name string) (*adt.Union, bool) {
	u, ok := s.unions[name]
	return u, ok
}

// Unions returns the declared unions in declaration order.
func (s *Set) Unions() []*adt.Union {
	out := make([]*adt.Union, len(s.unionSeq))
	copy(out, s.unionSeq)
	return out
}

// Describe renders the declarations, one per line:
//
//	record Point(x: int, y: int)
//	variant Circle(int, Point)
//	union Shape = Circle
func (s *Set) Describe() string {
	var sb strings.Builder
	for _, tag := range s.order {
		e := s.entries[tag]
		sb.WriteString(e.ctor.Shape().Kind().String())
		sb.WriteByte(' ')
		sb.WriteString(tag)
		sb.WriteByte('(')
		for i, expr := range e.exprs {
			if i > 0 {
				sb.WriteString(", ")
			}
			if e.fields[i].Name != "" {
				sb.WriteString(e.fields[i].Name)
				sb.WriteString(": ")
			}
			sb.WriteString(expr.String())
		}
		sb.WriteString(")\n")
	}
	for _, u := range s.unionSeq {
		sb.WriteString("union ")
		sb.WriteString(u.Name())
		sb.WriteString(" = ")
		sb.WriteString(strings.Join(u.Tags(), " | "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
