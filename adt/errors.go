package adt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvariant reports an internal invariant violation. Match returns it
// only if no handler resolves after the membership and exhaustiveness
// checks have passed.
var ErrInvariant = errors.New("adt: invariant violation")

// ValidationError is returned by Validate when a value does not conform
// to a spec.
type ValidationError struct {
	Spec  Spec
	Value any
	Cause error // optional detail, e.g. a recovered predicate panic
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s does not conform to %s", repr(e.Value), e.Spec)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// PredicatePanicError captures a panic raised while evaluating a
// predicate spec.
type PredicatePanicError struct {
	Predicate string
	Recovered any
}

func (e *PredicatePanicError) Error() string {
	return fmt.Sprintf("predicate %s panicked: %v", e.Predicate, e.Recovered)
}

// Unwrap exposes a recovered error value.
func (e *PredicatePanicError) Unwrap() error {
	err, _ := e.Recovered.(error)
	return err
}

// ArityError is returned when a variant receives the wrong number of
// positional values.
type ArityError struct {
	Tag      string
	Expected int
	Given    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d values, given %d", e.Tag, e.Expected, e.Given)
}

// MissingFieldError lists declared record fields absent from the input.
type MissingFieldError struct {
	Tag    string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: expected value for %s, none given", e.Tag, quoteNames(e.Fields))
}

// UnexpectedFieldError lists input keys that a record does not declare.
type UnexpectedFieldError struct {
	Tag    string
	Fields []string
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("%s: unexpected values given: %s", e.Tag, quoteNames(e.Fields))
}

// FieldTypeError is returned when a field value fails its spec. Field is
// empty for variants, where Index alone locates the field.
type FieldTypeError struct {
	Tag   string
	Index int
	Field string
	Value any
	Spec  Spec
	Cause *ValidationError
}

func (e *FieldTypeError) Error() string {
	loc := fmt.Sprintf("%d", e.Index)
	if e.Field != "" {
		loc = "'" + e.Field + "'"
	}
	msg := fmt.Sprintf("%s: invalid type in field %s: %s", e.Tag, loc, repr(e.Value))
	if e.Cause != nil {
		msg += "\n  " + e.Cause.Error()
	}
	return msg
}

func (e *FieldTypeError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// NotAConstructorError is returned when something other than a declared
// constructor is used where one is required.
type NotAConstructorError struct {
	Value any
}

func (e *NotAConstructorError) Error() string {
	return fmt.Sprintf("adt: %T is not an ADT constructor", e.Value)
}

// NotInUnionError is returned when a match target is not built by any
// member of the union.
type NotInUnionError struct {
	Tag     string
	Union   string
	Members []string
}

func (e *NotInUnionError) Error() string {
	tag := e.Tag
	if tag == "" {
		tag = "nil"
	}
	name := e.Union
	if name == "" {
		name = "union"
	}
	return fmt.Sprintf("%s is not in %s [%s]", tag, name, strings.Join(e.Members, ", "))
}

// NonExhaustiveMatchError lists union members that have no case when no
// wildcard is present.
type NonExhaustiveMatchError struct {
	Union   string
	Missing []string
}

func (e *NonExhaustiveMatchError) Error() string {
	return fmt.Sprintf("no case found for the following type(s): %s", strings.Join(e.Missing, ", "))
}

// NotCallableError is returned when the selected handler cannot be
// invoked with the target's fields.
type NotCallableError struct {
	Tag     string
	Handler any
	Reason  string
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s: matched case is not callable: %s", e.Tag, e.Reason)
}

// DuplicateWildcardError is returned when a case list holds more than
// one Otherwise case.
type DuplicateWildcardError struct {
	Count int
}

func (e *DuplicateWildcardError) Error() string {
	return fmt.Sprintf("adt: at most one wildcard case is permitted, got %d", e.Count)
}

// DuplicateTagError is returned when two different constructors are
// registered under one tag, or listed twice in a union.
type DuplicateTagError struct {
	Tag string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("adt: duplicate constructor for tag %s", e.Tag)
}

// RestoreError is returned when a snapshot is structurally unusable.
type RestoreError struct {
	Tag    string
	Reason string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("adt: restore %s: %s", e.Tag, e.Reason)
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
