package decl

import "fmt"

// ExprError reports a malformed or unresolvable type expression.
type ExprError struct {
	Expr   string
	Pos    int
	Reason string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("decl: %s at offset %d in %q", e.Reason, e.Pos, e.Expr)
}

// NotDeclaredError is returned for a type or union name that the
// declaration file does not define.
type NotDeclaredError struct {
	Kind string // "type" or "union"
	Name string
}

func (e *NotDeclaredError) Error() string {
	return fmt.Sprintf("decl: %s %q is not declared", e.Kind, e.Name)
}

// DeclError reports an invalid entry in a declaration file.
type DeclError struct {
	Section string // "types" or "unions"
	Index   int
	Name    string
	Err     error
}

func (e *DeclError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("decl: %s[%d]: %v", e.Section, e.Index, e.Err)
	}
	return fmt.Sprintf("decl: %s[%d] %s: %v", e.Section, e.Index, e.Name, e.Err)
}

func (e *DeclError) Unwrap() error {
	return e.Err
}

// DecodeError locates a JSON document problem. Path is a JSONPath-like
// location such as $.Circle[1].
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decl: %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
