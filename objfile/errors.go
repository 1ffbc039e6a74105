package objfile

import "fmt"

// FormatError is returned when an OBJ/LIB byte stream does not have the
// shape required at the point the error was raised.
type FormatError struct {
	Off int64
	Msg string
	Val interface{}
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" %v", e.Val)
	}
	return fmt.Sprintf("objfile: %s (at byte %#x)", msg, e.Off)
}

// ErrUnknownTag reports a section or expression tag byte that has no
// registered variant.
type ErrUnknownTag struct {
	Kind string // "section" or "expression"
	Tag  byte
	Off  int64
}

func (e *ErrUnknownTag) Error() string {
	return fmt.Sprintf("objfile: unknown %s tag %#02x (at byte %#x)", e.Kind, e.Tag, e.Off)
}

// ErrExprTooDeep is returned when an expression tree nests deeper than
// maxExprDepth, guarding against unbounded recursion on crafted input.
var ErrExprTooDeep = fmt.Errorf("objfile: expression nesting exceeds %d levels", maxExprDepth)
