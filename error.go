package xaml

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind determines why the input was rejected.
type ErrorKind uint32

// ErrorKind values.
const (
	ParseError       ErrorKind = iota // syntactically invalid input
	DeclarationError                  // unsupported doc type or version in a !!! declaration
	EncodingError                     // unknown or missing codec in a coding pragma
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case DeclarationError:
		return "DeclarationError"
	case EncodingError:
		return "EncodingError"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Error is a rejection of the input. It contains a message and the line and column at which the error occurred.
// Every error caused by bad input is an *Error, regardless of its Kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
	Context string
}

// NewError creates a new error for the given source line, column is 1-based.
func NewError(kind ErrorKind, msg string, line int, text string, column int) *Error {
	return &Error{
		Kind:    kind,
		Message: msg,
		Line:    line,
		Column:  column,
		Context: Context(line, text, column),
	}
}

// Position returns the line, column, and context of the error.
// Context is the entire line at which the error occurred.
func (e *Error) Position() (int, int, string) {
	return e.Line, e.Column, e.Context
}

// Error returns the error string, containing the context and line + column number.
func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s on line %d and column %d\n%s", e.Message, e.Line, e.Column, e.Context)
}

// IsParseError reports whether err is, or wraps, an *Error of kind ParseError.
func IsParseError(err error) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Kind == ParseError
}

////////////////////////////////////////////////////////////////

// InternalError is returned when the parser receives a token sequence the tokenizer should never produce.
// It signals a defect in this package, not bad input.
type InternalError struct {
	Message string
	Token   Token
}

// Error returns the error string.
func (e *InternalError) Error() string {
	return "xaml: internal error: " + e.Message + " at " + e.Token.String()
}
