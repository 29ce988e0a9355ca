// internal/failure/failure.go
package failure

import (
	"errors"
	"fmt"
)

// Code is a string type used for structured failure reporting from command handlers.
// Using a custom type ensures only the predefined constants are passed where a Code is expected.
type Code string

const (
	// -- Browser/DOM --
	CodeElementNotFound  Code = "ELEMENT_NOT_FOUND"
	CodeFieldNotFound    Code = "FIELD_NOT_FOUND"
	CodeActionFailed     Code = "ACTION_FAILED"
	CodeNavigationFailed Code = "NAVIGATION_FAILED"

	// -- Patient API --
	CodeIdentifierResolutionFailed Code = "IDENTIFIER_RESOLUTION_FAILED"

	// -- Session and input --
	CodeSessionClosed Code = "SESSION_CLOSED"
	CodeInvalidInput  Code = "INVALID_INPUT"
)

// Error is a classified failure. Target is what the operator asked for (a text,
// a field name, a URL, an identifier), never the list of strategies tried.
type Error struct {
	Code   Code
	Target string
	Err    error
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeElementNotFound:
		return fmt.Sprintf("could not find element: %s", e.Target)
	case CodeFieldNotFound:
		return fmt.Sprintf("could not find field: %s", e.Target)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", humanize(e.Code), e.Target)
	}
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", humanize(e.Code), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", humanize(e.Code), e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func humanize(c Code) string {
	switch c {
	case CodeActionFailed:
		return "action failed"
	case CodeNavigationFailed:
		return "navigation failed"
	case CodeIdentifierResolutionFailed:
		return "identifier resolution failed"
	case CodeSessionClosed:
		return "session closed"
	case CodeInvalidInput:
		return "invalid input"
	default:
		return string(c)
	}
}

// New builds a classified failure.
func New(code Code, target string, err error) *Error {
	return &Error{Code: code, Target: target, Err: err}
}

func ElementNotFound(target string) *Error { return New(CodeElementNotFound, target, nil) }
func FieldNotFound(target string) *Error   { return New(CodeFieldNotFound, target, nil) }

func ActionFailed(target string, err error) *Error {
	return New(CodeActionFailed, target, err)
}

func NavigationFailed(url string, err error) *Error {
	return New(CodeNavigationFailed, url, err)
}

func IdentifierResolutionFailed(identifier string, err error) *Error {
	return New(CodeIdentifierResolutionFailed, identifier, err)
}

// InvalidInput reports an operator argument that cannot be used as given.
func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, "", fmt.Errorf(format, args...))
}

// CodeOf returns the code of the first classified failure in err's chain, or "".
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
