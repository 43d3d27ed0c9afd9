package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// PlatformError is an error carrying an ErrorCode, a human-readable message,
// optional diagnostic context and the underlying cause.
type PlatformError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
	Cause   error
}

// New creates a PlatformError with the given code and message.
func New(code ErrorCode, message string) *PlatformError {
	return &PlatformError{Code: code, Message: message}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *PlatformError {
	if err == nil {
		return nil
	}
	return &PlatformError{Code: code, Message: message, Cause: err}
}

// WrapWithContext wraps err like Wrap and attaches diagnostic context.
// The context map is copied.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) *PlatformError {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Context: maps.Clone(ctx),
		Cause:   err,
	}
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PlatformError with the same code.
func (e *PlatformError) Is(target error) bool {
	t, ok := target.(*PlatformError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var pe *PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &PlatformError{Code: code})
}
