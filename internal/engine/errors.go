// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common engine errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrNotStarted      = errors.New("session not started")
	ErrSessionClosed   = errors.New("session closed")
	ErrNoTarget        = errors.New("next page control has no target")
)

// ErrorCode classifies a crawl failure
type ErrorCode string

const (
	ErrCodeLaunch     ErrorCode = "LAUNCH"
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeParse      ErrorCode = "PARSE"
	ErrCodeIO         ErrorCode = "IO"
	ErrCodeValidation ErrorCode = "VALIDATION"
	ErrCodeSession    ErrorCode = "SESSION"
)

// EngineError wraps errors with a code and the page or path involved
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]string
}

// Error renders "CODE: message: cause (key=value ...)"
func (e *EngineError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Underlying != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Underlying.Error())
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s=%s", k, e.Details[k])
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is an *EngineError with the same code.
// Sentinels in the cause chain are matched through Unwrap.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && e.Code == t.Code
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// WithDetail attaches a key/value shown in the error message
func (e *EngineError) WithDetail(key, value string) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first EngineError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
