package exitcodes

import (
	"errors"
	"fmt"
)

// ErrorWithCode is an error that carries an explicit exit code
type ErrorWithCode struct {
	Code    int
	Message string
	Cause   error
}

func (e *ErrorWithCode) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *ErrorWithCode) Unwrap() error { return e.Cause }

// NewError creates an error with an explicit exit code
func NewError(code int, message string) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message}
}

// WrapError wraps an existing error with an exit code
func WrapError(code int, message string, cause error) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message, Cause: cause}
}

func InvalidArgsError(message string) *ErrorWithCode { return NewError(InvalidArgs, message) }

func PreconditionError(message string) *ErrorWithCode {
	return NewError(PreconditionFailed, message)
}

func ValidationErr(message string) *ErrorWithCode { return NewError(ValidationError, message) }

func NotFoundErrf(format string, args ...any) *ErrorWithCode {
	return NewError(NotFound, fmt.Sprintf(format, args...))
}

// Rule assigns Code to errors matching Target under errors.Is.
type Rule struct {
	Target error
	Code   int
}

// Classify attaches the code of the first matching rule to err. Errors
// that already carry a code are returned as is; unmatched errors get
// GeneralError.
func Classify(err error, rules []Rule) error {
	var ec *ErrorWithCode
	if err == nil || errors.As(err, &ec) {
		return err
	}
	for _, r := range rules {
		if errors.Is(err, r.Target) {
			return WrapError(r.Code, "", err)
		}
	}
	return WrapError(GeneralError, "", err)
}
