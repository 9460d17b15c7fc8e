// Package errors carries coded, wrappable errors across the pipeline
package errors

// Callers import this package as perr to stay clear of the stdlib errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies errors across the pipeline: bad trigger input,
// vanished GitHub resources, rate limits, and backend failures.
// Values go out numerically on the wire; never reorder this block
type ErrorCode uint16

const (
	// ErrorCodeUnknown covers anything not classified below
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic marks panics the recovery middleware turned into errors
	ErrorCodePanic

	// ErrorCodeUnavailable marks transient backend failures where a retry can succeed
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests marks upstream rate limiting
	ErrorCodeTooManyRequests

	// ErrorCodeInvalidArgument marks bad request parameters
	ErrorCodeInvalidArgument

	// ErrorCodeValidation marks payloads that parse but fail validation
	ErrorCodeValidation

	// ErrorCodeJSON marks malformed JSON
	ErrorCodeJSON

	// ErrorCodeNotFound marks resources that do not exist: runs, checkpoints, staged objects
	ErrorCodeNotFound

	// ErrorCodeDuplicateKey marks unique violations and already-exists conditions
	ErrorCodeDuplicateKey

	// ErrorCodeDB marks general warehouse failures
	ErrorCodeDB
)

// statusByCode is the HTTP projection of each code. Codes without an entry
// surface as 500
var statusByCode = map[ErrorCode]int{
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
}

// HTTPStatusCode resolves the HTTP status for a code
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error pairs a machine-facing code with a human-facing message and an
// optional wrapped cause
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

// Wire is the JSON shape the API returns for an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error renders "msg" or "msg: cause"
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig == nil {
		return e.msg
	}
	return e.msg + ": " + e.orig.Error()
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error { return e.orig }

// Code reports the machine-facing classification
func (e *Error) Code() ErrorCode { return e.code }

// ToWire projects the error onto its API shape
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg} }

// WireFrom projects any error onto the API shape. Foreign errors come out
// as ErrorCodeUnknown with their full text; nil comes out as the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
	}
	return e.ToWire()
}

// Root walks Unwrap to the deepest cause
func Root(err error) error {
	if err == nil {
		return nil
	}
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// CodeOf extracts the ErrorCode from anywhere in err's chain, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	e, ok := As(err)
	if !ok {
		return ErrorCodeUnknown
	}
	return e.code
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus is HTTPStatusCode applied to CodeOf
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Constructors

// New returns a coded error with no cause
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is the formatted variant of New
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap returns a coded error with orig as its cause
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf is the formatted variant of Wrap
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

// Sugar

// NotFoundf builds an ErrorCodeNotFound error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf builds an ErrorCodeInvalidArgument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf builds an ErrorCodeJSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf builds an ErrorCodePanic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unavailablef builds an ErrorCodeUnavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Retry semantics

// Retryable reports whether the error is worth retrying. It delegates to the
// backend mappings: Postgres in pg.go, Google APIs in gapi.go
func Retryable(err error) bool { return IsRetryable(err) || googleRetryable(err) }
