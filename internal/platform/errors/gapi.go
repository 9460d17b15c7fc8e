package errors

// Google API helpers for mapping googleapi errors to project ErrorCode and retry semantics.
// Both the gcs and bigquery drivers surface *googleapi.Error as their root cause

import (
	stderrs "errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ExtractGoogleAPIError returns (*googleapi.Error, true) if the root cause is a googleapi.Error
func ExtractGoogleAPIError(err error) (*googleapi.Error, bool) {
	var gerr *googleapi.Error
	if stderrs.As(Root(err), &gerr) {
		return gerr, true
	}
	return nil, false
}

// IsGoogleStatus reports whether the error is a googleapi error with the given http status
func IsGoogleStatus(err error, status int) bool {
	gerr, ok := ExtractGoogleAPIError(err)
	return ok && gerr.Code == status
}

// IsGoogleNotFound reports whether the error is a 404 from a Google API
func IsGoogleNotFound(err error) bool { return IsGoogleStatus(err, http.StatusNotFound) }

// GoogleAPIErrorCode maps a googleapi error to an ErrorCode with an ok flag
// !ok means err wasn't a googleapi.Error; caller may fall back to generic handling
func GoogleAPIErrorCode(err error) (ErrorCode, bool) {
	gerr, ok := ExtractGoogleAPIError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch gerr.Code {
	case http.StatusBadRequest:
		return ErrorCodeInvalidArgument, true
	case http.StatusUnauthorized, http.StatusForbidden:
		// service account misconfiguration, an operator problem
		return ErrorCodeUnknown, true
	case http.StatusNotFound:
		return ErrorCodeNotFound, true
	case http.StatusConflict, http.StatusPreconditionFailed:
		// already-exists and generation mismatch conflicts
		return ErrorCodeDuplicateKey, true
	case http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests, true
	}
	if gerr.Code >= 500 {
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeUnknown, true
}

// FromGoogleAPI wraps a googleapi error with a mapped ErrorCode and message.
// If err is nil, returns nil
func FromGoogleAPI(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := GoogleAPIErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeUnavailable, msg)
}

// FromGoogleAPIf is the formatted variant of FromGoogleAPI
func FromGoogleAPIf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromGoogleAPI(err, fmt.Sprintf(format, a...))
}

// googleRetryable reports transient Google API failures worth retrying
func googleRetryable(err error) bool {
	gerr, ok := ExtractGoogleAPIError(err)
	if !ok {
		return false
	}
	switch gerr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
