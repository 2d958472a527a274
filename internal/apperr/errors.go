// Package apperr defines the error taxonomy shared by the stores, the
// session, and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a mutation targeted a note id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a create collided with a stored note id.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotConfigured indicates the remote backend was used without a base
	// URL. The text is the user-facing message.
	ErrNotConfigured = errors.New("API base URL not configured")
	// ErrInvalidResponse indicates a payload that violates the expected
	// Note, array, or {ok:true} contract.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrNetwork indicates a transport-level failure reaching the remote backend.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized indicates the remote backend reported 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServer indicates the remote backend reported a 5xx status.
	ErrServer = errors.New("server error")
	// ErrEmptySelection indicates a bulk operation received no ids.
	ErrEmptySelection = errors.New("empty selection")
)

// RequestError describes a failed remote call. Message is human-readable and
// is what callers surface to the user; Status is the HTTP status code, or 0
// for transport-level failures.
type RequestError struct {
	Verb    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap maps the request outcome onto the taxonomy sentinel so callers can
// use errors.Is without parsing messages.
func (e *RequestError) Unwrap() error {
	switch {
	case e.Status == 0:
		return ErrNetwork
	case e.Status == 404:
		return ErrNotFound
	case e.Status == 401 || e.Status == 403:
		return ErrUnauthorized
	case e.Status >= 500:
		return ErrServer
	default:
		return nil
	}
}

// Network builds the transport-failure error for a verb+path pair. The verb
// is part of the message so a user can tell which call never reached the
// server.
func Network(verb, path string, cause error) *RequestError {
	return &RequestError{
		Verb:    verb,
		Message: fmt.Sprintf("Network error (%s %s): %v", verb, path, cause),
	}
}

// Status builds the error for a non-2xx HTTP response.
func Status(verb string, code int) *RequestError {
	e := &RequestError{Verb: verb, Status: code}
	switch {
	case code == 404:
		e.Message = "Endpoint not found (404)"
	case code == 401 || code == 403:
		e.Message = fmt.Sprintf("Unauthorized (%d)", code)
	case code >= 500:
		e.Message = fmt.Sprintf("Server error (%d)", code)
	default:
		e.Message = fmt.Sprintf("Request failed (%d)", code)
	}
	return e
}

// ResponseError describes a payload that violated the expected shape.
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func (e *ResponseError) Unwrap() error {
	return ErrInvalidResponse
}

// Invalid builds a shape-violation error with a user-facing message.
func Invalid(format string, args ...any) *ResponseError {
	return &ResponseError{Message: fmt.Sprintf(format, args...)}
}
