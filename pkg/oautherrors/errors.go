package oautherrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is an OAuth2 error kind as it appears on the wire in the
// "error" field of an error response.
type Code string

const (
	CodeInvalidClient        Code = "invalid_client"
	CodeInvalidRequest       Code = "invalid_request"
	CodeInvalidState         Code = "invalid_state"
	CodeInvalidCredentials   Code = "invalid_credentials"
	CodeInvalidGrant         Code = "invalid_grant"
	CodeInvalidToken         Code = "invalid_token"
	CodeUnsupportedGrantType Code = "unsupported_grant_type"
	CodeServerError          Code = "server_error"
)

// Error is a code-tagged domain error. Every validation failure in the
// grant flow is classified with a Code at the point of detection; the
// HTTP layer renders the code and description without re-inspecting
// the cause chain.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and human description.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and description to an underlying cause. The
// cause is kept for logs; only code and message reach the client.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code from err, defaulting to server_error for
// untagged errors so unexpected faults never leak detail.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeServerError
}

// Description returns the human text for err, or empty when the error
// is untagged (internal faults carry no client-visible description).
func Description(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// HTTPStatus maps an error code to its HTTP response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidClient, CodeInvalidCredentials, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeInvalidRequest, CodeInvalidState, CodeInvalidGrant, CodeUnsupportedGrantType:
		return http.StatusBadRequest
	case CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
