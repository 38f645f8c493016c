// Package domainerrors carries the error taxonomy shared by services and transport.
//
// Codes are the OAuth 2.0 / OIDC error identifiers (RFC 6749 §4.1.2.1, §5.2,
// RFC 6750 §3.1 and OIDC Core §3.1.2.6) plus a few internal codes. Handlers render an *Error as the
// wire "error" value and map its Code to an HTTP status with HTTPStatus.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies an error class. The string value is what clients see.
type Code string

const (
	CodeInvalidRequest          Code = "invalid_request"
	CodeInvalidClient           Code = "invalid_client"
	CodeInvalidGrant            Code = "invalid_grant"
	CodeUnauthorizedClient      Code = "unauthorized_client"
	CodeUnsupportedGrantType    Code = "unsupported_grant_type"
	CodeUnsupportedResponseType Code = "unsupported_response_type"
	CodeInvalidScope            Code = "invalid_scope"
	CodeAccessDenied            Code = "access_denied"
	CodeConsentRequired         Code = "consent_required"
	CodeLoginRequired           Code = "login_required"
	CodeInvalidRedirectURI      Code = "invalid_redirect_uri"
	CodeInvalidToken            Code = "invalid_token"
	CodeInternal                Code = "server_error"

	CodeNotFound           Code = "not_found"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
)

// Error is a domain error with a client-safe message. Err keeps the underlying
// cause for logs and errors.Is chains; it is never rendered.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds an error with no underlying cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and safe message to err.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// From extracts the outermost *Error from err's chain.
func From(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	de, ok := From(err)
	return ok && de.Code == code
}

// CodeOf returns the code of err, or CodeInternal for errors outside the taxonomy.
func CodeOf(err error) Code {
	if de, ok := From(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status used on direct (non-redirect) responses.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidRequest, CodeInvalidGrant, CodeUnsupportedGrantType,
		CodeUnsupportedResponseType, CodeInvalidScope, CodeInvalidRedirectURI,
		CodeInvalidInput, CodeUnauthorizedClient, CodeConsentRequired, CodeLoginRequired:
		return http.StatusBadRequest
	case CodeInvalidClient, CodeInvalidToken, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
