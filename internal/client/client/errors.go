package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrTimeout            = errors.New("request timed out")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrServer             = errors.New("server error")
	ErrMalformedResponse  = errors.New("malformed response")
)

// APIError is a non-2xx response. Error returns the server detail verbatim
// when there is one.
type APIError struct {
	Status    int
	Detail    string
	RequestID string
	Kind      error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return http.StatusText(e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// kindForStatus maps a non-2xx HTTP status to its sentinel. 401 is handled
// by the caller since it means different things per endpoint.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden || status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrTimeout
	case status >= 400 && status < 500:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return ErrMalformedResponse
	}
}

// DetailOf returns the server message carried by err, or fallback.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
